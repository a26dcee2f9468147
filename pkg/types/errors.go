package types

import (
	"errors"
	"fmt"
	"strings"
)

// Contract violation kinds. A *ContractError unwraps to exactly one of these.
var (
	ErrContractDefinition    = errors.New("definition mismatch")
	ErrArgumentContract      = errors.New("argument violates contract")
	ErrReturnContract        = errors.New("return value violates contract")
	ErrMissingImplementation = errors.New("not implemented")
)

// Engine usage errors.
var (
	ErrDefinitionSealed = errors.New("definition slots already set")
	ErrNoMethod         = errors.New("undefined operation")
	ErrArgumentCount    = errors.New("wrong number of arguments")
	ErrInvalidMethod    = errors.New("operation body must not be nil")
	ErrUnsupportedFunc  = errors.New("unsupported function shape")
)

// OwnerKind tells whether a contract was declared by an interface or by a
// concrete implementation.
type OwnerKind int

// Owner kinds.
const (
	OwnerInterface OwnerKind = iota
	OwnerImplementation
)

func (k OwnerKind) String() string {
	if k == OwnerInterface {
		return "interface"
	}
	return "implementation"
}

// Owner identifies the interface or implementation a contract belongs to.
type Owner struct {
	Name string
	Kind OwnerKind
}

func (o Owner) String() string {
	return fmt.Sprintf("%s %s", o.Kind, o.Name)
}

// ContractError describes one contract failure. Position is -1 when the
// failure is not tied to an argument position.
type ContractError struct {
	Kind      error    // ErrContractDefinition, ErrArgumentContract, ...
	Operation string   // operation name, empty for type-level failures
	Position  int      // argument or parameter index, or -1
	Pattern   Pattern  // declared pattern that rejected Value
	Value     any      // offending value
	Detail    string   // free-form reason, e.g. "arity mismatch (2 for 3)"
	Missing   []string // unimplemented operations (ErrMissingImplementation)
	Owner     Owner
}

func (e *ContractError) Error() string {
	var b strings.Builder
	if e.Operation != "" {
		b.WriteString(e.Operation)
		b.WriteString(": ")
	}
	switch {
	case e.Kind == ErrMissingImplementation:
		fmt.Fprintf(&b, "not implemented %s", strings.Join(e.Missing, ", "))
	case e.Detail != "":
		b.WriteString(e.Detail)
	case e.Kind == ErrReturnContract:
		fmt.Fprintf(&b, "return value: not %s === %#v", PatternString(e.Pattern), e.Value)
	case e.Position >= 0:
		fmt.Fprintf(&b, "arg %d: not %s === %#v", e.Position, PatternString(e.Pattern), e.Value)
	default:
		b.WriteString(e.Kind.Error())
	}
	if e.Owner.Name != "" {
		fmt.Fprintf(&b, " (%s)", e.Owner)
	}
	return b.String()
}

func (e *ContractError) Unwrap() error { return e.Kind }
