// Package engine implements contract definitions, contract tables, the
// interface registry and the implementation engine that validates and wraps
// operation bodies.
package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/dbc/pkg/types"
)

// Definition is one declared signature for one operation: ordered slot
// patterns plus a return pattern. Slots are fixed once Set; a Definition
// may be shared by many tables.
type Definition struct {
	id     string
	owner  types.Owner
	ret    types.Pattern
	slots  []types.Pattern
	arity  int
	block  bool
	sealed bool
}

// NewDefinition creates an unset definition. A nil return pattern means
// types.Any.
func NewDefinition(ret types.Pattern, owner types.Owner) *Definition {
	if ret == nil {
		ret = types.Any
	}
	return &Definition{
		id:    newUUID(),
		owner: owner,
		ret:   ret,
	}
}

// newUUID generates a UUID v7 string.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Set stores the slot patterns and computes the arity: the slot count,
// minus one if the last slot is Block, negated if any slot is Rest.
// Returns ErrDefinitionSealed on a second call.
func (d *Definition) Set(slots []types.Pattern) error {
	if d.sealed {
		return types.ErrDefinitionSealed
	}
	d.slots = slices.Clone(slots)
	for i, s := range d.slots {
		if s == nil {
			d.slots[i] = types.Any
		}
	}
	d.arity = len(d.slots)
	if n := len(d.slots); n > 0 && types.IsBlock(d.slots[n-1]) {
		d.arity--
		d.block = true
	}
	if d.Variadic() {
		d.arity = -d.arity
	}
	d.sealed = true
	return nil
}

// ID returns the definition's unique identifier.
func (d *Definition) ID() string { return d.id }

// Owner returns the interface or implementation that declared d.
func (d *Definition) Owner() types.Owner { return d.owner }

// Return returns the declared return pattern.
func (d *Definition) Return() types.Pattern { return d.ret }

// Slots returns a copy of the declared slot patterns.
func (d *Definition) Slots() []types.Pattern { return slices.Clone(d.slots) }

// Arity returns the declared arity. Negative values follow the -n
// convention: at least n-1 arguments followed by a variadic tail.
func (d *Definition) Arity() int { return d.arity }

// HasBlock reports whether the last slot is Block.
func (d *Definition) HasBlock() bool { return d.block }

// Variadic reports whether any slot is Rest.
func (d *Definition) Variadic() bool {
	return slices.ContainsFunc(d.slots, types.IsRest)
}

// AssertMatch checks a candidate signature against the declared slot
// kinds. Value slots need a required or optional parameter, Rest needs a
// variadic parameter, Block needs a callback parameter. The check is
// all-or-nothing; the first misalignment is returned.
func (d *Definition) AssertMatch(name string, sig types.Signature) error {
	if !d.Variadic() && !slices.ContainsFunc(d.slots, types.IsBlock) && sig.Plain() {
		if len(sig) != d.arity {
			return d.fail(types.ErrContractDefinition, name,
				fmt.Sprintf("arity mismatch (%d for %d)", sig.Arity(), d.arity))
		}
		return nil
	}
	if len(sig) != len(d.slots) {
		return d.fail(types.ErrContractDefinition, name,
			fmt.Sprintf("arity mismatch (%d for %d)", sig.Arity(), d.arity))
	}
	for i, kind := range sig {
		slot := d.slots[i]
		switch kind {
		case types.ParamRequired, types.ParamOptional:
			if !types.IsRest(slot) && !types.IsBlock(slot) {
				continue
			}
		case types.ParamVariadic:
			if types.IsRest(slot) {
				continue
			}
		case types.ParamCallback:
			if types.IsBlock(slot) {
				continue
			}
		}
		err := d.fail(types.ErrContractDefinition, name,
			fmt.Sprintf("arg %d: definition mismatch (%s for %s)", i, kind, types.PatternString(slot)))
		err.Position = i
		return err
	}
	return nil
}

// AssertArgs checks positional arguments against the value slots. Block
// slots take no positional argument and are skipped. The first Rest slot
// ends checking: the variadic region and anything after it are left to the
// structural check done at install time.
func (d *Definition) AssertArgs(name string, args []any) error {
	pos := 0
	for _, slot := range d.slots {
		if types.IsRest(slot) || pos >= len(args) {
			break
		}
		if types.IsBlock(slot) {
			continue
		}
		if !types.Match(slot, args[pos]) {
			return &types.ContractError{
				Kind:      types.ErrArgumentContract,
				Operation: name,
				Position:  pos,
				Pattern:   slot,
				Value:     args[pos],
				Owner:     d.owner,
			}
		}
		pos++
	}
	return nil
}

// AssertRet checks v against the declared return pattern and returns it
// unchanged on success.
func (d *Definition) AssertRet(name string, v any) (any, error) {
	if !types.Match(d.ret, v) {
		return nil, &types.ContractError{
			Kind:      types.ErrReturnContract,
			Operation: name,
			Position:  -1,
			Pattern:   d.ret,
			Value:     v,
			Owner:     d.owner,
		}
	}
	return v, nil
}

func (d *Definition) fail(kind error, name, detail string) *types.ContractError {
	return &types.ContractError{
		Kind:      kind,
		Operation: name,
		Position:  -1,
		Detail:    detail,
		Owner:     d.owner,
	}
}

func (d *Definition) String() string {
	parts := make([]string, len(d.slots))
	for i, s := range d.slots {
		parts[i] = types.PatternString(s)
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), types.PatternString(d.ret))
}
