package engine

import (
	"fmt"

	"github.com/mesh-intelligence/dbc/pkg/types"
)

// Instance is a value of an Implementation. Operations are invoked by name
// and resolved on the instance's type and its ancestors.
type Instance struct {
	id    string
	class *Implementation
}

// ID returns the instance's unique identifier.
func (o *Instance) ID() string { return o.id }

// Class returns the instance's type.
func (o *Instance) Class() *Implementation { return o.class }

// Responds reports whether the instance has a body for name.
func (o *Instance) Responds(name string) bool {
	return o.class.Defined(name)
}

// Call invokes name with positional arguments and no callback.
func (o *Instance) Call(name string, args ...any) (any, error) {
	return o.CallWithBlock(name, nil, args...)
}

// CallWithBlock invokes name with positional arguments and a callback.
// Returns ErrNoMethod if name is not defined and ErrArgumentCount if the
// body's signature does not accept len(args) arguments.
func (o *Instance) CallWithBlock(name string, cb types.Callback, args ...any) (any, error) {
	m, ok := o.class.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s for %s: %w", name, o.class.name, types.ErrNoMethod)
	}
	if !m.Signature.Accepts(len(args)) {
		return nil, fmt.Errorf("%s: %w (given %d, expected %d)",
			name, types.ErrArgumentCount, len(args), m.Signature.Arity())
	}
	return m.Body(o, args, cb)
}
