package manifest

import (
	"fmt"

	"github.com/mesh-intelligence/dbc/internal/engine"
	"github.com/mesh-intelligence/dbc/pkg/types"
)

// Registry holds the engine objects built from a manifest.
type Registry struct {
	Interfaces      []*engine.Interface
	Implementations []*engine.Implementation
	Results         []Result

	ifaces map[string]*engine.Interface
	impls  map[string]*engine.Implementation
}

// Result is the outcome of building one implementation.
type Result struct {
	Name    string   `json:"name"`
	State   string   `json:"state"`
	Missing []string `json:"missing,omitempty"`
	Err     error    `json:"-"`
	Error   string   `json:"error,omitempty"`
	impl    *engine.Implementation
}

// OK reports whether the implementation built cleanly and is fully
// implemented.
func (r Result) OK() bool { return r.Err == nil }

// Interface returns the named interface.
func (r *Registry) Interface(name string) (*engine.Interface, error) {
	i, ok := r.ifaces[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownInterface)
	}
	return i, nil
}

// Implementation returns the named implementation.
func (r *Registry) Implementation(name string) (*engine.Implementation, error) {
	i, ok := r.impls[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownImplementation)
	}
	return i, nil
}

// Build declares every interface, then builds every implementation in
// manifest order. Interface errors abort the build. Implementation
// failures (structural mismatches, missing operations, an unimplemented
// supertype) are recorded in Results and the build continues.
func (m *Manifest) Build(opts ...engine.Option) (*Registry, error) {
	reg := &Registry{
		ifaces: make(map[string]*engine.Interface),
		impls:  make(map[string]*engine.Implementation),
	}
	logger := engine.OptionsLogger(opts...)

	for _, spec := range m.Interfaces {
		iface, err := reg.buildInterface(spec)
		if err != nil {
			return nil, fmt.Errorf("interface %s: %w", spec.Name, err)
		}
		iface.WithLogger(logger)
		reg.Interfaces = append(reg.Interfaces, iface)
		reg.ifaces[spec.Name] = iface
	}

	for _, spec := range m.Implementations {
		res := reg.buildImplementation(spec, opts)
		if res.Err != nil {
			res.Error = res.Err.Error()
		}
		reg.Results = append(reg.Results, res)
		if res.impl != nil {
			reg.Implementations = append(reg.Implementations, res.impl)
			reg.impls[spec.Name] = res.impl
		}
	}
	return reg, nil
}

func (r *Registry) buildInterface(spec InterfaceSpec) (*engine.Interface, error) {
	var parents []engine.Source
	for _, name := range spec.Includes {
		p, err := r.Interface(name)
		if err != nil {
			return nil, err
		}
		parents = append(parents, p)
	}
	iface := engine.NewInterface(spec.Name, parents...)
	for _, op := range spec.Operations {
		if err := declare(iface.Define, op); err != nil {
			return nil, err
		}
	}
	return iface, nil
}

func (r *Registry) buildImplementation(spec ImplementationSpec, opts []engine.Option) Result {
	res := Result{Name: spec.Name}

	var impl *engine.Implementation
	if spec.Extends != "" {
		parent, err := r.Implementation(spec.Extends)
		if err != nil {
			res.Err = err
			return res
		}
		if impl, err = parent.Subtype(spec.Name); err != nil {
			res.Err = fmt.Errorf("extends %s: %w", spec.Extends, err)
			return res
		}
	} else {
		impl = engine.NewImplementation(spec.Name, opts...)
	}
	res.impl = impl

	for _, name := range spec.Implements {
		iface, err := r.Interface(name)
		if err != nil {
			res.Err = err
			return res.finish()
		}
		impl.Implement(iface)
	}
	for _, op := range spec.Declares {
		if err := declare(impl.Define, op); err != nil {
			res.Err = err
			return res.finish()
		}
	}
	for _, ms := range spec.Methods {
		sig, err := ParseSignature(ms.Params)
		if err != nil {
			res.Err = fmt.Errorf("%s: %w", ms.Name, err)
			return res.finish()
		}
		if err := impl.Install(ms.Name, engine.NewMethod(sig, stubBody)); err != nil {
			res.Err = err
			return res.finish()
		}
	}
	res.Err = impl.AssertImplemented(false)
	return res.finish()
}

func (r Result) finish() Result {
	if r.impl != nil {
		r.State = r.impl.State().String()
		r.Missing = r.impl.Missing()
	}
	return r
}

func declare(define func(types.Pattern) *engine.Enroller, op OperationSpec) error {
	ret, err := ParsePattern(op.Returns)
	if err != nil {
		return fmt.Errorf("%s returns: %w", op.Name, err)
	}
	slots := make([]types.Pattern, 0, len(op.Args))
	for _, a := range op.Args {
		p, err := ParsePattern(a)
		if err != nil {
			return fmt.Errorf("%s args: %w", op.Name, err)
		}
		slots = append(slots, p)
	}
	_, err = define(ret).Op(op.Name, slots...)
	return err
}

// stubBody stands in for operation bodies that a manifest only describes.
func stubBody(*engine.Instance, []any, types.Callback) (any, error) {
	return nil, nil
}
