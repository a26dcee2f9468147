package engine

import (
	"log/slog"

	"github.com/mesh-intelligence/dbc/pkg/types"
)

// Interface is a named collection of operation contracts with no bodies.
type Interface struct {
	name   string
	table  *Table
	logger *slog.Logger
}

// NewInterface creates an interface that starts with a copy of every
// parent's contracts.
func NewInterface(name string, parents ...Source) *Interface {
	i := &Interface{
		name:   name,
		table:  NewTable(),
		logger: slog.Default(),
	}
	i.Include(parents...)
	return i
}

// WithLogger sets the logger used for declaration records and returns i.
func (i *Interface) WithLogger(l *slog.Logger) *Interface {
	if l != nil {
		i.logger = l
	}
	return i
}

// Include copies the contracts of each source into this interface.
func (i *Interface) Include(sources ...Source) {
	for _, src := range sources {
		i.table.Merge(src)
	}
}

// Name returns the interface name.
func (i *Interface) Name() string { return i.name }

// Owner identifies i in contract errors.
func (i *Interface) Owner() types.Owner {
	return types.Owner{Name: i.name, Kind: types.OwnerInterface}
}

// Define starts a declaration clause with the given return pattern (nil
// means types.Any).
func (i *Interface) Define(ret types.Pattern) *Enroller {
	return newEnroller(NewDefinition(ret, i.Owner()), i.table, i.logger)
}

// Each visits the interface's contract entries in declaration order.
func (i *Interface) Each(visit func(name string, defs []*Definition)) {
	i.table.Each(visit)
}

// Lookup returns the definitions for name.
func (i *Interface) Lookup(name string) []*Definition {
	return i.table.Lookup(name)
}

// Table returns a copy of the interface's contract table.
func (i *Interface) Table() *Table {
	return i.table.Clone()
}

// adder is where an Enroller records its clause.
type adder interface {
	Add(name string, d *Definition)
}

// Enroller records one declaration clause into a table.
type Enroller struct {
	defn   *Definition
	table  adder
	logger *slog.Logger
	used   bool
}

func newEnroller(d *Definition, t adder, l *slog.Logger) *Enroller {
	return &Enroller{defn: d, table: t, logger: l}
}

// Op sets the slots of the pending definition and appends it to the list
// for name. Only the first call on an Enroller records a clause; later
// calls return ErrDefinitionSealed.
func (e *Enroller) Op(name string, slots ...types.Pattern) (*Definition, error) {
	if e.used {
		return nil, types.ErrDefinitionSealed
	}
	if err := e.defn.Set(slots); err != nil {
		return nil, err
	}
	e.used = true
	e.table.Add(name, e.defn)
	e.logger.Debug("contract declared",
		"owner", e.defn.Owner().String(),
		"operation", name,
		"signature", e.defn.String(),
		"arity", e.defn.Arity())
	return e.defn, nil
}

// MustOp is Op for declarations that cannot fail, such as a fresh
// Enroller from Define. It panics on error.
func (e *Enroller) MustOp(name string, slots ...types.Pattern) *Definition {
	d, err := e.Op(name, slots...)
	if err != nil {
		panic(err)
	}
	return d
}
