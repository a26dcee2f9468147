package engine

import "slices"

// Source is anything that can enumerate contract entries: interfaces,
// implementations and raw tables.
type Source interface {
	Each(visit func(name string, defs []*Definition))
}

// Table is an ordered mapping from operation name to the definitions that
// constrain it. Duplicates are allowed and are all enforced.
type Table struct {
	names []string
	defs  map[string][]*Definition
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{defs: make(map[string][]*Definition)}
}

// Add appends d to the list for name.
func (t *Table) Add(name string, d *Definition) {
	if _, ok := t.defs[name]; !ok {
		t.names = append(t.names, name)
	}
	t.defs[name] = append(slices.Clip(t.defs[name]), d)
}

// Merge appends every entry of src to this table, per-name. Lists are
// copied; definitions are shared.
func (t *Table) Merge(src Source) {
	src.Each(func(name string, defs []*Definition) {
		if _, ok := t.defs[name]; !ok {
			t.names = append(t.names, name)
		}
		merged := make([]*Definition, 0, len(t.defs[name])+len(defs))
		merged = append(merged, t.defs[name]...)
		t.defs[name] = append(merged, defs...)
	})
}

// Clone returns a table with its own lists and the same definitions.
func (t *Table) Clone() *Table {
	c := NewTable()
	c.Merge(t)
	return c
}

// Each visits entries in declaration order. The slice passed to visit is a
// copy.
func (t *Table) Each(visit func(name string, defs []*Definition)) {
	for _, name := range t.names {
		visit(name, slices.Clone(t.defs[name]))
	}
}

// Lookup returns a copy of the definitions for name, or nil.
func (t *Table) Lookup(name string) []*Definition {
	return slices.Clone(t.defs[name])
}

// Has reports whether name has at least one definition.
func (t *Table) Has(name string) bool {
	return len(t.defs[name]) > 0
}

// Names returns the operation names in declaration order.
func (t *Table) Names() []string {
	return slices.Clone(t.names)
}

// Len returns the number of operation names.
func (t *Table) Len() int {
	return len(t.names)
}
