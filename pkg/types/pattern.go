package types

import (
	"cmp"
	"fmt"
	"reflect"
	"strings"
)

// Pattern tests whether a concrete value satisfies one declared slot or
// return position. Adding a new kind of contract means adding a new Pattern
// implementation; Match is the only place patterns are consulted.
type Pattern interface {
	// Match reports whether v is contained in the pattern.
	Match(v any) bool

	// String renders the pattern for diagnostics.
	String() string
}

type anyPattern struct{}

func (anyPattern) Match(any) bool { return true }
func (anyPattern) String() string { return "Any" }

type restPattern struct{}

func (restPattern) Match(any) bool { return false }
func (restPattern) String() string { return "*rest" }

type blockPattern struct{}

func (blockPattern) Match(any) bool { return false }
func (blockPattern) String() string { return "&block" }

// Special match values.
var (
	// Any matches every value. A nil Pattern is treated as Any.
	Any Pattern = anyPattern{}

	// Rest marks a slot that absorbs zero or more further positional
	// arguments. It is a structural kind, never compared to a value.
	Rest Pattern = restPattern{}

	// Block marks a trailing callback slot. It is a structural kind,
	// never compared to a value.
	Block Pattern = blockPattern{}
)

// IsAny reports whether p is the Any marker (or nil).
func IsAny(p Pattern) bool {
	if p == nil {
		return true
	}
	_, ok := p.(anyPattern)
	return ok
}

// IsRest reports whether p is the Rest marker.
func IsRest(p Pattern) bool {
	_, ok := p.(restPattern)
	return ok
}

// IsBlock reports whether p is the Block marker.
func IsBlock(p Pattern) bool {
	_, ok := p.(blockPattern)
	return ok
}

// Match reports whether value satisfies pattern. Any (or nil) matches
// everything; Rest and Block never match a value.
func Match(pattern Pattern, value any) bool {
	switch pattern.(type) {
	case nil, anyPattern:
		return true
	case restPattern, blockPattern:
		return false
	default:
		return pattern.Match(value)
	}
}

// PatternString renders p, treating nil as Any.
func PatternString(p Pattern) string {
	if p == nil {
		return Any.String()
	}
	return p.String()
}

type exactPattern struct {
	want any
}

// Exact returns a pattern matching values deeply equal to v.
func Exact(v any) Pattern {
	return exactPattern{want: v}
}

func (p exactPattern) Match(v any) bool { return reflect.DeepEqual(p.want, v) }
func (p exactPattern) String() string   { return fmt.Sprintf("%#v", p.want) }

type oneOfPattern struct {
	members []any
}

// OneOf returns a pattern matching any value deeply equal to one of vals.
func OneOf(vals ...any) Pattern {
	return oneOfPattern{members: vals}
}

func (p oneOfPattern) Match(v any) bool {
	for _, m := range p.members {
		if reflect.DeepEqual(m, v) {
			return true
		}
	}
	return false
}

func (p oneOfPattern) String() string {
	parts := make([]string, len(p.members))
	for i, m := range p.members {
		parts[i] = fmt.Sprintf("%#v", m)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type rangePattern[T cmp.Ordered] struct {
	lo, hi T
}

// Between returns an inclusive range pattern. Values of any type other
// than T never match.
func Between[T cmp.Ordered](lo, hi T) Pattern {
	return rangePattern[T]{lo: lo, hi: hi}
}

func (p rangePattern[T]) Match(v any) bool {
	x, ok := v.(T)
	if !ok {
		return false
	}
	return cmp.Compare(x, p.lo) >= 0 && cmp.Compare(x, p.hi) <= 0
}

func (p rangePattern[T]) String() string { return fmt.Sprintf("%v..%v", p.lo, p.hi) }

type instancePattern struct {
	typ reflect.Type
}

// InstanceOf returns a pattern matching values whose dynamic type is
// assignable to t. For interface types this means the value implements t.
func InstanceOf(t reflect.Type) Pattern {
	return instancePattern{typ: t}
}

// TypeOf is InstanceOf for a static type parameter.
func TypeOf[T any]() Pattern {
	return instancePattern{typ: reflect.TypeFor[T]()}
}

func (p instancePattern) Match(v any) bool {
	if v == nil || p.typ == nil {
		return false
	}
	return reflect.TypeOf(v).AssignableTo(p.typ)
}

func (p instancePattern) String() string {
	if p.typ == nil {
		return "<nil type>"
	}
	return p.typ.String()
}

type kindPattern struct {
	name  string
	kinds []reflect.Kind
}

// KindOf returns a pattern matching values of any of the given reflect
// kinds. name is used in diagnostics.
func KindOf(name string, kinds ...reflect.Kind) Pattern {
	return kindPattern{name: name, kinds: kinds}
}

func (p kindPattern) Match(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	for _, want := range p.kinds {
		if k == want {
			return true
		}
	}
	return false
}

func (p kindPattern) String() string { return p.name }

// Kind patterns for the common scalar families.
var (
	Integer = KindOf("Integer",
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr)
	Float  = KindOf("Float", reflect.Float32, reflect.Float64)
	Number = KindOf("Number",
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64)
	String = KindOf("String", reflect.String)
	Bool   = KindOf("Bool", reflect.Bool)
)

type predicatePattern struct {
	name string
	fn   func(any) bool
}

// Satisfies returns a pattern backed by an arbitrary predicate.
func Satisfies(name string, fn func(any) bool) Pattern {
	return predicatePattern{name: name, fn: fn}
}

func (p predicatePattern) Match(v any) bool { return p.fn != nil && p.fn(v) }
func (p predicatePattern) String() string   { return p.name }

// PatternOf lifts an arbitrary value into a Pattern. Patterns are returned
// unchanged, reflect.Type values become InstanceOf, nil becomes Any, and
// anything else becomes Exact.
func PatternOf(v any) Pattern {
	switch x := v.(type) {
	case nil:
		return Any
	case Pattern:
		return x
	case reflect.Type:
		return InstanceOf(x)
	default:
		return Exact(x)
	}
}
