package types

import "strings"

// ParamKind classifies one parameter of a candidate operation body.
type ParamKind int

// Parameter kinds.
const (
	ParamRequired ParamKind = iota
	ParamOptional
	ParamVariadic
	ParamCallback
)

var paramKindNames = map[ParamKind]string{
	ParamRequired: "required",
	ParamOptional: "optional",
	ParamVariadic: "variadic",
	ParamCallback: "callback",
}

func (k ParamKind) String() string {
	if s, ok := paramKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Callback is the continuation passed to operations whose signature ends
// in a ParamCallback parameter.
type Callback func(args ...any) (any, error)

// Signature is the structural shape of a candidate operation body: its
// parameter kinds in declaration order.
type Signature []ParamKind

// Count returns the number of parameters of kind k.
func (s Signature) Count(k ParamKind) int {
	n := 0
	for _, p := range s {
		if p == k {
			n++
		}
	}
	return n
}

// HasCallback reports whether the signature takes a callback.
func (s Signature) HasCallback() bool {
	return s.Count(ParamCallback) > 0
}

// Plain reports whether every parameter is required.
func (s Signature) Plain() bool {
	return s.Count(ParamRequired) == len(s)
}

// Arity returns the number of required parameters, or -(required+1) when
// the signature also takes optional or variadic parameters. Callback
// parameters are not counted.
func (s Signature) Arity() int {
	req := s.Count(ParamRequired)
	if s.Count(ParamOptional) > 0 || s.Count(ParamVariadic) > 0 {
		return -(req + 1)
	}
	return req
}

// Accepts reports whether a call with n positional arguments fits the
// signature.
func (s Signature) Accepts(n int) bool {
	req := s.Count(ParamRequired)
	if n < req {
		return false
	}
	if s.Count(ParamVariadic) > 0 {
		return true
	}
	return n <= req+s.Count(ParamOptional)
}

func (s Signature) String() string {
	parts := make([]string, len(s))
	for i, k := range s {
		parts[i] = k.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
