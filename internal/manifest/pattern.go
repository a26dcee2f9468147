package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/dbc/pkg/types"
)

// ParsePattern converts a manifest pattern string into a types.Pattern.
//
//	any, rest, block                 markers ("" is any)
//	int, integer, float, number,     kind patterns
//	string, bool
//	nil                              the nil value
//	range:LO..HI                     inclusive int range, or float range
//	                                 when either bound has a fraction
//	oneof:a|b|c                      membership over literals
//	eq:VALUE                         a single literal
//	expr:EXPR                        boolean expr-lang expression
//	                                 over the value v, e.g. expr:v > 0
//
// Literals are ints, floats, true/false, or strings.
func ParsePattern(s string) (types.Pattern, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch strings.ToLower(name) {
	case "", "any":
		if !hasArg {
			return types.Any, nil
		}
	case "rest":
		return types.Rest, nil
	case "block":
		return types.Block, nil
	case "int", "integer":
		return types.Integer, nil
	case "float":
		return types.Float, nil
	case "number":
		return types.Number, nil
	case "string", "str":
		return types.String, nil
	case "bool", "boolean":
		return types.Bool, nil
	case "nil":
		return types.Exact(nil), nil
	case "range":
		if hasArg {
			return parseRange(arg)
		}
	case "oneof":
		if hasArg {
			parts := strings.Split(arg, "|")
			vals := make([]any, len(parts))
			for i, p := range parts {
				vals[i] = literal(p)
			}
			return types.OneOf(vals...), nil
		}
	case "eq":
		if hasArg {
			return types.Exact(literal(arg)), nil
		}
	case "expr":
		if hasArg && strings.TrimSpace(arg) != "" {
			return parseExpr(arg)
		}
	}
	return nil, fmt.Errorf("%q: %w", s, ErrInvalidPattern)
}

func parseRange(arg string) (types.Pattern, error) {
	lo, hi, ok := strings.Cut(arg, "..")
	if !ok {
		return nil, fmt.Errorf("range %q: %w", arg, ErrInvalidPattern)
	}
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	if li, err := strconv.Atoi(lo); err == nil {
		if hi2, err := strconv.Atoi(hi); err == nil {
			return types.Between(li, hi2), nil
		}
	}
	lf, err1 := strconv.ParseFloat(lo, 64)
	hf, err2 := strconv.ParseFloat(hi, 64)
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("range %q: %w", arg, ErrInvalidPattern)
	}
	return types.Between(lf, hf), nil
}

func literal(s string) any {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}

// ParseKind converts a manifest parameter kind string.
func ParseKind(s string) (types.ParamKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "required", "req":
		return types.ParamRequired, nil
	case "optional", "opt":
		return types.ParamOptional, nil
	case "variadic", "rest":
		return types.ParamVariadic, nil
	case "callback", "block":
		return types.ParamCallback, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrInvalidParamKind)
}

// ParseSignature converts a list of parameter kind strings.
func ParseSignature(kinds []string) (types.Signature, error) {
	sig := make(types.Signature, 0, len(kinds))
	for _, k := range kinds {
		kind, err := ParseKind(k)
		if err != nil {
			return nil, err
		}
		sig = append(sig, kind)
	}
	return sig, nil
}
