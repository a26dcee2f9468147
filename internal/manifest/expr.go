package manifest

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/mesh-intelligence/dbc/pkg/types"
)

// exprValue is the name the checked value is bound to in expressions.
const exprValue = "v"

// parseExpr compiles a boolean expression into a predicate pattern. A value
// for which evaluation fails does not match.
func parseExpr(code string) (types.Pattern, error) {
	code = strings.TrimSpace(code)
	prog, err := expr.Compile(code, expr.Env(exprEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("expr %q: %w: %w", code, ErrInvalidPattern, err)
	}
	return types.Satisfies("expr:"+code, func(v any) bool {
		out, err := expr.Run(prog, exprEnv(v))
		if err != nil {
			return false
		}
		ok, _ := out.(bool)
		return ok
	}), nil
}

func exprEnv(v any) map[string]any {
	return map[string]any{exprValue: v}
}
