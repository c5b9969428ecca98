// Package alerts provides the configurable stock alert rule. The rule is a
// CEL boolean expression evaluated against an item's derived stock figures,
// so operators can tighten or relax the low-stock condition without a
// redeploy.
package alerts

import (
	"fmt"

	"github.com/google/cel-go/cel"

	"stockbook/internal/core/types"
)

// DefaultExpression flags an item when its balance is at or below the
// configured minimum stock.
const DefaultExpression = "balance <= minimum_stock"

// Vars are the figures exposed to the rule expression.
type Vars struct {
	Balance      types.Quantity
	MinimumStock types.Quantity
	Damaged      types.Quantity
	TotalIn      types.Quantity
	TotalOut     types.Quantity
}

// Rule is a compiled alert expression.
type Rule struct {
	expr    string
	program cel.Program
}

// Compile parses and type-checks an alert expression. The expression must
// evaluate to a boolean.
func Compile(expr string) (*Rule, error) {
	env, err := cel.NewEnv(
		cel.Variable("balance", cel.IntType),
		cel.Variable("minimum_stock", cel.IntType),
		cel.Variable("damaged", cel.IntType),
		cel.Variable("total_in", cel.IntType),
		cel.Variable("total_out", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("create cel environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile alert rule %q: %w", expr, issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("alert rule %q must evaluate to bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("build alert program: %w", err)
	}

	return &Rule{expr: expr, program: program}, nil
}

// MustCompile compiles an expression, panics on error. Use for the default
// rule and tests.
func MustCompile(expr string) *Rule {
	r, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// Expression returns the source expression.
func (r *Rule) Expression() string {
	return r.expr
}

// Eval evaluates the rule against the given figures.
func (r *Rule) Eval(v Vars) (bool, error) {
	out, _, err := r.program.Eval(map[string]any{
		"balance":       v.Balance.Int64(),
		"minimum_stock": v.MinimumStock.Int64(),
		"damaged":       v.Damaged.Int64(),
		"total_in":      v.TotalIn.Int64(),
		"total_out":     v.TotalOut.Int64(),
	})
	if err != nil {
		return false, fmt.Errorf("evaluate alert rule: %w", err)
	}
	flagged, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("alert rule returned %T, want bool", out.Value())
	}
	return flagged, nil
}
