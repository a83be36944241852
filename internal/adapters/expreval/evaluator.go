// Package expreval provides a condition evaluator backed by the
// expr-lang expression language.
//
// The engine's default evaluator always takes the first declared option,
// mirroring the authoring tool's preview behavior. Deployments that want
// real branch semantics inject this evaluator instead.
package expreval

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
)

// Evaluator compiles and runs the condition expression against the
// session variables. A truthy result selects the first option, a falsy
// result the second; single-option nodes always take their only branch.
type Evaluator struct{}

// New creates an expression evaluator.
func New() *Evaluator {
	return &Evaluator{}
}

// Evaluate implements runtime.ConditionEvaluator.
func (e *Evaluator) Evaluate(_ context.Context, condition string, options []string, vars map[string]any) (string, error) {
	if len(options) == 0 {
		return "", nil
	}
	if condition == "" || len(options) == 1 {
		return options[0], nil
	}

	program, err := expr.Compile(condition,
		expr.Env(vars),
		// Missing variables evaluate to nil instead of failing the
		// compile, matching how authored flows reference variables that
		// are only set later in the conversation.
		expr.AllowUndefinedVariables(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to compile condition %q: %w", condition, err)
	}

	out, err := expr.Run(program, vars)
	if err != nil {
		return "", fmt.Errorf("failed to evaluate condition %q: %w", condition, err)
	}

	if truthy(out) {
		return options[0], nil
	}
	return options[1], nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
