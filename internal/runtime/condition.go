package runtime

import "context"

// ConditionEvaluator chooses the output port of a condition node from its
// ordered option list, given the condition expression and the session
// variables.
type ConditionEvaluator func(ctx context.Context, condition string, options []string, vars map[string]any) (string, error)

// FirstOptionEvaluator is the default evaluator. It always selects the
// first declared option rather than evaluating the condition expression.
//
// This mirrors the authoring tool's preview behavior and is preserved on
// purpose; wire a real evaluator (e.g. the expr-based one) through
// WithConditionEvaluator when branch semantics are wanted.
func FirstOptionEvaluator(_ context.Context, _ string, options []string, _ map[string]any) (string, error) {
	if len(options) == 0 {
		return "", nil
	}
	return options[0], nil
}
