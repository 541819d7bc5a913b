// Package eval defines the expression-evaluation seam the resolve pass
// programs against. Implementations interpret template strings and
// expressions over a flattened variable map; the tree walk itself never
// parses expression syntax beyond locating {{ }} spans.
package eval

import "context"

// Evaluator interprets template strings and expressions against a variable
// payload. Implementations must be safe for concurrent use; resolve walks
// may run in parallel over a shared evaluator.
type Evaluator interface {
	// Interpolate renders a template string, substituting {{ }} spans and
	// whatever other syntax the engine supports, and returns the result.
	Interpolate(ctx context.Context, raw string, vars map[string]any) (string, error)

	// Value evaluates a single expression (no surrounding braces) and
	// returns its typed result, preserving collections and maps so callers
	// can iterate them.
	Value(ctx context.Context, expr string, vars map[string]any) (any, error)

	// Predicate evaluates an expression and reduces the result to a bool
	// using the engine's truthiness rules.
	Predicate(ctx context.Context, expr string, vars map[string]any) (bool, error)
}
