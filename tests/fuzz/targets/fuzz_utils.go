package targets

import (
	"fmt"
	"strings"

	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/backend"
)

// runAll prepares and runs expr on every backend and returns the results
// by backend name.
func runAll(expr ast.Expr, args []int64) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, name := range backend.Names() {
		b, err := backend.New(name)
		if err != nil {
			return nil, err
		}
		exe, err := b.Prepare(expr)
		if err != nil {
			return nil, fmt.Errorf("%s: prepare: %w", name, err)
		}
		v, err := exe.Execute(args)
		if err != nil {
			return nil, fmt.Errorf("%s: execute: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// disagreement describes results that differ from the tree-walk reference,
// or returns "" when all agree.
func disagreement(results map[string]int64) string {
	ref, ok := results["tree"]
	if !ok {
		return "no reference result"
	}
	var diffs []string
	for name, v := range results {
		if v != ref {
			diffs = append(diffs, fmt.Sprintf("%s=%d", name, v))
		}
	}
	if len(diffs) == 0 {
		return ""
	}
	return fmt.Sprintf("tree=%d but %s", ref, strings.Join(diffs, ", "))
}
