package targets

import (
	"testing"

	"github.com/funvibe/tapevm/tests/fuzz/generators"
)

// FuzzDifferential compares every backend against the tree-walk evaluator
// on generated expressions.
func FuzzDifferential(f *testing.F) {
	addExprSeeds(f)

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) > 1000 {
			return
		}

		gen := generators.NewFromData(data)
		expr := gen.GenerateExpr()
		args := gen.GenerateArgs()

		results, err := runAll(expr, args)
		if err != nil {
			t.Fatalf("%s\nargs %v: %v", expr, args, err)
		}
		if d := disagreement(results); d != "" {
			t.Fatalf("%s\nargs %v: %s", expr, args, d)
		}
	})
}

// TestDifferentialSeeds is the deterministic counterpart of FuzzDifferential.
func TestDifferentialSeeds(t *testing.T) {
	n := int64(500)
	if testing.Short() {
		n = 50
	}
	for seed := int64(0); seed < n; seed++ {
		gen := generators.New(seed)
		expr := gen.GenerateExpr()
		args := gen.GenerateArgs()

		results, err := runAll(expr, args)
		if err != nil {
			t.Fatalf("seed %d: %s\nargs %v: %v", seed, expr, args, err)
		}
		if d := disagreement(results); d != "" {
			t.Fatalf("seed %d: %s\nargs %v: %s", seed, expr, args, d)
		}
	}
}
