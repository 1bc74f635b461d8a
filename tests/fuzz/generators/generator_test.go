package generators

import (
	"testing"

	"github.com/funvibe/tapevm/internal/analyzer"
	"github.com/funvibe/tapevm/internal/evaluator"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := New(42).GenerateExpr()
	b := New(42).GenerateExpr()
	if a.String() != b.String() {
		t.Errorf("same seed produced different expressions:\n%s\n%s", a, b)
	}
}

func TestGeneratedExpressionsAreWellFormed(t *testing.T) {
	for seed := int64(0); seed < 300; seed++ {
		g := New(seed)
		expr := g.GenerateExpr()
		info, err := analyzer.Analyze(expr)
		if err != nil {
			t.Fatalf("seed %d: %s\n%v", seed, expr, err)
		}
		args := g.GenerateArgs()
		if err := analyzer.CheckArgs(info, args); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		// Terminates and does not trip the evaluator's checks.
		if _, err := evaluator.Eval(expr, args); err != nil {
			t.Fatalf("seed %d: %s\n%v", seed, expr, err)
		}
	}
}

func TestGeneratorFromData(t *testing.T) {
	// Exhausted data falls back to zeros, which must still give a valid tree.
	for _, data := range [][]byte{nil, {1}, {7, 3, 200, 5, 9, 4, 4, 4, 1, 0, 2}} {
		expr := NewFromData(data).GenerateExpr()
		if _, err := analyzer.Analyze(expr); err != nil {
			t.Errorf("data %v: %s\n%v", data, expr, err)
		}
	}
}

func TestTapeGenerator(t *testing.T) {
	p := NewTapeGenerator([]byte{3, 1, 2, 3, 4, 5, 6, 7, 8, 9}).GenerateProgram()
	if p.Len() == 0 {
		t.Error("empty tape")
	}
}
