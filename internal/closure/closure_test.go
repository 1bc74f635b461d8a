package closure

import (
	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/evaluator"
	"testing"
)

func TestClosureMatchesEvaluator(t *testing.T) {
	accumulate := &ast.Bind{
		Init: &ast.Literal{Value: 0},
		Body: ast.Seq(
			&ast.Bind{
				Init: &ast.Argument{Index: 0},
				Body: &ast.Loop{
					Cond: &ast.LocalRef{Offset: 0},
					Body: ast.Seq(
						&ast.Assign{Offset: 1, Value: &ast.Add{Left: &ast.LocalRef{Offset: 1}, Right: &ast.Argument{Index: 1}}},
						&ast.Assign{Offset: 0, Value: &ast.Add{Left: &ast.LocalRef{Offset: 0}, Right: &ast.Literal{Value: -1}}},
					),
				},
			},
			&ast.LocalRef{Offset: 0},
		),
	}

	tests := []struct {
		name string
		expr ast.Expr
		args []int64
	}{
		{"literal", &ast.Literal{Value: -3}, nil},
		{"add args", &ast.Add{Left: &ast.Argument{Index: 0}, Right: &ast.Argument{Index: 1}}, []int64{4, 5}},
		{"shadowing", &ast.Bind{Init: &ast.Literal{Value: 1}, Body: &ast.Bind{Init: &ast.Literal{Value: 2}, Body: &ast.LocalRef{Offset: 1}}}, nil},
		{"assign in sequence", &ast.Bind{Init: &ast.Literal{Value: 0}, Body: ast.Seq(&ast.Assign{Offset: 0, Value: &ast.Literal{Value: 5}}, &ast.LocalRef{Offset: 0})}, nil},
		{"accumulate", accumulate, []int64{10000, 13}},
		{"accumulate zero", accumulate, []int64{0, 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := evaluator.Eval(tt.expr, tt.args)
			if err != nil {
				t.Fatalf("reference evaluation failed: %v", err)
			}
			fn := Compile(tt.expr)
			// Twice, to make sure no state survives between calls.
			for i := 0; i < 2; i++ {
				if got := fn.Call(tt.args); got != want {
					t.Errorf("call %d: got %d, want %d", i, got, want)
				}
			}
		})
	}
}
