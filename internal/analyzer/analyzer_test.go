package analyzer

import (
	"errors"
	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/pipeline"
	"testing"
)

func TestAnalyzeWellFormed(t *testing.T) {
	expr := &ast.Bind{
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

	info, err := Analyze(expr)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if info.MaxArgument != 1 || info.Arity() != 2 {
		t.Errorf("MaxArgument = %d, Arity = %d", info.MaxArgument, info.Arity())
	}
	if info.MaxBindingDepth != 2 {
		t.Errorf("MaxBindingDepth = %d, want 2", info.MaxBindingDepth)
	}
	if info.Nodes != ast.Size(expr) {
		t.Errorf("Nodes = %d, want %d", info.Nodes, ast.Size(expr))
	}
	if !info.ProducesValue {
		t.Error("ProducesValue = false")
	}

	if err := CheckArgs(info, []int64{1}); !errors.Is(err, ErrTooFewArguments) {
		t.Errorf("CheckArgs with 1 arg: %v", err)
	}
	if err := CheckArgs(info, []int64{1, 2}); err != nil {
		t.Errorf("CheckArgs with 2 args: %v", err)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expr
		want error
	}{
		{"unbound local", &ast.LocalRef{Offset: 0}, ErrOutOfScope},
		{"offset past depth", &ast.Bind{Init: &ast.Literal{Value: 1}, Body: &ast.LocalRef{Offset: 1}}, ErrOutOfScope},
		{"assign out of scope", ast.Seq(&ast.Assign{Offset: 0, Value: &ast.Literal{Value: 1}}, &ast.Literal{Value: 1}), ErrOutOfScope},
		{"negative argument", &ast.Argument{Index: -1}, ErrNegativeIndex},
		{"negative offset", &ast.Bind{Init: &ast.Literal{Value: 1}, Body: &ast.LocalRef{Offset: -1}}, ErrNegativeIndex},
		{"root without value", &ast.Loop{Cond: &ast.Literal{Value: 0}, Body: &ast.Literal{Value: 0}}, ErrNoValue},
		{"add of assignment", &ast.Bind{Init: &ast.Literal{Value: 1}, Body: &ast.Add{
			Left:  &ast.Assign{Offset: 0, Value: &ast.Literal{Value: 2}},
			Right: &ast.Literal{Value: 1},
		}}, ErrNoValue},
		{"loop condition without value", ast.Seq(&ast.Loop{
			Cond: &ast.Loop{Cond: &ast.Literal{Value: 0}, Body: &ast.Literal{Value: 0}},
			Body: &ast.Literal{Value: 1},
		}, &ast.Literal{Value: 1}), ErrNoValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze(tt.expr)
			if !errors.Is(err, tt.want) {
				t.Errorf("Analyze(%s) = %v, want %v", tt.expr, err, tt.want)
			}
		})
	}
}

func TestAnalyzeScopeEndsWithBind(t *testing.T) {
	// The binding is gone once its body finishes.
	expr := ast.Seq(
		&ast.Bind{Init: &ast.Literal{Value: 1}, Body: &ast.LocalRef{Offset: 0}},
		&ast.LocalRef{Offset: 0},
	)
	_, err := Analyze(expr)
	if !errors.Is(err, ErrOutOfScope) {
		t.Errorf("err = %v, want ErrOutOfScope", err)
	}
}

func TestAnalyzeCollectsAllErrors(t *testing.T) {
	expr := &ast.Add{Left: &ast.LocalRef{Offset: 0}, Right: &ast.Argument{Index: -3}}
	_, err := Analyze(expr)
	if !errors.Is(err, ErrOutOfScope) || !errors.Is(err, ErrNegativeIndex) {
		t.Errorf("expected both errors, got %v", err)
	}
}

func TestProcessor(t *testing.T) {
	ctx := pipeline.NewExprContext("add", &ast.Add{
		Left:  &ast.Argument{Index: 0},
		Right: &ast.Argument{Index: 2},
	}, []int64{1, 2})

	ctx = (&Processor{}).Process(ctx)
	if !errors.Is(ctx.Err(), ErrTooFewArguments) {
		t.Errorf("errors = %v", ctx.Errors)
	}

	ctx = (&Processor{}).Process(pipeline.NewExprContext("ok", &ast.Literal{Value: 3}, nil))
	if ctx.Failed() {
		t.Errorf("errors = %v", ctx.Errors)
	}
}
