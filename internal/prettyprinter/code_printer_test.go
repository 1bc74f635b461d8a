package prettyprinter_test

import (
	"strings"
	"testing"

	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/bench"
	"github.com/funvibe/tapevm/internal/parser"
	"github.com/funvibe/tapevm/internal/prettyprinter"
	"github.com/funvibe/tapevm/tests/fuzz/generators"
)

func lit(v int64) ast.Expr { return &ast.Literal{Value: v} }

func TestCodePrinter_Flat(t *testing.T) {
	expr := &ast.Add{Left: &ast.Add{Left: lit(1), Right: lit(2)}, Right: &ast.Argument{Index: 0}}
	got := prettyprinter.Format(expr)
	want := "(add (lit 1) (lit 2) (arg 0))\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCodePrinter_Wraps(t *testing.T) {
	expr := &ast.Bind{
		Init: lit(0),
		Body: ast.Seq(
			&ast.Assign{Offset: 0, Value: &ast.Add{Left: &ast.LocalRef{Offset: 0}, Right: lit(1)}},
			&ast.LocalRef{Offset: 0},
		),
	}
	got := prettyprinter.NewCodePrinterWithWidth(30).Print(expr)
	want := strings.Join([]string{
		"(bind",
		"  (lit 0)",
		"  (seq",
		"    (assign 0",
		"      (add (local 0) (lit 1)))",
		"    (local 0)))",
		"",
	}, "\n")
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 30 {
			t.Errorf("line exceeds width: %q", line)
		}
	}
}

func TestCodePrinter_Unlimited(t *testing.T) {
	expr := bench.SampleExpression()
	got := prettyprinter.NewCodePrinterWithWidth(0).Print(expr)
	if strings.Count(got, "\n") != 1 {
		t.Errorf("expected a single line, got:\n%s", got)
	}
}

func TestCodePrinter_ParsesBack(t *testing.T) {
	exprs := []ast.Expr{bench.SampleExpression()}
	for seed := int64(0); seed < 50; seed++ {
		exprs = append(exprs, generators.New(seed).GenerateExpr())
	}

	for _, width := range []int{0, 20, 80} {
		p := prettyprinter.NewCodePrinterWithWidth(width)
		for i, expr := range exprs {
			src := p.Print(expr)
			back, err := parser.Parse(src, "")
			if err != nil {
				t.Fatalf("width %d, expr %d: %v\n%s", width, i, err, src)
			}
			if back.String() != expr.String() {
				t.Fatalf("width %d, expr %d: tree changed\n%s\n%s", width, i, expr.String(), back.String())
			}
		}
	}
}
