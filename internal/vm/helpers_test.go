package vm

import (
	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/evaluator"
	"testing"
)

func lit(v int64) ast.Expr { return &ast.Literal{Value: v} }
func arg(i int) ast.Expr   { return &ast.Argument{Index: i} }
func local(k int) ast.Expr { return &ast.LocalRef{Offset: k} }

func addExpr(l, r ast.Expr) ast.Expr {
	return &ast.Add{Left: l, Right: r}
}

func bind(init, body ast.Expr) ast.Expr {
	return &ast.Bind{Init: init, Body: body}
}

func assign(k int, v ast.Expr) ast.Expr {
	return &ast.Assign{Offset: k, Value: v}
}

func loop(cond, body ast.Expr) ast.Expr {
	return &ast.Loop{Cond: cond, Body: body}
}

// accumulate is: total = 0; counter = args[0];
// while counter > 0 { total += args[1]; counter -= 1 }; total
func accumulate() ast.Expr {
	return bind(lit(0), ast.Seq(
		bind(arg(0), loop(local(0), ast.Seq(
			assign(1, addExpr(local(1), arg(1))),
			assign(0, addExpr(local(0), lit(-1))),
		))),
		local(0),
	))
}

// nestedBinds nests n bindings initialised to 1..n, makes every binding
// absorb its mirror image, and sums all of them.
func nestedBinds(n int) ast.Expr {
	var body ast.Expr
	var updates []ast.Expr
	for k := 0; k < n; k++ {
		updates = append(updates, assign(k, addExpr(local(k), local(n-1-k))))
	}
	sum := local(0)
	for k := 1; k < n; k++ {
		sum = addExpr(sum, local(k))
	}
	body = ast.Seq(updates[0], append(updates[1:], sum)...)
	for i := n; i >= 1; i-- {
		body = bind(lit(int64(i)), body)
	}
	return body
}

func testIntegerResult(t *testing.T, expr ast.Expr, args []int64, got int64) {
	t.Helper()
	want, err := evaluator.Eval(expr, args)
	if err != nil {
		t.Fatalf("reference evaluation of %s failed: %v", expr, err)
	}
	if got != want {
		t.Errorf("%s with %v: got %d, want %d", expr, args, got, want)
	}
}

func runBoth(t *testing.T, expr ast.Expr, args []int64) int64 {
	t.Helper()
	p := Compile(expr)

	switched := Execute(p, args)

	threaded, err := Thread(p)
	if err != nil {
		t.Fatalf("Thread failed: %v", err)
	}
	direct := threaded.Execute(args)

	if switched != direct {
		t.Fatalf("%s: switch dispatch = %d, direct dispatch = %d", expr, switched, direct)
	}
	return switched
}
