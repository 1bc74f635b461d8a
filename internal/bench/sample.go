package bench

import (
	"github.com/funvibe/tapevm/internal/ast"
)

// SampleName is the case name of the built-in expression.
const SampleName = "accumulate"

// SampleExpression builds the reference workload: a total starting at zero
// and a counter starting at argument 0; while the counter is positive the
// total grows by argument 1 and the counter drops by one. The total is the
// result.
func SampleExpression() ast.Expr {
	return &ast.Bind{
		Init: &ast.Literal{Value: 0},
		Body: ast.Seq(
			&ast.Bind{
				Init: &ast.Argument{Index: 0},
				Body: &ast.Loop{
					Cond: &ast.LocalRef{Offset: 0},
					Body: ast.Seq(
						&ast.Assign{
							Offset: 1,
							Value:  &ast.Add{Left: &ast.LocalRef{Offset: 1}, Right: &ast.Argument{Index: 1}},
						},
						&ast.Assign{
							Offset: 0,
							Value:  &ast.Add{Left: &ast.LocalRef{Offset: 0}, Right: &ast.Literal{Value: -1}},
						},
					),
				},
			},
			&ast.LocalRef{Offset: 0},
		),
	}
}

// SampleArgs returns the default arguments of the sample.
func SampleArgs() []int64 {
	return []int64{10000, 13}
}

// SampleExpected computes what SampleExpression returns for args.
func SampleExpected(args []int64) int64 {
	if args[0] <= 0 {
		return 0
	}
	return args[0] * args[1]
}

// SampleCase returns the sample as a benchmark case. Nil args select
// SampleArgs.
func SampleCase(args []int64) Case {
	if args == nil {
		args = SampleArgs()
	}
	want := SampleExpected(args)
	return Case{Name: SampleName, Expr: SampleExpression(), Args: args, Expect: &want}
}
