// Package analyzer checks the preconditions the compiler and the VM trust:
// every local reference is in scope, every operand position produces a
// value, and the argument vector is long enough.
package analyzer

import (
	"errors"
	"fmt"
	"github.com/funvibe/tapevm/internal/ast"
)

var (
	ErrOutOfScope      = errors.New("local offset out of scope")
	ErrNegativeIndex   = errors.New("negative index")
	ErrNoValue         = errors.New("operand produces no value")
	ErrTooFewArguments = errors.New("too few arguments")
)

// Info describes a well-formed expression.
type Info struct {
	// MaxArgument is the largest argument index referenced, or -1.
	MaxArgument int
	// MaxBindingDepth is the deepest nesting of Bind forms.
	MaxBindingDepth int
	// Nodes is the number of nodes in the tree.
	Nodes int
	// ProducesValue reports whether the root leaves a value.
	ProducesValue bool
}

// Arity is the minimum argument vector length.
func (i *Info) Arity() int {
	return i.MaxArgument + 1
}

type analyzer struct {
	info  *Info
	depth int
	errs  []error
}

// Analyze checks expr and returns its Info. All problems found are joined
// into the returned error; Info is returned even when the error is non-nil.
func Analyze(expr ast.Expr) (*Info, error) {
	a := &analyzer{info: &Info{MaxArgument: -1}}
	if expr == nil {
		return a.info, errors.New("empty expression")
	}
	a.visit(expr)
	a.info.ProducesValue = ast.ProducesValue(expr)
	if !a.info.ProducesValue {
		a.errs = append(a.errs, fmt.Errorf("%w: at the root of the expression", ErrNoValue))
	}
	return a.info, errors.Join(a.errs...)
}

// CheckArgs reports an argument vector shorter than the expression needs.
func CheckArgs(info *Info, args []int64) error {
	if len(args) < info.Arity() {
		return fmt.Errorf("%w: expression reads argument %d, got %d", ErrTooFewArguments, info.MaxArgument, len(args))
	}
	return nil
}

func (a *analyzer) visit(expr ast.Expr) {
	a.info.Nodes++

	switch n := expr.(type) {
	case *ast.Literal:

	case *ast.Argument:
		if n.Index < 0 {
			a.errorf(ErrNegativeIndex, "%s", n)
		} else if n.Index > a.info.MaxArgument {
			a.info.MaxArgument = n.Index
		}

	case *ast.LocalRef:
		a.checkOffset(n.Offset, n)

	case *ast.Add:
		a.operand(n.Left, "add")
		a.operand(n.Right, "add")

	case *ast.Bind:
		a.operand(n.Init, "bind initialiser")
		a.depth++
		if a.depth > a.info.MaxBindingDepth {
			a.info.MaxBindingDepth = a.depth
		}
		a.child(n.Body)
		a.depth--

	case *ast.Assign:
		a.operand(n.Value, "assignment")
		a.checkOffset(n.Offset, n)

	case *ast.Loop:
		a.operand(n.Cond, "loop condition")
		a.child(n.Body)

	case *ast.Sequence:
		a.child(n.First)
		a.child(n.Second)

	default:
		a.errs = append(a.errs, fmt.Errorf("unknown expression type %T", expr))
	}
}

func (a *analyzer) child(expr ast.Expr) {
	if expr == nil {
		a.errs = append(a.errs, errors.New("missing sub-expression"))
		return
	}
	a.visit(expr)
}

// operand visits an expression whose value is consumed.
func (a *analyzer) operand(expr ast.Expr, role string) {
	if expr == nil {
		a.errs = append(a.errs, fmt.Errorf("missing %s", role))
		return
	}
	a.visit(expr)
	if !ast.ProducesValue(expr) {
		a.errorf(ErrNoValue, "%s %s", role, expr)
	}
}

func (a *analyzer) checkOffset(offset int, at ast.Expr) {
	switch {
	case offset < 0:
		a.errorf(ErrNegativeIndex, "%s", at)
	case offset >= a.depth:
		a.errorf(ErrOutOfScope, "%s with %d bindings in scope", at, a.depth)
	}
}

func (a *analyzer) errorf(kind error, format string, args ...interface{}) {
	a.errs = append(a.errs, fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...)))
}
