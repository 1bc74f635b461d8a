// Package evaluator is the reference tree-walking interpreter for expression
// trees. It is slow and fully checked; the tape VM is tested against it.
package evaluator

import (
	"errors"
	"fmt"
	"github.com/funvibe/tapevm/internal/ast"
)

var (
	ErrUnboundLocal    = errors.New("local offset not in scope")
	ErrMissingArgument = errors.New("argument index out of range")
	ErrNoValue         = errors.New("expression produces no value")
)

// Evaluator walks expression trees against one argument vector.
type Evaluator struct {
	args   []int64
	locals []int64
}

// New creates an evaluator reading from args.
func New(args []int64) *Evaluator {
	return &Evaluator{args: args}
}

// Eval evaluates expr against args and returns its value. The expression as
// a whole must produce a value.
func Eval(expr ast.Expr, args []int64) (int64, error) {
	v, ok, err := New(args).Eval(expr)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoValue, expr)
	}
	return v, nil
}

// Eval evaluates expr. ok is false for statement-like expressions (Assign,
// Loop, and Bind/Sequence ending in one). The locals stack is restored to
// its depth on entry even when an error is returned.
func (e *Evaluator) Eval(expr ast.Expr) (value int64, ok bool, err error) {
	switch n := expr.(type) {
	case *ast.Literal:
		return n.Value, true, nil

	case *ast.Argument:
		if n.Index < 0 || n.Index >= len(e.args) {
			return 0, false, fmt.Errorf("%w: %s with %d arguments", ErrMissingArgument, n, len(e.args))
		}
		return e.args[n.Index], true, nil

	case *ast.LocalRef:
		slot, err := e.slot(n.Offset, n)
		if err != nil {
			return 0, false, err
		}
		return e.locals[slot], true, nil

	case *ast.Add:
		left, err := e.value(n.Left)
		if err != nil {
			return 0, false, err
		}
		right, err := e.value(n.Right)
		if err != nil {
			return 0, false, err
		}
		return left + right, true, nil

	case *ast.Bind:
		init, err := e.value(n.Init)
		if err != nil {
			return 0, false, err
		}
		depth := len(e.locals)
		e.locals = append(e.locals, init)
		defer func() { e.locals = e.locals[:depth] }()
		return e.Eval(n.Body)

	case *ast.Assign:
		v, err := e.value(n.Value)
		if err != nil {
			return 0, false, err
		}
		slot, err := e.slot(n.Offset, n)
		if err != nil {
			return 0, false, err
		}
		e.locals[slot] = v
		return 0, false, nil

	case *ast.Loop:
		for {
			cond, err := e.value(n.Cond)
			if err != nil {
				return 0, false, err
			}
			if cond <= 0 {
				return 0, false, nil
			}
			if _, _, err := e.Eval(n.Body); err != nil {
				return 0, false, err
			}
		}

	case *ast.Sequence:
		if _, _, err := e.Eval(n.First); err != nil {
			return 0, false, err
		}
		return e.Eval(n.Second)

	default:
		return 0, false, fmt.Errorf("unknown expression type %T", expr)
	}
}

// value evaluates an operand position, which must produce a value.
func (e *Evaluator) value(expr ast.Expr) (int64, error) {
	v, ok, err := e.Eval(expr)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("%w: %s used as an operand", ErrNoValue, expr)
	}
	return v, nil
}

// slot converts a relative offset into an index of the locals stack.
func (e *Evaluator) slot(offset int, at ast.Expr) (int, error) {
	if offset < 0 || offset >= len(e.locals) {
		return 0, fmt.Errorf("%w: %s with %d bindings", ErrUnboundLocal, at, len(e.locals))
	}
	return len(e.locals) - 1 - offset, nil
}
