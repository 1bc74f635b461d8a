// Package ast defines the expression trees consumed by the tape compiler,
// the reference evaluator and the closure backend.
package ast

import (
	"strconv"
	"strings"
)

// Expr is a node of an expression tree. Trees are built by callers and are
// never mutated after construction.
type Expr interface {
	exprNode()
	String() string
}

// ProducesValue reports whether evaluating e leaves exactly one value on the
// operand stack. Assign and Loop are statement-like and never do.
func ProducesValue(e Expr) bool {
	switch n := e.(type) {
	case *Literal, *Argument, *LocalRef, *Add:
		return true
	case *Bind:
		return ProducesValue(n.Body)
	case *Sequence:
		return ProducesValue(n.Second)
	default:
		return false
	}
}

// Seq right-folds its operands into nested Sequence nodes:
// Seq(a, b, c) == Sequence{a, Sequence{b, c}}.
func Seq(first Expr, rest ...Expr) Expr {
	if len(rest) == 0 {
		return first
	}
	return &Sequence{First: first, Second: Seq(rest[0], rest[1:]...)}
}

// Walk calls fn for e and every descendant in pre-order. If fn returns false
// the children of that node are skipped.
func Walk(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, child := range Children(e) {
		Walk(child, fn)
	}
}

// Children returns the direct sub-expressions of e in evaluation order.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *Add:
		return []Expr{n.Left, n.Right}
	case *Bind:
		return []Expr{n.Init, n.Body}
	case *Assign:
		return []Expr{n.Value}
	case *Loop:
		return []Expr{n.Cond, n.Body}
	case *Sequence:
		return []Expr{n.First, n.Second}
	default:
		return nil
	}
}

// Size returns the number of nodes in e.
func Size(e Expr) int {
	n := 0
	Walk(e, func(Expr) bool {
		n++
		return true
	})
	return n
}

func sexpr(head string, parts ...string) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(head)
	for _, p := range parts {
		sb.WriteByte(' ')
		sb.WriteString(p)
	}
	sb.WriteByte(')')
	return sb.String()
}

func itoa(n int) string { return strconv.Itoa(n) }
