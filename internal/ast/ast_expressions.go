package ast

import "strconv"

// Literal is a constant 64-bit signed integer.
type Literal struct {
	Value int64
}

func (l *Literal) exprNode()      {}
func (l *Literal) String() string { return sexpr("lit", strconv.FormatInt(l.Value, 10)) }

// Argument reads entry Index of the caller-supplied argument vector.
type Argument struct {
	Index int
}

func (a *Argument) exprNode()      {}
func (a *Argument) String() string { return sexpr("arg", itoa(a.Index)) }

// LocalRef reads a local binding. Offset 0 is the innermost binding that is
// still in scope, 1 the one enclosing it, and so on.
type LocalRef struct {
	Offset int
}

func (r *LocalRef) exprNode()      {}
func (r *LocalRef) String() string { return sexpr("local", itoa(r.Offset)) }

// Add is the wrapping 64-bit sum of Left and Right.
type Add struct {
	Left  Expr
	Right Expr
}

func (a *Add) exprNode()      {}
func (a *Add) String() string { return sexpr("add", a.Left.String(), a.Right.String()) }

// Bind introduces one local binding initialised from Init. The binding is
// visible at offset 0 inside Body and removed once Body finishes.
type Bind struct {
	Init Expr
	Body Expr
}

func (b *Bind) exprNode()      {}
func (b *Bind) String() string { return sexpr("bind", b.Init.String(), b.Body.String()) }

// Assign overwrites the local binding at Offset with Value. It produces no value.
type Assign struct {
	Offset int
	Value  Expr
}

func (a *Assign) exprNode()      {}
func (a *Assign) String() string { return sexpr("assign", itoa(a.Offset), a.Value.String()) }

// Loop re-evaluates Cond before every iteration and runs Body while it is
// strictly positive. It produces no value.
type Loop struct {
	Cond Expr
	Body Expr
}

func (l *Loop) exprNode()      {}
func (l *Loop) String() string { return sexpr("loop", l.Cond.String(), l.Body.String()) }

// Sequence evaluates First, discarding its value if it has one, then Second.
type Sequence struct {
	First  Expr
	Second Expr
}

func (s *Sequence) exprNode()      {}
func (s *Sequence) String() string { return sexpr("seq", s.First.String(), s.Second.String()) }
