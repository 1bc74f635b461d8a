package mutator

import (
	"math/rand"

	"github.com/funvibe/tapevm/internal/ast"
)

// ExprMutator applies random mutations to expression trees. Mutated trees
// are usually still syntactically valid but may break scoping or arity.
type ExprMutator struct {
	rnd *rand.Rand
}

// NewExprMutator creates a new ExprMutator with the given seed.
func NewExprMutator(seed int64) *ExprMutator {
	return &ExprMutator{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// Mutate returns a copy of expr with one random node changed. The input
// tree is left untouched.
func (m *ExprMutator) Mutate(expr ast.Expr) ast.Expr {
	if expr == nil {
		return nil
	}
	out := Clone(expr)

	var nodes []ast.Expr
	ast.Walk(out, func(e ast.Expr) bool {
		nodes = append(nodes, e)
		return true
	})
	m.mutateNode(nodes[m.rnd.Intn(len(nodes))])
	return out
}

func (m *ExprMutator) mutateNode(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		e.Value += m.rnd.Int63n(21) - 10 // -10 to +10
	case *ast.Argument:
		e.Index += m.delta()
	case *ast.LocalRef:
		e.Offset += m.delta()
	case *ast.Assign:
		if m.rnd.Float32() < 0.5 {
			e.Offset += m.delta()
		} else {
			m.mutateNode(e.Value)
		}
	case *ast.Add:
		e.Left, e.Right = e.Right, e.Left
	case *ast.Sequence:
		e.First, e.Second = e.Second, e.First
	case *ast.Bind:
		// Drop the binding's initialiser in favour of a literal.
		e.Init = &ast.Literal{Value: m.rnd.Int63n(11) - 5}
	case *ast.Loop:
		e.Cond, e.Body = e.Body, e.Cond
	}
}

func (m *ExprMutator) delta() int {
	if m.rnd.Intn(2) == 0 {
		return -1
	}
	return 1
}

// Clone returns a deep copy of expr.
func Clone(expr ast.Expr) ast.Expr {
	switch e := expr.(type) {
	case nil:
		return nil
	case *ast.Literal:
		c := *e
		return &c
	case *ast.Argument:
		c := *e
		return &c
	case *ast.LocalRef:
		c := *e
		return &c
	case *ast.Add:
		return &ast.Add{Left: Clone(e.Left), Right: Clone(e.Right)}
	case *ast.Bind:
		return &ast.Bind{Init: Clone(e.Init), Body: Clone(e.Body)}
	case *ast.Assign:
		return &ast.Assign{Offset: e.Offset, Value: Clone(e.Value)}
	case *ast.Loop:
		return &ast.Loop{Cond: Clone(e.Cond), Body: Clone(e.Body)}
	case *ast.Sequence:
		return &ast.Sequence{First: Clone(e.First), Second: Clone(e.Second)}
	default:
		panic("mutator: unknown expression type")
	}
}
