// Package closure compiles expression trees into nested Go closures, one per
// node, as an alternative to the instruction tape.
package closure

import (
	"fmt"
	"github.com/funvibe/tapevm/internal/ast"
)

// frame is the per-call state shared by every closure of one compiled tree.
type frame struct {
	args   []int64
	locals []int64
}

// instruction evaluates one node. Nodes that produce no value return 0.
type instruction func(f *frame) int64

// Func is a compiled expression. It holds no per-call state and may be
// called from several goroutines.
type Func struct {
	root      instruction
	maxLocals int
}

// Compile turns expr into a Func. Like the tape compiler it trusts the
// tree: scope and arity are not checked.
func Compile(expr ast.Expr) *Func {
	c := &compiler{}
	root := c.compile(expr)
	return &Func{root: root, maxLocals: c.maxDepth}
}

// Call evaluates the compiled expression against args.
func (fn *Func) Call(args []int64) int64 {
	f := &frame{args: args, locals: make([]int64, 0, fn.maxLocals)}
	return fn.root(f)
}

type compiler struct {
	depth    int
	maxDepth int
}

func (c *compiler) compile(node ast.Expr) instruction {
	switch n := node.(type) {
	case *ast.Literal:
		value := n.Value
		return func(*frame) int64 { return value }

	case *ast.Argument:
		index := n.Index
		return func(f *frame) int64 { return f.args[index] }

	case *ast.LocalRef:
		offset := n.Offset + 1
		return func(f *frame) int64 { return f.locals[len(f.locals)-offset] }

	case *ast.Add:
		left, right := c.compile(n.Left), c.compile(n.Right)
		return func(f *frame) int64 { return left(f) + right(f) }

	case *ast.Bind:
		init := c.compile(n.Init)
		c.depth++
		c.maxDepth = max(c.maxDepth, c.depth)
		body := c.compile(n.Body)
		c.depth--
		return func(f *frame) int64 {
			f.locals = append(f.locals, init(f))
			v := body(f)
			f.locals = f.locals[:len(f.locals)-1]
			return v
		}

	case *ast.Assign:
		offset := n.Offset + 1
		value := c.compile(n.Value)
		return func(f *frame) int64 {
			v := value(f)
			f.locals[len(f.locals)-offset] = v
			return 0
		}

	case *ast.Loop:
		cond, body := c.compile(n.Cond), c.compile(n.Body)
		return func(f *frame) int64 {
			for cond(f) > 0 {
				body(f)
			}
			return 0
		}

	case *ast.Sequence:
		first, second := c.compile(n.First), c.compile(n.Second)
		return func(f *frame) int64 {
			first(f)
			return second(f)
		}

	default:
		panic(fmt.Sprintf("closure: cannot compile expression of type %T", node))
	}
}
