package vm

import (
	"fmt"
	"github.com/funvibe/tapevm/internal/ast"
)

// Compiler lowers an expression tree into a Program. A Compiler is single-use.
type Compiler struct {
	program *Program

	// stackDepth and localDepth mirror what the executor's stacks will hold
	// at the instruction about to be emitted.
	stackDepth int
	localDepth int
}

// NewCompiler creates a compiler with an empty tape.
func NewCompiler() *Compiler {
	return &Compiler{program: NewProgram()}
}

// Compile lowers expr and appends the final HALT. It cannot fail for a
// well-formed tree; an unknown node type panics.
func Compile(expr ast.Expr) *Program {
	return NewCompiler().Compile(expr)
}

// Compile lowers expr into the compiler's tape and returns it.
func (c *Compiler) Compile(expr ast.Expr) *Program {
	c.compileExpression(expr)
	c.emit(OP_HALT, 0)
	return c.program
}

func (c *Compiler) compileExpression(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
		c.emit(OP_PUSH_LITERAL, e.Value)
		c.push()

	case *ast.Argument:
		c.emit(OP_PUSH_ARGUMENT, int64(e.Index))
		if e.Index > c.program.MaxArgument {
			c.program.MaxArgument = e.Index
		}
		c.push()

	case *ast.LocalRef:
		c.emit(OP_PUSH_LOCAL, int64(e.Offset))
		c.push()

	case *ast.Add:
		c.compileExpression(e.Left)
		c.compileExpression(e.Right)
		c.emit(OP_ADD, 0)
		c.pop()

	case *ast.Bind:
		c.compileExpression(e.Init)
		c.beginBinding()
		c.compileExpression(e.Body)
		c.endBinding()

	case *ast.Assign:
		c.compileExpression(e.Value)
		c.emit(OP_STORE_LOCAL, int64(e.Offset))
		c.pop()

	case *ast.Loop:
		c.compileLoop(e)

	case *ast.Sequence:
		c.compileExpression(e.First)
		c.discardIfValue(e.First)
		c.compileExpression(e.Second)

	default:
		panic(fmt.Sprintf("vm: cannot compile expression of type %T", expr))
	}
}

// discardIfValue drops the value e left on the operand stack, if any.
func (c *Compiler) discardIfValue(e ast.Expr) {
	if ast.ProducesValue(e) {
		c.emit(OP_POP, 0)
		c.pop()
	}
}
