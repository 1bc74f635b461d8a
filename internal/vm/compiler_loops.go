package vm

import "github.com/funvibe/tapevm/internal/ast"

// jumpPlaceholder marks a forward jump whose target is not known yet.
const jumpPlaceholder int64 = -1

// compileLoop compiles a while-style loop:
//
//	start: <cond>
//	       BRANCH_IF_NOT_POSITIVE exit
//	       <body> [POP]
//	       JUMP start
//	exit:
func (c *Compiler) compileLoop(loop *ast.Loop) {
	loopStart := c.program.Len()

	c.compileExpression(loop.Cond)

	exitJump := c.emitJump(OP_BRANCH_IF_NOT_POSITIVE)
	c.pop() // condition

	// The body must leave the operand stack as it found it so every
	// iteration starts at the same depth.
	c.compileExpression(loop.Body)
	c.discardIfValue(loop.Body)

	c.emitLoop(loopStart)

	c.patchJump(exitJump)
}

// emitJump emits a jump with a placeholder target and returns its index
// for patchJump.
func (c *Compiler) emitJump(op Opcode) int {
	return c.emit(op, jumpPlaceholder)
}

// patchJump points the jump at index to the next instruction to be emitted.
func (c *Compiler) patchJump(index int) {
	c.program.Code[index].Data = int64(c.program.Len())
}

// emitLoop emits an unconditional backward jump to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	c.emit(OP_JUMP, int64(loopStart))
}
