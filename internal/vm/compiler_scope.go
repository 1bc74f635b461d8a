package vm

// beginBinding moves the initialiser off the operand stack into a new local.
// Nested code sees it at offset 0.
func (c *Compiler) beginBinding() {
	c.emit(OP_PUSH_BINDING, 0)
	c.pop()
	c.localDepth++
	if c.localDepth > c.program.MaxLocals {
		c.program.MaxLocals = c.localDepth
	}
}

// endBinding removes the innermost local, restoring the enclosing scope.
func (c *Compiler) endBinding() {
	c.emit(OP_POP_BINDING, 0)
	c.localDepth--
}

// push and pop track the operand stack depth of the code emitted so far.
func (c *Compiler) push() {
	c.stackDepth++
	if c.stackDepth > c.program.MaxStack {
		c.program.MaxStack = c.stackDepth
	}
}

func (c *Compiler) pop() {
	c.stackDepth--
}

// emit helpers

func (c *Compiler) emit(op Opcode, data int64) int {
	return c.program.Write(op, data)
}
