// Package vm compiles expression trees into a flat instruction tape and
// executes that tape.
package vm

import "strconv"

// Opcode selects the effect of one instruction.
type Opcode byte

const (
	// Operand stack
	OP_PUSH_LITERAL  Opcode = iota // Push Data
	OP_PUSH_ARGUMENT               // Push args[Data]
	OP_PUSH_LOCAL                  // Push locals[top-Data]
	OP_ADD                         // Pop right, pop left, push left+right
	OP_POP                         // Discard top of stack

	// Locals stack
	OP_PUSH_BINDING // Move top of operand stack onto the locals stack
	OP_POP_BINDING  // Discard innermost binding
	OP_STORE_LOCAL  // Pop operand stack into locals[top-Data]

	// Control flow
	OP_BRANCH_IF_NOT_POSITIVE // Pop; jump to Data if value <= 0
	OP_JUMP                   // Jump to Data

	// Halt
	OP_HALT // Stop; result is the single remaining operand

	opcodeCount
)

// OpcodeNames maps opcodes to their string names (for disassembly)
var OpcodeNames = map[Opcode]string{
	OP_PUSH_LITERAL:           "PUSH_LITERAL",
	OP_PUSH_ARGUMENT:          "PUSH_ARGUMENT",
	OP_PUSH_LOCAL:             "PUSH_LOCAL",
	OP_ADD:                    "ADD",
	OP_POP:                    "POP",
	OP_PUSH_BINDING:           "PUSH_BINDING",
	OP_POP_BINDING:            "POP_BINDING",
	OP_STORE_LOCAL:            "STORE_LOCAL",
	OP_BRANCH_IF_NOT_POSITIVE: "BRANCH_IF_NOT_POSITIVE",
	OP_JUMP:                   "JUMP",
	OP_HALT:                   "HALT",
}

func (op Opcode) String() string {
	if name, ok := OpcodeNames[op]; ok {
		return name
	}
	return "OP_" + strconv.Itoa(int(op))
}

// hasOperand reports whether the instruction's Data field is meaningful.
func (op Opcode) hasOperand() bool {
	switch op {
	case OP_PUSH_LITERAL, OP_PUSH_ARGUMENT, OP_PUSH_LOCAL, OP_STORE_LOCAL,
		OP_BRANCH_IF_NOT_POSITIVE, OP_JUMP:
		return true
	}
	return false
}

// isJump reports whether Data is an absolute tape index.
func (op Opcode) isJump() bool {
	return op == OP_BRANCH_IF_NOT_POSITIVE || op == OP_JUMP
}
