package generators

import (
	"github.com/funvibe/tapevm/internal/vm"
)

// TapeGenerator generates random tapes, most of them malformed, to exercise
// the verifier and the bundle decoder.
type TapeGenerator struct {
	*Generator
}

// NewTapeGenerator creates a new tape generator.
func NewTapeGenerator(data []byte) *TapeGenerator {
	return &TapeGenerator{
		Generator: NewFromData(data),
	}
}

// GenerateProgram creates a random tape.
func (g *TapeGenerator) GenerateProgram() *vm.Program {
	p := vm.NewProgram()
	codeLen := g.Src().Intn(40) + 1
	for i := 0; i < codeLen; i++ {
		// A few values past the last opcode test rejection of unknown ones.
		op := vm.Opcode(g.Src().Intn(int(vm.OP_HALT) + 3))
		p.Write(op, g.operand(op, codeLen))
	}
	// Mostly end in HALT so some tapes get past the first check.
	if g.Src().Intn(4) != 0 {
		p.Write(vm.OP_HALT, 0)
	}
	return p
}

func (g *TapeGenerator) operand(op vm.Opcode, codeLen int) int64 {
	switch op {
	case vm.OP_JUMP, vm.OP_BRANCH_IF_NOT_POSITIVE:
		return int64(g.Src().Intn(codeLen+3) - 1)
	case vm.OP_PUSH_ARGUMENT, vm.OP_PUSH_LOCAL, vm.OP_STORE_LOCAL:
		return int64(g.Src().Intn(6) - 1)
	case vm.OP_PUSH_LITERAL:
		return g.literal()
	default:
		return 0
	}
}

// ForwardOnly reports whether every jump in p targets a later instruction,
// which guarantees that execution terminates.
func ForwardOnly(p *vm.Program) bool {
	for i, ins := range p.Code {
		if (ins.Op == vm.OP_JUMP || ins.Op == vm.OP_BRANCH_IF_NOT_POSITIVE) && ins.Data <= int64(i) {
			return false
		}
	}
	return true
}
