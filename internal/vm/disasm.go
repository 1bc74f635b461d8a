package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the tape
func Disassemble(p *Program, name string) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", name))

	for offset := range p.Code {
		disassembleInstruction(&sb, p, offset)
	}

	return sb.String()
}

// disassembleInstruction writes one line for the instruction at offset
func disassembleInstruction(sb *strings.Builder, p *Program, offset int) {
	ins := p.Code[offset]
	sb.WriteString(fmt.Sprintf("%04d ", offset))

	switch {
	case ins.Op.isJump():
		sb.WriteString(fmt.Sprintf("%-24s -> %04d\n", ins.Op, ins.Data))
	case ins.Op.hasOperand():
		sb.WriteString(fmt.Sprintf("%-24s %d\n", ins.Op, ins.Data))
	default:
		sb.WriteString(ins.Op.String())
		sb.WriteByte('\n')
	}
}
