package vm

// Instruction is one tape entry: an opcode plus a 64-bit immediate whose
// meaning depends on the opcode (literal value, argument index, local offset
// or absolute jump target).
type Instruction struct {
	Op   Opcode
	Data int64
}

// Program is a compiled instruction tape. It is immutable once Compile returns
// and may be executed concurrently by any number of VMs.
//
// Compile, NewProgram and Deserialize fill in the statistics. A Program built
// as a literal leaves them zero; Run still accepts it, Execute does not.
type Program struct {
	// Code is the instruction tape. Jump targets index into it.
	Code []Instruction

	// MaxStack is the operand stack high-water mark.
	MaxStack int

	// MaxLocals is the deepest binding nesting reached.
	MaxLocals int

	// MaxArgument is the largest argument index referenced, or -1.
	MaxArgument int
}

// NewProgram creates an empty program with room for a typical tape.
func NewProgram() *Program {
	return &Program{
		Code:        make([]Instruction, 0, 64),
		MaxArgument: -1,
	}
}

// Write appends an instruction and returns its index.
func (p *Program) Write(op Opcode, data int64) int {
	p.Code = append(p.Code, Instruction{Op: op, Data: data})
	return len(p.Code) - 1
}

// Len returns the number of instructions in the tape.
func (p *Program) Len() int {
	return len(p.Code)
}

// Arity is the minimum argument vector length the program needs.
func (p *Program) Arity() int {
	return p.MaxArgument + 1
}

// argumentsRead scans the tape for the highest argument index it pushes and
// returns the argument vector length that index needs.
func (p *Program) argumentsRead() int {
	need := 0
	for _, ins := range p.Code {
		if ins.Op == OP_PUSH_ARGUMENT && int(ins.Data)+1 > need {
			need = int(ins.Data) + 1
		}
	}
	return need
}
