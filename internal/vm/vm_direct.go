package vm

import "fmt"

// machine is the execution state shared by the direct-call handlers.
type machine struct {
	args   []int64
	pc     int
	stack  []int64
	locals []int64
}

// handler performs one instruction. Every opcode has the same signature;
// returning true halts the dispatch loop.
type handler func(m *machine, data int64) bool

var handlers = [opcodeCount]handler{
	OP_PUSH_LITERAL:           pushLiteral,
	OP_PUSH_ARGUMENT:          pushArgument,
	OP_PUSH_LOCAL:             pushLocal,
	OP_ADD:                    add,
	OP_POP:                    pop,
	OP_PUSH_BINDING:           pushBinding,
	OP_POP_BINDING:            popBinding,
	OP_STORE_LOCAL:            storeLocal,
	OP_BRANCH_IF_NOT_POSITIVE: branchIfNotPositive,
	OP_JUMP:                   jump,
	OP_HALT:                   halt,
}

func pushLiteral(m *machine, data int64) bool {
	m.stack = append(m.stack, data)
	return false
}

func pushArgument(m *machine, data int64) bool {
	m.stack = append(m.stack, m.args[data])
	return false
}

func pushLocal(m *machine, data int64) bool {
	m.stack = append(m.stack, m.locals[len(m.locals)-1-int(data)])
	return false
}

func add(m *machine, _ int64) bool {
	n := len(m.stack)
	right := m.stack[n-1]
	left := m.stack[n-2]
	m.stack[n-2] = left + right
	m.stack = m.stack[:n-1]
	return false
}

func pop(m *machine, _ int64) bool {
	m.stack = m.stack[:len(m.stack)-1]
	return false
}

func pushBinding(m *machine, _ int64) bool {
	n := len(m.stack) - 1
	m.locals = append(m.locals, m.stack[n])
	m.stack = m.stack[:n]
	return false
}

func popBinding(m *machine, _ int64) bool {
	m.locals = m.locals[:len(m.locals)-1]
	return false
}

func storeLocal(m *machine, data int64) bool {
	n := len(m.stack) - 1
	m.locals[len(m.locals)-1-int(data)] = m.stack[n]
	m.stack = m.stack[:n]
	return false
}

func branchIfNotPositive(m *machine, data int64) bool {
	n := len(m.stack) - 1
	if m.stack[n] <= 0 {
		m.pc = int(data)
	}
	m.stack = m.stack[:n]
	return false
}

func jump(m *machine, data int64) bool {
	m.pc = int(data)
	return false
}

func halt(_ *machine, _ int64) bool {
	return true
}

// linked pairs an instruction's handler with its immediate.
type linked struct {
	fn   handler
	data int64
}

// ThreadedProgram is a Program whose opcodes have been resolved to handler
// functions ahead of time. Like Program it is immutable and shareable.
type ThreadedProgram struct {
	code      []linked
	maxStack  int
	maxLocals int
	arity     int
}

// Thread links every instruction of p to its handler.
func Thread(p *Program) (*ThreadedProgram, error) {
	code := make([]linked, len(p.Code))
	for i, ins := range p.Code {
		if int(ins.Op) >= len(handlers) {
			return nil, fmt.Errorf("%w: unknown opcode %d at %d", ErrMalformedProgram, ins.Op, i)
		}
		code[i] = linked{fn: handlers[ins.Op], data: ins.Data}
	}
	return &ThreadedProgram{
		code:      code,
		maxStack:  p.MaxStack,
		maxLocals: p.MaxLocals,
		arity:     p.Arity(),
	}, nil
}

// Arity is the minimum argument vector length the program needs.
func (t *ThreadedProgram) Arity() int {
	return t.arity
}

// Execute runs the linked tape against args. The same trust rules as
// (*VM).Execute apply.
func (t *ThreadedProgram) Execute(args []int64) int64 {
	m := machine{
		args:   args,
		stack:  make([]int64, 0, max(t.maxStack, InitialStackSize)),
		locals: make([]int64, 0, max(t.maxLocals, InitialLocalsSize)),
	}
	code := t.code
	for {
		ins := code[m.pc]
		m.pc++
		if ins.fn(&m, ins.data) {
			return m.stack[len(m.stack)-1]
		}
	}
}
