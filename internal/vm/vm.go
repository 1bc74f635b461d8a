package vm

import (
	"errors"
	"fmt"
	"runtime"
)

var ErrMissingArgument = errors.New("argument vector too short")
var ErrMalformedProgram = errors.New("malformed program")

// Initial capacities for the operand and locals stacks. Programs that know
// their high-water marks grow the buffers once, up front.
const InitialStackSize = 64
const InitialLocalsSize = 16

// VM executes programs with a switch-dispatched interpreter loop. The operand
// and locals buffers are reused across calls, so a VM must not be used by two
// goroutines at once; give each goroutine its own VM and share the Program.
type VM struct {
	stack  []int64
	locals []int64
}

// New creates a VM with empty stacks.
func New() *VM {
	return &VM{
		stack:  make([]int64, 0, InitialStackSize),
		locals: make([]int64, 0, InitialLocalsSize),
	}
}

// Execute runs p against args on a fresh VM.
func Execute(p *Program, args []int64) int64 {
	return New().Execute(p, args)
}

// Execute runs p against args and returns the value left by HALT.
//
// p is trusted: it must come from Compile or have passed Verify, and args
// must hold at least p.Arity() entries. Nothing is checked here; a violated
// precondition surfaces as a Go runtime panic. Use Run for a checked call.
func (vm *VM) Execute(p *Program, args []int64) int64 {
	vm.reserve(p)

	// Stacks always start empty, whatever the previous call left behind.
	stack := vm.stack[:0]
	locals := vm.locals[:0]
	code := p.Code
	pc := 0

	for {
		ins := code[pc]
		pc++

		switch ins.Op {
		case OP_PUSH_LITERAL:
			stack = append(stack, ins.Data)

		case OP_PUSH_ARGUMENT:
			stack = append(stack, args[ins.Data])

		case OP_PUSH_LOCAL:
			stack = append(stack, locals[len(locals)-1-int(ins.Data)])

		case OP_ADD:
			n := len(stack)
			right := stack[n-1]
			left := stack[n-2]
			stack[n-2] = left + right
			stack = stack[:n-1]

		case OP_POP:
			stack = stack[:len(stack)-1]

		case OP_PUSH_BINDING:
			n := len(stack) - 1
			locals = append(locals, stack[n])
			stack = stack[:n]

		case OP_POP_BINDING:
			locals = locals[:len(locals)-1]

		case OP_STORE_LOCAL:
			n := len(stack) - 1
			locals[len(locals)-1-int(ins.Data)] = stack[n]
			stack = stack[:n]

		case OP_BRANCH_IF_NOT_POSITIVE:
			n := len(stack) - 1
			if stack[n] <= 0 {
				pc = int(ins.Data)
			}
			stack = stack[:n]

		case OP_JUMP:
			pc = int(ins.Data)

		case OP_HALT:
			result := stack[len(stack)-1]
			// Keep whatever the stacks grew to for the next call.
			vm.stack, vm.locals = stack[:0], locals[:0]
			return result

		default:
			panic(fmt.Sprintf("vm: unknown opcode %d at %d", ins.Op, pc-1))
		}
	}
}

// Run is the checked form of Execute: a short argument vector is reported
// before execution starts, and a tape that would index outside its stacks
// yields ErrMalformedProgram instead of a panic.
func (vm *VM) Run(p *Program, args []int64) (result int64, err error) {
	// A zero MaxArgument may just be an unset field on a hand-built Program,
	// so a short vector is confirmed against the tape before it is refused.
	if len(args) < p.Arity() {
		if need := p.argumentsRead(); len(args) < need {
			return 0, fmt.Errorf("%w: program reads argument %d, got %d arguments",
				ErrMissingArgument, need-1, len(args))
		}
	}
	if len(p.Code) == 0 {
		return 0, fmt.Errorf("%w: empty tape", ErrMalformedProgram)
	}

	defer func() {
		if r := recover(); r != nil {
			vm.stack, vm.locals = vm.stack[:0], vm.locals[:0]
			switch e := r.(type) {
			case runtime.Error:
				err = fmt.Errorf("%w: %v", ErrMalformedProgram, e)
			case string:
				err = fmt.Errorf("%w: %s", ErrMalformedProgram, e)
			default:
				panic(r)
			}
		}
	}()

	return vm.Execute(p, args), nil
}

// reserve grows the buffers to the program's recorded high-water marks so
// the dispatch loop never reallocates.
func (vm *VM) reserve(p *Program) {
	if p.MaxStack > cap(vm.stack) {
		vm.stack = make([]int64, 0, p.MaxStack)
	}
	if p.MaxLocals > cap(vm.locals) {
		vm.locals = make([]int64, 0, p.MaxLocals)
	}
}
