package backend

import (
	"fmt"

	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/config"
	"github.com/funvibe/tapevm/internal/vm"
)

// VMBackend compiles to a tape and runs it on the switch-dispatch VM.
type VMBackend struct{}

// NewVM creates a new VM backend
func NewVM() *VMBackend {
	return &VMBackend{}
}

func (b *VMBackend) Name() string { return config.BackendVM }

func (b *VMBackend) Prepare(expr ast.Expr) (Executable, error) {
	if _, err := check(expr); err != nil {
		return nil, err
	}
	return b.PrepareProgram(vm.Compile(expr))
}

// PrepareProgram wraps an existing tape. The tape must be trusted: produced
// by the compiler or accepted by vm.Verify.
func (b *VMBackend) PrepareProgram(p *vm.Program) (Executable, error) {
	if p == nil || p.Len() == 0 {
		return nil, fmt.Errorf("%w: empty tape", vm.ErrMalformedProgram)
	}
	return &vmExecutable{program: p, machine: vm.New()}, nil
}

type vmExecutable struct {
	program *vm.Program
	machine *vm.VM
}

func (e *vmExecutable) Execute(args []int64) (int64, error) {
	return e.machine.Run(e.program, args)
}

// VMDirectBackend runs tapes through the function-table dispatcher.
type VMDirectBackend struct{}

// NewVMDirect creates a new direct-call VM backend
func NewVMDirect() *VMDirectBackend {
	return &VMDirectBackend{}
}

func (b *VMDirectBackend) Name() string { return config.BackendVMDirect }

func (b *VMDirectBackend) Prepare(expr ast.Expr) (Executable, error) {
	if _, err := check(expr); err != nil {
		return nil, err
	}
	return b.PrepareProgram(vm.Compile(expr))
}

func (b *VMDirectBackend) PrepareProgram(p *vm.Program) (Executable, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: empty tape", vm.ErrMalformedProgram)
	}
	threaded, err := vm.Thread(p)
	if err != nil {
		return nil, err
	}
	return &directExecutable{program: threaded}, nil
}

type directExecutable struct {
	program *vm.ThreadedProgram
}

func (e *directExecutable) Execute(args []int64) (int64, error) {
	if len(args) < e.program.Arity() {
		return 0, fmt.Errorf("%w: need %d, got %d", vm.ErrMissingArgument, e.program.Arity(), len(args))
	}
	return e.program.Execute(args), nil
}
