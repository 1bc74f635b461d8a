// Package backend provides an interface for different execution backends.
// This allows switching between the tape VM, its direct-call variant, the
// closure compiler and the tree-walk evaluator.
package backend

import (
	"fmt"
	"strings"

	"github.com/funvibe/tapevm/internal/analyzer"
	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/config"
	"github.com/funvibe/tapevm/internal/vm"
)

// Backend is the interface for execution backends
type Backend interface {
	// Prepare checks expr and turns it into something that can run many times.
	Prepare(expr ast.Expr) (Executable, error)

	// Name returns the backend name for display
	Name() string
}

// ProgramBackend is implemented by backends that can run a tape directly,
// without the expression it was compiled from.
type ProgramBackend interface {
	Backend
	PrepareProgram(p *vm.Program) (Executable, error)
}

// Executable is a prepared expression. Implementations are not safe for
// concurrent use; prepare one per goroutine.
type Executable interface {
	Execute(args []int64) (int64, error)
}

// New returns the backend registered under name.
func New(name string) (Backend, error) {
	switch name {
	case config.BackendVM:
		return NewVM(), nil
	case config.BackendVMDirect:
		return NewVMDirect(), nil
	case config.BackendClosure:
		return NewClosure(), nil
	case config.BackendTree:
		return NewTreeWalk(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (known: %s)", name, strings.Join(Names(), ", "))
	}
}

// Names lists every backend name accepted by New.
func Names() []string {
	return config.BackendNames()
}

// check runs the analyzer so that only well-formed expressions reach the
// trusting executors.
func check(expr ast.Expr) (*analyzer.Info, error) {
	if expr == nil {
		return nil, fmt.Errorf("no expression to prepare")
	}
	return analyzer.Analyze(expr)
}
