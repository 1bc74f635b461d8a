package backend

import (
	"fmt"

	"github.com/funvibe/tapevm/internal/analyzer"
	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/closure"
	"github.com/funvibe/tapevm/internal/config"
)

// ClosureBackend lowers expressions into nested Go closures.
type ClosureBackend struct{}

func NewClosure() *ClosureBackend {
	return &ClosureBackend{}
}

func (b *ClosureBackend) Name() string { return config.BackendClosure }

func (b *ClosureBackend) Prepare(expr ast.Expr) (Executable, error) {
	info, err := check(expr)
	if err != nil {
		return nil, err
	}
	return &closureExecutable{fn: closure.Compile(expr), info: info}, nil
}

type closureExecutable struct {
	fn   *closure.Func
	info *analyzer.Info
}

func (e *closureExecutable) Execute(args []int64) (int64, error) {
	if err := analyzer.CheckArgs(e.info, args); err != nil {
		return 0, fmt.Errorf("closure: %w", err)
	}
	return e.fn.Call(args), nil
}
