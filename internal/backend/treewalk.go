package backend

import (
	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/config"
	"github.com/funvibe/tapevm/internal/evaluator"
)

// TreeWalkBackend wraps the reference evaluator
type TreeWalkBackend struct{}

// NewTreeWalk creates a new tree-walk backend
func NewTreeWalk() *TreeWalkBackend {
	return &TreeWalkBackend{}
}

func (b *TreeWalkBackend) Name() string { return config.BackendTree }

func (b *TreeWalkBackend) Prepare(expr ast.Expr) (Executable, error) {
	if _, err := check(expr); err != nil {
		return nil, err
	}
	return treeExecutable{expr: expr}, nil
}

type treeExecutable struct {
	expr ast.Expr
}

func (e treeExecutable) Execute(args []int64) (int64, error) {
	return evaluator.Eval(e.expr, args)
}
