package pipeline

import (
	"errors"
	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/vm"
)

// Processor is one stage of a pipeline.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// ProcessorFunc adapts a plain function to Processor.
type ProcessorFunc func(ctx *PipelineContext) *PipelineContext

func (f ProcessorFunc) Process(ctx *PipelineContext) *PipelineContext {
	return f(ctx)
}

// PipelineContext carries an expression from its source to its result.
type PipelineContext struct {
	FilePath string
	Source   []byte

	Name   string
	Expr   ast.Expr
	Args   []int64
	Expect *int64

	Program *vm.Program

	Result    int64
	HasResult bool

	Errors []error
}

// NewPipelineContext creates a context for the file at path. Source may be
// nil, in which case the loader reads the file.
func NewPipelineContext(path string, source []byte) *PipelineContext {
	return &PipelineContext{FilePath: path, Source: source}
}

// NewExprContext creates a context for an already built expression.
func NewExprContext(name string, expr ast.Expr, args []int64) *PipelineContext {
	return &PipelineContext{Name: name, Expr: expr, Args: args}
}

// Failed reports whether any stage has recorded an error.
func (c *PipelineContext) Failed() bool {
	return len(c.Errors) > 0
}

// AddError records err unless it is nil.
func (c *PipelineContext) AddError(err error) {
	if err != nil {
		c.Errors = append(c.Errors, err)
	}
}

// Err joins all recorded errors.
func (c *PipelineContext) Err() error {
	return errors.Join(c.Errors...)
}
