package backend

import (
	"errors"
	"fmt"

	"github.com/funvibe/tapevm/internal/pipeline"
	"github.com/funvibe/tapevm/internal/vm"
)

var ErrUnexpectedResult = errors.New("unexpected result")

// CompileProcessor lowers ctx.Expr into ctx.Program. It expects the
// analyzer to have run before it.
type CompileProcessor struct{}

func (p *CompileProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Expr == nil || ctx.Program != nil || ctx.Failed() {
		return ctx
	}
	ctx.Program = vm.Compile(ctx.Expr)
	return ctx
}

// ExecutionProcessor implements pipeline.Processor to run a Backend
type ExecutionProcessor struct {
	Backend Backend
}

// NewExecutionProcessor creates a new pipeline step for the given backend
func NewExecutionProcessor(b Backend) *ExecutionProcessor {
	return &ExecutionProcessor{Backend: b}
}

func (p *ExecutionProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	// If previous steps failed, don't run execution
	if ctx.Failed() {
		return ctx
	}

	exe, err := p.prepare(ctx)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}

	result, err := exe.Execute(ctx.Args)
	if err != nil {
		ctx.AddError(fmt.Errorf("%s: %w", p.Backend.Name(), err))
		return ctx
	}
	ctx.Result = result
	ctx.HasResult = true

	if ctx.Expect != nil && *ctx.Expect != result {
		ctx.AddError(fmt.Errorf("%w: %s on %s returned %d, expected %d",
			ErrUnexpectedResult, ctx.Name, p.Backend.Name(), result, *ctx.Expect))
	}
	return ctx
}

func (p *ExecutionProcessor) prepare(ctx *pipeline.PipelineContext) (Executable, error) {
	if ctx.Expr != nil {
		return p.Backend.Prepare(ctx.Expr)
	}
	if ctx.Program != nil {
		if pb, ok := p.Backend.(ProgramBackend); ok {
			return pb.PrepareProgram(ctx.Program)
		}
		return nil, fmt.Errorf("backend %s cannot run a tape without its expression", p.Backend.Name())
	}
	return nil, fmt.Errorf("nothing to execute")
}
