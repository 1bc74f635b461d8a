package analyzer

import (
	"github.com/funvibe/tapevm/internal/pipeline"
)

// Processor analyzes ctx.Expr and, when arguments are already known,
// checks that there are enough of them.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Expr == nil || ctx.Failed() {
		return ctx
	}

	info, err := Analyze(ctx.Expr)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	if ctx.Args != nil {
		ctx.AddError(CheckArgs(info, ctx.Args))
	}
	return ctx
}
