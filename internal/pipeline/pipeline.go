package pipeline

import "fmt"

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Then returns a new pipeline that runs p's stages followed by more.
func (p *Pipeline) Then(more ...Processor) *Pipeline {
	stages := make([]Processor, 0, len(p.processors)+len(more))
	stages = append(stages, p.processors...)
	return &Pipeline{processors: append(stages, more...)}
}

// Run executes every stage in order. Stages skip their work once the context
// has failed, so all diagnostics collected so far reach the caller. A stage
// that panics is recorded as an error and ends the run.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		var ok bool
		if ctx, ok = runStage(processor, ctx); !ok {
			break
		}
	}
	return ctx
}

func runStage(processor Processor, ctx *PipelineContext) (next *PipelineContext, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ctx.AddError(fmt.Errorf("%T: internal error: %v", processor, r))
			next, ok = ctx, false
		}
	}()
	return processor.Process(ctx), true
}
