package exprfile

import (
	"github.com/funvibe/tapevm/internal/pipeline"
)

// Processor decodes ctx.Source (or the file at ctx.FilePath) into ctx.Expr.
// Arguments from the file are used only when the caller supplied none.
type Processor struct{}

func (p *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Expr != nil || ctx.Failed() {
		return ctx
	}

	var f *File
	var err error
	if ctx.Source != nil {
		f, err = Parse(ctx.Source, ctx.FilePath)
	} else {
		f, err = Load(ctx.FilePath)
	}
	if err != nil {
		ctx.AddError(err)
		return ctx
	}

	ctx.Expr = f.Expr
	if ctx.Name == "" {
		ctx.Name = f.Name
	}
	if ctx.Args == nil {
		ctx.Args = f.Args
		ctx.Expect = f.Expect
	}
	return ctx
}
