package parser

import (
	"fmt"
	"os"

	"github.com/funvibe/tapevm/internal/config"
	"github.com/funvibe/tapevm/internal/pipeline"
	"github.com/funvibe/tapevm/internal/utils"
)

// Processor parses s-expression sources into ctx.Expr. Contexts that already
// hold an expression, or whose file is not an s-expression file, pass
// through untouched.
type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Expr != nil || ctx.Failed() || !config.IsSexprFile(ctx.FilePath) {
		return ctx
	}

	src := ctx.Source
	if src == nil {
		data, err := os.ReadFile(ctx.FilePath)
		if err != nil {
			ctx.AddError(fmt.Errorf("reading %s: %w", ctx.FilePath, err))
			return ctx
		}
		src = data
	}

	expr, err := Parse(string(src), ctx.FilePath)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Expr = expr
	if ctx.Name == "" {
		ctx.Name = utils.ExtractExprName(ctx.FilePath)
	}
	return ctx
}
