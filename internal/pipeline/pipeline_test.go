package pipeline

import (
	"errors"
	"github.com/funvibe/tapevm/internal/ast"
	"strings"
	"testing"
)

func TestPipelineRunsEveryStage(t *testing.T) {
	var order []string
	stage := func(name string, err error) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			order = append(order, name)
			ctx.AddError(err)
			return ctx
		})
	}

	boom := errors.New("boom")
	ctx := New(stage("a", nil), stage("b", boom), stage("c", nil)).
		Run(NewExprContext("x", &ast.Literal{Value: 1}, nil))

	if len(order) != 3 || order[0] != "a" || order[2] != "c" {
		t.Errorf("stages ran as %v", order)
	}
	if !ctx.Failed() || !errors.Is(ctx.Err(), boom) {
		t.Errorf("errors = %v", ctx.Errors)
	}
}

func TestPipelineContextNoErrors(t *testing.T) {
	ctx := NewPipelineContext("a.yaml", nil)
	ctx.AddError(nil)
	if ctx.Failed() || ctx.Err() != nil {
		t.Errorf("unexpected errors: %v", ctx.Errors)
	}
}

func TestPipelineRecoversPanics(t *testing.T) {
	ran := false
	panicky := ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
		panic("unknown node")
	})
	after := ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
		ran = true
		return ctx
	})

	ctx := New(panicky, after).Run(NewPipelineContext("a.yaml", nil))
	if ran {
		t.Error("stage after a panic should not run")
	}
	if !ctx.Failed() || !strings.Contains(ctx.Err().Error(), "internal error: unknown node") {
		t.Errorf("errors = %v", ctx.Errors)
	}
}

func TestPipelineThen(t *testing.T) {
	var order []string
	stage := func(name string) Processor {
		return ProcessorFunc(func(ctx *PipelineContext) *PipelineContext {
			order = append(order, name)
			return ctx
		})
	}

	base := New(stage("load"))
	full := base.Then(stage("check"), stage("run"))
	full.Run(NewPipelineContext("a.yaml", nil))
	base.Run(NewPipelineContext("a.yaml", nil))

	want := []string{"load", "check", "run", "load"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("stages ran as %v, want %v", order, want)
	}
}
