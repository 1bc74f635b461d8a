// Package bench runs expressions repeatedly on a backend and measures them.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/backend"
	"github.com/funvibe/tapevm/internal/config"
	"github.com/funvibe/tapevm/internal/exprfile"
	"github.com/funvibe/tapevm/internal/parser"
	"github.com/funvibe/tapevm/internal/pipeline"
)

var ErrMismatch = errors.New("result mismatch")

// How often Run looks at the context.
const checkInterval = 1000

// Case is one expression with its arguments.
type Case struct {
	Name   string
	Expr   ast.Expr
	Args   []int64
	Expect *int64
}

type Options struct {
	Backend    backend.Backend
	Iterations int
	// Recompile prepares the expression on every iteration.
	Recompile bool
}

// Result is the measurement of one case on one backend.
type Result struct {
	Case       string
	Backend    string
	Iterations int
	Elapsed    time.Duration
	CPU        time.Duration
	Value      int64
}

// NsPerOp returns the mean wall time of one iteration in nanoseconds.
func (r Result) NsPerOp() int64 {
	if r.Iterations == 0 {
		return 0
	}
	return r.Elapsed.Nanoseconds() / int64(r.Iterations)
}

// Run executes c opts.Iterations times. Every result is compared with
// c.Expect when it is set.
func Run(ctx context.Context, c Case, opts Options) (Result, error) {
	res := Result{Case: c.Name}
	if opts.Backend == nil {
		return res, fmt.Errorf("%s: no backend", c.Name)
	}
	res.Backend = opts.Backend.Name()
	if opts.Iterations <= 0 {
		return res, fmt.Errorf("%s: iterations must be positive, got %d", c.Name, opts.Iterations)
	}

	exe, err := opts.Backend.Prepare(c.Expr)
	if err != nil {
		return res, fmt.Errorf("%s on %s: %w", c.Name, res.Backend, err)
	}

	cpuStart := cpuTime()
	start := time.Now()
	for i := 0; i < opts.Iterations; i++ {
		if i%checkInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		if opts.Recompile && i > 0 {
			if exe, err = opts.Backend.Prepare(c.Expr); err != nil {
				return res, fmt.Errorf("%s on %s: %w", c.Name, res.Backend, err)
			}
		}

		v, err := exe.Execute(c.Args)
		if err != nil {
			return res, fmt.Errorf("%s on %s, iteration %d: %w", c.Name, res.Backend, i, err)
		}
		if c.Expect != nil && v != *c.Expect {
			return res, fmt.Errorf("%w: %s on %s returned %d, expected %d", ErrMismatch, c.Name, res.Backend, v, *c.Expect)
		}
		res.Value = v
		res.Iterations++
	}
	res.Elapsed = time.Since(start)
	res.CPU = cpuTime() - cpuStart
	return res, nil
}

// LoadCases turns the configured cases into runnable ones. File cases keep
// their expected value only when their arguments are not overridden.
func LoadCases(cfg *config.Config) ([]Case, error) {
	cases := make([]Case, 0, len(cfg.Cases))
	for _, cc := range cfg.Cases {
		var c Case
		if cc.Sample {
			if cc.Args != nil && len(cc.Args) != config.SampleArgCount {
				return nil, fmt.Errorf("sample case: want %d arguments, got %d", config.SampleArgCount, len(cc.Args))
			}
			c = SampleCase(cc.Args)
		} else {
			ctx := pipeline.New(
				&parser.Processor{},
				&exprfile.Processor{},
			).Run(pipeline.NewPipelineContext(cfg.Resolve(cc.File), nil))
			if ctx.Failed() {
				return nil, ctx.Err()
			}
			c = Case{Name: ctx.Name, Expr: ctx.Expr, Args: ctx.Args, Expect: ctx.Expect}
			if cc.Args != nil {
				c.Args = cc.Args
				c.Expect = nil
			}
		}
		if cc.Name != "" {
			c.Name = cc.Name
		}
		cases = append(cases, c)
	}
	return cases, nil
}

// RunConfig runs every configured case on every configured backend, in
// that order. It stops at the first error and returns what finished.
func RunConfig(ctx context.Context, cfg *config.Config) ([]Result, error) {
	cases, err := LoadCases(cfg)
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, name := range cfg.Backends {
		b, err := backend.New(name)
		if err != nil {
			return results, err
		}
		opts := Options{Backend: b, Iterations: cfg.Iterations, Recompile: cfg.Recompile}
		for _, c := range cases {
			r, err := Run(ctx, c, opts)
			if err != nil {
				return results, err
			}
			results = append(results, r)
		}
	}
	return results, nil
}
