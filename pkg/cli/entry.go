// Package cli implements the tapevm command line.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/funvibe/tapevm/internal/analyzer"
	"github.com/funvibe/tapevm/internal/backend"
	"github.com/funvibe/tapevm/internal/bench"
	"github.com/funvibe/tapevm/internal/config"
	"github.com/funvibe/tapevm/internal/exprfile"
	"github.com/funvibe/tapevm/internal/parser"
	"github.com/funvibe/tapevm/internal/pipeline"
	"github.com/funvibe/tapevm/internal/prettyprinter"
	"github.com/funvibe/tapevm/internal/report"
	"github.com/funvibe/tapevm/internal/results"
	"github.com/funvibe/tapevm/internal/utils"
	"github.com/funvibe/tapevm/internal/vm"
)

// BackendType is the default execution backend.
// Can be set at build time using: -ldflags "-X github.com/funvibe/tapevm/pkg/cli.BackendType=closure"
var BackendType = config.DefaultBackend

const usage = `Usage: tapevm <command> [arguments]

Commands:
  run [-backend B] <expr> [args...]        check, compile and execute an expression file
  eval [-backend B] '<sexpr>' [args...]    check, compile and execute an inline expression
  fmt [-w width] <expr>                    print an expression file as an s-expression
  dis <expr>                               print the compiled tape
  build [-o out.tape] <expr>               compile an expression to a tape file
  exec [-backend B] <file.tape> [args...]  verify and execute a tape file
  bench [-config tapevm.yaml] [-no-record] run the configured benchmarks
  history [-db path] [-n N]                show recorded benchmark runs
  sample [-o out.yaml]                     write the built-in sample expression
  help                                     show this message

Expression files are YAML (.yaml, .yml) or s-expressions (.sx).

Backends: %s
`

type app struct {
	stdout io.Writer
	stderr io.Writer
	status int
}

// Run executes the command in os.Args and exits with its status.
func Run() {
	os.Exit(Main(os.Args, os.Stdout, os.Stderr))
}

// Main executes the command in args (args[0] is the program name) and
// returns the exit status.
func Main(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	if len(args) < 2 {
		fmt.Fprintf(stderr, usage, strings.Join(backend.Names(), ", "))
		return 1
	}

	handlers := []func(cmd string, rest []string) bool{
		a.handleHelp,
		a.handleRun,
		a.handleEval,
		a.handleFmt,
		a.handleDis,
		a.handleBuild,
		a.handleExec,
		a.handleBench,
		a.handleHistory,
		a.handleSample,
	}
	for _, h := range handlers {
		if h(args[1], args[2:]) {
			return a.status
		}
	}

	fmt.Fprintf(stderr, "Unknown command: %s\n", args[1])
	fmt.Fprintln(stderr, "Use 'tapevm help' to list commands")
	return 1
}

func (a *app) fail(format string, args ...interface{}) bool {
	fmt.Fprintf(a.stderr, format+"\n", args...)
	a.status = 1
	return true
}

func (a *app) failErrors(header string, errs []error) bool {
	fmt.Fprintln(a.stderr, header)
	for _, err := range errs {
		fmt.Fprintf(a.stderr, "- %s\n", err)
	}
	a.status = 1
	return true
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) handleHelp(cmd string, _ []string) bool {
	if cmd != "help" && cmd != "-help" && cmd != "--help" && cmd != "-h" {
		return false
	}
	fmt.Fprintf(a.stdout, usage, strings.Join(backend.Names(), ", "))
	return true
}

// handleRun runs an expression file through the whole pipeline.
func (a *app) handleRun(cmd string, rest []string) bool {
	if cmd != "run" {
		return false
	}
	fs := a.flags("run")
	backendName := fs.String("backend", BackendType, "execution backend")
	if err := fs.Parse(rest); err != nil {
		a.status = 2
		return true
	}
	if fs.NArg() < 1 {
		return a.fail("Usage: tapevm run [-backend B] <expr> [args...]")
	}
	return a.execute(*backendName, pipeline.NewPipelineContext(fs.Arg(0), nil), fs.Args()[1:])
}

// handleEval runs an s-expression given on the command line.
func (a *app) handleEval(cmd string, rest []string) bool {
	if cmd != "eval" {
		return false
	}
	fs := a.flags("eval")
	backendName := fs.String("backend", BackendType, "execution backend")
	if err := fs.Parse(rest); err != nil {
		a.status = 2
		return true
	}
	if fs.NArg() < 1 {
		return a.fail("Usage: tapevm eval [-backend B] '<sexpr>' [args...]")
	}

	expr, err := parser.Parse(fs.Arg(0), "<eval>")
	if err != nil {
		return a.failErrors("Run failed with errors:", []error{err})
	}
	return a.execute(*backendName, pipeline.NewExprContext("eval", expr, nil), fs.Args()[1:])
}

// execute loads ctx if needed, then checks and runs it on the named backend
// and prints the result.
func (a *app) execute(backendName string, ctx *pipeline.PipelineContext, rawArgs []string) bool {
	b, err := backend.New(backendName)
	if err != nil {
		return a.fail("Error: %s", err)
	}
	args, err := parseArgs(rawArgs)
	if err != nil {
		return a.fail("Error: %s", err)
	}

	ctx.Args = args
	ctx = loader().Then(
		&analyzer.Processor{},
		backend.NewExecutionProcessor(b),
	).Run(ctx)

	if ctx.HasResult {
		fmt.Fprintln(a.stdout, ctx.Result)
	}
	if ctx.Failed() {
		return a.failErrors("Run failed with errors:", ctx.Errors)
	}
	return true
}

func (a *app) handleDis(cmd string, rest []string) bool {
	if cmd != "dis" {
		return false
	}
	if len(rest) != 1 {
		return a.fail("Usage: tapevm dis <expr>")
	}

	ctx := a.compile(rest[0])
	if ctx.Failed() {
		return a.failErrors("Compilation failed with errors:", ctx.Errors)
	}
	fmt.Fprint(a.stdout, vm.Disassemble(ctx.Program, ctx.Name))
	fmt.Fprintf(a.stdout, "max stack %d, max locals %d, arity %d\n",
		ctx.Program.MaxStack, ctx.Program.MaxLocals, ctx.Program.Arity())
	return true
}

// handleFmt prints an expression file in s-expression form.
func (a *app) handleFmt(cmd string, rest []string) bool {
	if cmd != "fmt" {
		return false
	}
	fs := a.flags("fmt")
	width := fs.Int("w", prettyprinter.DefaultLineWidth, "line width, 0 for one line")
	if err := fs.Parse(rest); err != nil {
		a.status = 2
		return true
	}
	if fs.NArg() != 1 {
		return a.fail("Usage: tapevm fmt [-w width] <expr>")
	}

	ctx := loader().Run(pipeline.NewPipelineContext(fs.Arg(0), nil))
	if ctx.Failed() {
		return a.failErrors("Formatting failed with errors:", ctx.Errors)
	}
	fmt.Fprint(a.stdout, prettyprinter.NewCodePrinterWithWidth(*width).Print(ctx.Expr))
	return true
}

// handleBuild compiles an expression file to a tape file
func (a *app) handleBuild(cmd string, rest []string) bool {
	if cmd != "build" {
		return false
	}
	fs := a.flags("build")
	out := fs.String("o", "", "output path (default: source with "+config.TapeFileExt+")")
	if err := fs.Parse(rest); err != nil {
		a.status = 2
		return true
	}
	if fs.NArg() != 1 {
		return a.fail("Usage: tapevm build [-o out.tape] <expr>")
	}
	sourcePath := fs.Arg(0)

	ctx := a.compile(sourcePath)
	if ctx.Failed() {
		return a.failErrors("Compilation failed with errors:", ctx.Errors)
	}

	data, err := ctx.Program.Serialize()
	if err != nil {
		return a.fail("Serialization error: %s", err)
	}

	outputPath := *out
	if outputPath == "" {
		outputPath = utils.ReplaceExt(sourcePath, config.TapeFileExt)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return a.fail("Error writing tape file: %s", err)
	}

	fmt.Fprintf(a.stdout, "Compiled %s -> %s\n", sourcePath, outputPath)
	fmt.Fprintf(a.stdout, "Tape: %d instructions, %d bytes\n", ctx.Program.Len(), len(data))
	return true
}

// handleExec runs a pre-compiled tape file
func (a *app) handleExec(cmd string, rest []string) bool {
	if cmd != "exec" {
		return false
	}
	fs := a.flags("exec")
	backendName := fs.String("backend", config.BackendVM, "vm or vm-direct")
	if err := fs.Parse(rest); err != nil {
		a.status = 2
		return true
	}
	if fs.NArg() < 1 {
		return a.fail("Usage: tapevm exec [-backend B] <file.tape> [args...]")
	}

	b, err := backend.New(*backendName)
	if err != nil {
		return a.fail("Error: %s", err)
	}
	args, err := parseArgs(fs.Args()[1:])
	if err != nil {
		return a.fail("Error: %s", err)
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return a.fail("Error reading tape file: %s", err)
	}
	program, err := vm.Deserialize(data)
	if err != nil {
		return a.fail("Error loading %s: %s", fs.Arg(0), err)
	}

	ctx := &pipeline.PipelineContext{FilePath: fs.Arg(0), Name: utils.ExtractExprName(fs.Arg(0)), Program: program, Args: args}
	ctx = backend.NewExecutionProcessor(b).Process(ctx)
	if ctx.Failed() {
		return a.failErrors("Execution failed with errors:", ctx.Errors)
	}
	fmt.Fprintln(a.stdout, ctx.Result)
	return true
}

func (a *app) handleBench(cmd string, rest []string) bool {
	if cmd != "bench" {
		return false
	}
	fs := a.flags("bench")
	configPath := fs.String("config", "", "benchmark configuration (default: nearest tapevm.yaml)")
	noRecord := fs.Bool("no-record", false, "do not store results")
	if err := fs.Parse(rest); err != nil {
		a.status = 2
		return true
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return a.fail("Error: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rs, err := bench.RunConfig(ctx, cfg)
	if len(rs) > 0 {
		report.NewPrinter(a.stdout).PrintResults(rs)
	}
	if err != nil {
		return a.fail("Benchmark failed: %s", err)
	}

	if path := cfg.ResultsPath(); path != "" && !*noRecord {
		store, err := results.Open(path)
		if err != nil {
			return a.fail("Error: %s", err)
		}
		defer store.Close()
		if _, err := store.RecordResults(ctx, rs); err != nil {
			return a.fail("Error recording results: %s", err)
		}
		fmt.Fprintf(a.stdout, "Recorded %d runs in %s\n", len(rs), path)
	}
	return true
}

func (a *app) handleHistory(cmd string, rest []string) bool {
	if cmd != "history" {
		return false
	}
	fs := a.flags("history")
	dbPath := fs.String("db", "", "results database (default: from tapevm.yaml)")
	limit := fs.Int("n", config.DefaultHistory, "number of runs to show")
	if err := fs.Parse(rest); err != nil {
		a.status = 2
		return true
	}

	path := *dbPath
	if path == "" {
		cfg, err := loadConfig("")
		if err != nil {
			return a.fail("Error: %s", err)
		}
		if path = cfg.ResultsPath(); path == "" {
			return a.fail("Error: result recording is disabled")
		}
	}
	if _, err := os.Stat(path); err != nil {
		return a.fail("Error: no results at %s", path)
	}

	store, err := results.Open(path)
	if err != nil {
		return a.fail("Error: %s", err)
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), *limit)
	if err != nil {
		return a.fail("Error reading results: %s", err)
	}
	report.NewPrinter(a.stdout).PrintHistory(runs)
	return true
}

func (a *app) handleSample(cmd string, rest []string) bool {
	if cmd != "sample" {
		return false
	}
	fs := a.flags("sample")
	out := fs.String("o", "", "write to a file instead of stdout")
	if err := fs.Parse(rest); err != nil {
		a.status = 2
		return true
	}

	c := bench.SampleCase(nil)
	f := &exprfile.File{Name: c.Name, Args: c.Args, Expect: c.Expect, Expr: c.Expr}
	if *out != "" {
		if err := exprfile.Save(*out, f); err != nil {
			return a.fail("Error: %s", err)
		}
		return true
	}
	data, err := exprfile.Marshal(f)
	if err != nil {
		return a.fail("Error: %s", err)
	}
	a.stdout.Write(data)
	return true
}

// compile loads, checks and compiles an expression file.
func (a *app) compile(path string) *pipeline.PipelineContext {
	return loader().Then(
		&analyzer.Processor{},
		&backend.CompileProcessor{},
	).Run(pipeline.NewPipelineContext(path, nil))
}

// loader reads an expression file in either source format.
func loader() *pipeline.Pipeline {
	return pipeline.New(&parser.Processor{}, &exprfile.Processor{})
}

// loadConfig reads path, or the nearest tapevm.yaml, or falls back to the
// defaults. Environment overrides apply in every case.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		found, err := config.FindConfig(".")
		if err != nil {
			return nil, err
		}
		path = found
	}

	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseArgs(ss []string) ([]int64, error) {
	if len(ss) == 0 {
		return nil, nil
	}
	args := make([]int64, len(ss))
	for i, s := range ss {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			var numErr *strconv.NumError
			if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
				return nil, fmt.Errorf("argument %d: %s does not fit in 64 bits", i, s)
			}
			return nil, fmt.Errorf("argument %d: %q is not an integer", i, s)
		}
		args[i] = v
	}
	return args, nil
}
