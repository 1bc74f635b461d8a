// Package tapevm is the embedding API: build expression trees, compile them
// to tapes and execute them from Go.
package tapevm

import (
	"fmt"
	"os"

	"github.com/funvibe/tapevm/internal/analyzer"
	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/config"
	"github.com/funvibe/tapevm/internal/exprfile"
	"github.com/funvibe/tapevm/internal/parser"
	"github.com/funvibe/tapevm/internal/prettyprinter"
	"github.com/funvibe/tapevm/internal/vm"
)

type (
	Expr     = ast.Expr
	Literal  = ast.Literal
	Argument = ast.Argument
	LocalRef = ast.LocalRef
	Add      = ast.Add
	Bind     = ast.Bind
	Assign   = ast.Assign
	Loop     = ast.Loop
	Sequence = ast.Sequence

	Program     = vm.Program
	Instruction = vm.Instruction
	Opcode      = vm.Opcode
)

var (
	ErrMissingArgument  = vm.ErrMissingArgument
	ErrMalformedProgram = vm.ErrMalformedProgram
	ErrInvalidProgram   = vm.ErrInvalidProgram
)

// Seq chains expressions, keeping only the last value.
func Seq(first Expr, rest ...Expr) Expr {
	return ast.Seq(first, rest...)
}

// Compile lowers a well-formed expression to a tape. It does not check the
// expression; use Check first for untrusted input.
func Compile(expr Expr) *Program {
	return vm.Compile(expr)
}

// Check reports every reason expr cannot be compiled and run safely.
func Check(expr Expr) error {
	_, err := analyzer.Analyze(expr)
	return err
}

// Execute runs a compiled tape. The tape and arguments are trusted: a short
// argument vector panics.
func Execute(p *Program, args []int64) int64 {
	return vm.Execute(p, args)
}

// Verify checks a tape from an untrusted source.
func Verify(p *Program) error {
	_, err := vm.Verify(p)
	return err
}

// Disassemble renders a tape as text.
func Disassemble(p *Program, name string) string {
	return vm.Disassemble(p, name)
}

// Save serializes a tape.
func Save(p *Program) ([]byte, error) {
	return p.Serialize()
}

// LoadTape decodes and verifies a serialized tape.
func LoadTape(data []byte) (*Program, error) {
	return vm.Deserialize(data)
}

// LoadExpression reads an expression file and returns the expression with
// the arguments stored in it. S-expression files carry no arguments.
func LoadExpression(path string) (Expr, []int64, error) {
	if config.IsSexprFile(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		expr, err := parser.Parse(string(data), path)
		return expr, nil, err
	}
	f, err := exprfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return f.Expr, f.Args, nil
}

// ParseExpression decodes a YAML expression such as
// "add: [{arg: 0}, {lit: 1}]".
func ParseExpression(src string) (Expr, error) {
	return exprfile.ParseExpr([]byte(src))
}

// ParseSexpr reads an s-expression such as "(add (arg 0) (lit 1))".
func ParseSexpr(src string) (Expr, error) {
	return parser.Parse(src, "")
}

// Format renders expr as an indented s-expression that ParseSexpr accepts.
func Format(expr Expr) string {
	return prettyprinter.Format(expr)
}

// VM runs tapes with reusable buffers. A VM must not be shared between
// goroutines.
type VM struct {
	machine *vm.VM
}

func New() *VM {
	return &VM{machine: vm.New()}
}

// Run executes p, reporting a short argument vector or a malformed tape as
// an error instead of panicking.
func (v *VM) Run(p *Program, args ...int64) (int64, error) {
	return v.machine.Run(p, args)
}

// Call checks, compiles and runs expr.
func (v *VM) Call(expr Expr, args ...int64) (int64, error) {
	info, err := analyzer.Analyze(expr)
	if err != nil {
		return 0, err
	}
	if err := analyzer.CheckArgs(info, args); err != nil {
		return 0, err
	}
	return v.machine.Run(vm.Compile(expr), args)
}

// Eval parses, checks, compiles and runs a YAML expression.
func (v *VM) Eval(src string, args ...int64) (int64, error) {
	expr, err := ParseExpression(src)
	if err != nil {
		return 0, err
	}
	res, err := v.Call(expr, args...)
	if err != nil {
		return 0, fmt.Errorf("eval: %w", err)
	}
	return res, nil
}
