package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/tapevm/internal/ast"
)

// DefaultLineWidth is the width CodePrinter wraps at unless told otherwise.
const DefaultLineWidth = 80

// CodePrinter renders expressions as s-expressions that the parser reads
// back into the same tree. Chains of add and seq are printed as one list.
// A list that does not fit on the current line puts each operand on its own
// line, indented one level deeper than the list.
type CodePrinter struct {
	buf       bytes.Buffer
	indent    int
	lineWidth int // max line width (0 = unlimited)
	column    int // current column position
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{lineWidth: DefaultLineWidth}
}

func NewCodePrinterWithWidth(width int) *CodePrinter {
	return &CodePrinter{lineWidth: width}
}

func (p *CodePrinter) SetLineWidth(width int) {
	p.lineWidth = width
}

// Print renders expr followed by a newline.
func (p *CodePrinter) Print(expr ast.Expr) string {
	p.buf.Reset()
	p.indent, p.column = 0, 0
	p.printExpr(expr)
	p.writeln()
	return p.buf.String()
}

// Format renders expr at the default width.
func Format(expr ast.Expr) string {
	return NewCodePrinter().Print(expr)
}

// form is a node split into its head, a leading atom (the offset of an
// assign) and its operands.
type form struct {
	head     string
	atom     string
	operands []ast.Expr
}

func split(expr ast.Expr) (form, bool) {
	switch e := expr.(type) {
	case *ast.Literal:
		return form{head: "lit", atom: strconv.FormatInt(e.Value, 10)}, true
	case *ast.Argument:
		return form{head: "arg", atom: strconv.Itoa(e.Index)}, true
	case *ast.LocalRef:
		return form{head: "local", atom: strconv.Itoa(e.Offset)}, true
	case *ast.Add:
		return form{head: "add", operands: addChain(e)}, false
	case *ast.Sequence:
		return form{head: "seq", operands: seqChain(e)}, false
	case *ast.Bind:
		return form{head: "bind", operands: []ast.Expr{e.Init, e.Body}}, false
	case *ast.Loop:
		return form{head: "loop", operands: []ast.Expr{e.Cond, e.Body}}, false
	case *ast.Assign:
		return form{head: "assign", atom: strconv.Itoa(e.Offset), operands: []ast.Expr{e.Value}}, false
	}
	return form{head: "<???>"}, true
}

// addChain flattens left-nested adds: (add (add a b) c) -> [a b c].
func addChain(e *ast.Add) []ast.Expr {
	if left, ok := e.Left.(*ast.Add); ok {
		return append(addChain(left), e.Right)
	}
	return []ast.Expr{e.Left, e.Right}
}

// seqChain flattens right-nested sequences: (seq a (seq b c)) -> [a b c].
func seqChain(e *ast.Sequence) []ast.Expr {
	out := []ast.Expr{e.First}
	for {
		next, ok := e.Second.(*ast.Sequence)
		if !ok {
			return append(out, e.Second)
		}
		out = append(out, next.First)
		e = next
	}
}

func (p *CodePrinter) printExpr(expr ast.Expr) {
	f, leaf := split(expr)
	if leaf || p.fits(expr) {
		p.printFlat(expr)
		return
	}

	p.write("(" + f.head)
	if f.atom != "" {
		p.write(" " + f.atom)
	}
	p.indent++
	for _, op := range f.operands {
		p.writeln()
		p.writeIndent()
		p.printExpr(op)
	}
	p.indent--
	p.write(")")
}

func (p *CodePrinter) printFlat(expr ast.Expr) {
	f, _ := split(expr)
	p.write("(" + f.head)
	if f.atom != "" {
		p.write(" " + f.atom)
	}
	for _, op := range f.operands {
		p.write(" ")
		p.printFlat(op)
	}
	p.write(")")
}

// fits reports whether expr printed flat ends within the line width.
func (p *CodePrinter) fits(expr ast.Expr) bool {
	if p.lineWidth <= 0 {
		return true
	}
	return flatWidth(expr, p.lineWidth-p.column) >= 0
}

// flatWidth returns budget minus the flat width of expr, or a negative
// number as soon as the budget runs out.
func flatWidth(expr ast.Expr, budget int) int {
	f, _ := split(expr)
	budget -= len(f.head) + 2
	if f.atom != "" {
		budget -= len(f.atom) + 1
	}
	for _, op := range f.operands {
		if budget < 0 {
			return budget
		}
		budget = flatWidth(op, budget-1)
	}
	return budget
}

func (p *CodePrinter) writeIndent() {
	p.buf.WriteString(strings.Repeat("  ", p.indent))
	p.column = p.indent * 2
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
	p.column += len(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	p.column = 0
}
