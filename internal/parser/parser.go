// Package parser reads expressions written as s-expressions, the same form
// that ast nodes print themselves in:
//
//	(bind (lit 0)
//	  (seq (loop (arg 0)
//	         (seq (assign 1 (add (local 1) (lit -1)))
//	              (assign 0 (add (local 0) (arg 1)))))
//	       (local 0)))
//
// add takes two or more operands and folds them to the left. seq takes two
// or more and nests them to the right.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/funvibe/tapevm/internal/ast"
	"github.com/funvibe/tapevm/internal/lexer"
)

// MaxRecursionDepth bounds list nesting so that hostile input cannot
// exhaust the goroutine stack.
const MaxRecursionDepth = 10000

// ErrSyntax is wrapped by every error the parser reports.
var ErrSyntax = errors.New("syntax error")

type Parser struct {
	l    *lexer.Lexer
	path string

	curToken  lexer.Token
	peekToken lexer.Token

	depth int
}

func New(l *lexer.Lexer, path string) *Parser {
	p := &Parser{l: l, path: path}
	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

// Parse reads exactly one expression from src. path is used in error
// messages only.
func Parse(src, path string) (ast.Expr, error) {
	return New(lexer.New(src), path).ParseExpression()
}

// ParseExpression reads one expression and requires the input to end after it.
func (p *Parser) ParseExpression() (ast.Expr, error) {
	if p.curTokenIs(lexer.EOF) {
		return nil, p.errorf(p.curToken, "empty input")
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if !p.peekTokenIs(lexer.EOF) {
		return nil, p.errorf(p.peekToken, "unexpected %s after the expression", p.peekToken)
	}
	return expr, nil
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) error {
	if p.peekTokenIs(t) {
		p.nextToken()
		return nil
	}
	return p.errorf(p.peekToken, "expected %q, got %s", string(t), p.peekToken)
}

func (p *Parser) errorf(tok lexer.Token, format string, args ...interface{}) error {
	where := fmt.Sprintf("%d:%d", tok.Line, tok.Column)
	if p.path != "" {
		where = p.path + ":" + where
	}
	return fmt.Errorf("%s: %w: %s", where, ErrSyntax, fmt.Sprintf(format, args...))
}

// parseExpression parses the list starting at curToken and leaves curToken
// on its closing paren.
func (p *Parser) parseExpression() (ast.Expr, error) {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		return nil, p.errorf(p.curToken, "expression too complex: nesting depth limit exceeded")
	}
	if !p.curTokenIs(lexer.LPAREN) {
		return nil, p.errorf(p.curToken, "expected \"(\", got %s", p.curToken)
	}
	if err := p.expectPeek(lexer.SYMBOL); err != nil {
		return nil, err
	}
	head := p.curToken

	var expr ast.Expr
	var err error
	switch head.Literal {
	case "lit":
		var v int64
		if v, err = p.parseInt64(); err == nil {
			expr = &ast.Literal{Value: v}
		}
	case "arg":
		var n int
		if n, err = p.parseIndex(); err == nil {
			expr = &ast.Argument{Index: n}
		}
	case "local":
		var n int
		if n, err = p.parseIndex(); err == nil {
			expr = &ast.LocalRef{Offset: n}
		}
	case "add":
		var ops []ast.Expr
		if ops, err = p.parseOperands(head, 2); err == nil {
			expr = ops[0]
			for _, op := range ops[1:] {
				expr = &ast.Add{Left: expr, Right: op}
			}
		}
	case "seq":
		var ops []ast.Expr
		if ops, err = p.parseOperands(head, 2); err == nil {
			expr = ast.Seq(ops[0], ops[1:]...)
		}
	case "bind":
		var ops []ast.Expr
		if ops, err = p.parseFixed(head, 2); err == nil {
			expr = &ast.Bind{Init: ops[0], Body: ops[1]}
		}
	case "loop":
		var ops []ast.Expr
		if ops, err = p.parseFixed(head, 2); err == nil {
			expr = &ast.Loop{Cond: ops[0], Body: ops[1]}
		}
	case "assign":
		var n int
		if n, err = p.parseIndex(); err != nil {
			break
		}
		var ops []ast.Expr
		if ops, err = p.parseFixed(head, 1); err == nil {
			expr = &ast.Assign{Offset: n, Value: ops[0]}
		}
	default:
		return nil, p.errorf(head, "unknown node %q", head.Literal)
	}
	if err != nil {
		return nil, err
	}
	if err := p.expectPeek(lexer.RPAREN); err != nil {
		return nil, err
	}
	return expr, nil
}

func (p *Parser) parseInt64() (int64, error) {
	if err := p.expectPeek(lexer.INT); err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
	if err != nil {
		return 0, p.errorf(p.curToken, "invalid integer %s", p.curToken)
	}
	return v, nil
}

// parseIndex reads an argument index or local offset. Negative values are
// accepted here and rejected by the analyzer with the node in context.
func (p *Parser) parseIndex() (int, error) {
	if err := p.expectPeek(lexer.INT); err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(p.curToken.Literal)
	if err != nil {
		return 0, p.errorf(p.curToken, "invalid index %s", p.curToken)
	}
	return n, nil
}

// parseOperands reads at least min nested expressions, stopping before the
// closing paren.
func (p *Parser) parseOperands(head lexer.Token, min int) ([]ast.Expr, error) {
	var ops []ast.Expr
	for p.peekTokenIs(lexer.LPAREN) {
		p.nextToken()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		ops = append(ops, e)
	}
	if len(ops) < min {
		return nil, p.errorf(head, "%s expects at least %d operands, got %d", head.Literal, min, len(ops))
	}
	return ops, nil
}

func (p *Parser) parseFixed(head lexer.Token, n int) ([]ast.Expr, error) {
	ops, err := p.parseOperands(head, n)
	if err != nil {
		return nil, err
	}
	if len(ops) != n {
		return nil, p.errorf(head, "%s expects %d operands, got %d", head.Literal, n, len(ops))
	}
	return ops, nil
}
