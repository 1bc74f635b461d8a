package lexer

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	LPAREN TokenType = "("
	RPAREN TokenType = ")"

	SYMBOL TokenType = "SYMBOL"
	INT    TokenType = "INT"
)

// Token is one lexeme with the position of its first character.
type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	if t.Type == EOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.Literal)
}
