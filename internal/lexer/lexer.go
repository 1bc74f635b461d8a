package lexer

import (
	"unicode"
	"unicode/utf8"
)

// Lexer splits s-expression text into tokens. A ';' starts a comment that
// runs to the end of the line.
type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	line, column := l.line, l.column
	switch {
	case l.ch == 0:
		return Token{Type: EOF, Line: line, Column: column}
	case l.ch == '(':
		l.readChar()
		return Token{Type: LPAREN, Literal: "(", Line: line, Column: column}
	case l.ch == ')':
		l.readChar()
		return Token{Type: RPAREN, Literal: ")", Line: line, Column: column}
	case isDigit(l.ch), l.ch == '-' && isDigit(l.peekChar()):
		return Token{Type: INT, Literal: l.readNumber(), Line: line, Column: column}
	case isLetter(l.ch):
		return Token{Type: SYMBOL, Literal: l.readIdentifier(), Line: line, Column: column}
	default:
		ch := l.ch
		l.readChar()
		return Token{Type: ILLEGAL, Literal: string(ch), Line: line, Column: column}
	}
}

// Tokens reads the whole input, including the final EOF token.
func (l *Lexer) Tokens() []Token {
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == EOF {
			return out
		}
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '-' {
		l.readChar()
	}
	return l.input[position:l.position]
}

// readNumber reads an optionally negative decimal. Range checks are left to
// the parser so that the error can name the literal.
func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) || isLetter(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			l.readChar()
		}
		if l.ch == ';' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		break
	}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}
