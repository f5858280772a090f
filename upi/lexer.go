package upi

import (
	"fmt"
)

// Lexer splits a single pattern atom such as E(3,8,-1) or [0,3,6]:8 into tokens
type Lexer struct {
	input []byte
	pos   int // current position in input
}

func NewLexer(input []byte) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token in the stream
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return l.newToken(TokenEOF, "", l.pos)
	}

	ch := l.input[l.pos]
	start := l.pos

	switch ch {
	case '(':
		l.pos++
		return l.newToken(TokenLParen, "(", start)
	case ')':
		l.pos++
		return l.newToken(TokenRParen, ")", start)
	case '[':
		l.pos++
		return l.newToken(TokenLBracket, "[", start)
	case ']':
		l.pos++
		return l.newToken(TokenRBracket, "]", start)
	case ',':
		l.pos++
		return l.newToken(TokenComma, ",", start)
	case ':':
		l.pos++
		return l.newToken(TokenColon, ":", start)
	}

	// Sign only belongs to a number when a digit follows
	if isDigit(ch) || (ch == '-' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])) {
		return l.readNumber()
	}

	if isAlpha(ch) {
		return l.readIdent()
	}

	l.pos++
	return l.newToken(TokenError, fmt.Sprintf("unexpected character: %c", ch), start)
}

// All drains the lexer, stopping after EOF or the first error
func (l *Lexer) All() []Token {
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return out
		}
	}
}

func (l *Lexer) newToken(typ TokenType, literal string, pos int) Token {
	return Token{Type: typ, Literal: literal, Pos: pos}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) readNumber() Token {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	return l.newToken(TokenNumber, string(l.input[start:l.pos]), start)
}

func (l *Lexer) readIdent() Token {
	start := l.pos
	for l.pos < len(l.input) && (isAlpha(l.input[l.pos]) || isDigit(l.input[l.pos])) {
		l.pos++
	}
	return l.newToken(TokenIdent, string(l.input[start:l.pos]), start)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
