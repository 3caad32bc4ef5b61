/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

package expr

import (
	"fmt"
	"strings"
	"unicode"
)

// Lexer tokenizes an expression string
type Lexer struct {
	input string
	pos   int
	ch    byte
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	if len(input) > 0 {
		l.ch = input[0]
	}
	return l
}

func (l *Lexer) advance() {
	l.pos++
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
}

func (l *Lexer) peek() byte {
	if l.pos+1 >= len(l.input) {
		return 0
	}
	return l.input[l.pos+1]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.advance()
	}
}

// op consumes n bytes and returns a token of type t
func (l *Lexer) op(t TokenType, n int, startPos int) (Token, error) {
	for i := 0; i < n; i++ {
		l.advance()
	}
	return Token{Type: t, Value: l.input[startPos:l.pos], Pos: startPos}, nil
}

// NextToken returns the next token from the input
func (l *Lexer) NextToken() (Token, error) {
	l.skipWhitespace()

	if l.ch == 0 {
		return Token{Type: TOKEN_EOF, Pos: l.pos}, nil
	}

	startPos := l.pos

	// Numbers
	if isDigit(l.ch) || (l.ch == '.' && isDigit(l.peek())) {
		return l.readNumber(startPos)
	}

	// Strings
	if l.ch == '"' || l.ch == '\'' {
		return l.readString(startPos)
	}

	// Quoted identifiers allow any field name
	if l.ch == '`' {
		return l.readQuotedIdent(startPos)
	}

	// Identifiers and keywords
	if isLetter(l.ch) || l.ch == '_' {
		return l.readIdent(startPos)
	}

	switch l.ch {
	case '+':
		return l.op(TOKEN_PLUS, 1, startPos)
	case '-':
		return l.op(TOKEN_MINUS, 1, startPos)
	case '*':
		if l.peek() == '*' {
			return l.op(TOKEN_POWER, 2, startPos)
		}
		return l.op(TOKEN_STAR, 1, startPos)
	case '^':
		return l.op(TOKEN_POWER, 1, startPos)
	case '/':
		if l.peek() == '/' {
			return l.op(TOKEN_FLOOR_DIV, 2, startPos)
		}
		return l.op(TOKEN_SLASH, 1, startPos)
	case '%':
		return l.op(TOKEN_PERCENT, 1, startPos)
	case '(':
		return l.op(TOKEN_LPAREN, 1, startPos)
	case ')':
		return l.op(TOKEN_RPAREN, 1, startPos)
	case ',':
		return l.op(TOKEN_COMMA, 1, startPos)
	case '=':
		if l.peek() == '=' {
			return l.op(TOKEN_EQ, 2, startPos)
		}
		return Token{}, fmt.Errorf("unexpected '=' at position %d, did you mean '=='?", startPos)
	case '!':
		if l.peek() == '=' {
			return l.op(TOKEN_NE, 2, startPos)
		}
		return l.op(TOKEN_NOT, 1, startPos)
	case '<':
		if l.peek() == '=' {
			return l.op(TOKEN_LE, 2, startPos)
		}
		return l.op(TOKEN_LT, 1, startPos)
	case '>':
		if l.peek() == '=' {
			return l.op(TOKEN_GE, 2, startPos)
		}
		return l.op(TOKEN_GT, 1, startPos)
	case '&':
		if l.peek() == '&' {
			return l.op(TOKEN_AND, 2, startPos)
		}
	case '|':
		if l.peek() == '|' {
			return l.op(TOKEN_OR, 2, startPos)
		}
	}

	return Token{}, fmt.Errorf("unexpected character '%c' at position %d", l.ch, startPos)
}

func (l *Lexer) readNumber(startPos int) (Token, error) {
	hasDecimal := false
	for isDigit(l.ch) || l.ch == '.' {
		if l.ch == '.' {
			if hasDecimal {
				break
			}
			hasDecimal = true
		}
		l.advance()
	}
	// exponent, e.g. 1e-3
	if l.ch == 'e' || l.ch == 'E' {
		next := l.peek()
		if isDigit(next) || ((next == '-' || next == '+') && l.pos+2 < len(l.input) && isDigit(l.input[l.pos+2])) {
			l.advance()
			if l.ch == '-' || l.ch == '+' {
				l.advance()
			}
			for isDigit(l.ch) {
				l.advance()
			}
		}
	}
	return Token{Type: TOKEN_NUMBER, Value: l.input[startPos:l.pos], Pos: startPos}, nil
}

func (l *Lexer) readString(startPos int) (Token, error) {
	quote := l.ch
	l.advance()
	var sb strings.Builder

	for l.ch != 0 && l.ch != quote {
		if l.ch == '\\' {
			l.advance()
			switch l.ch {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 0:
				return Token{}, fmt.Errorf("unterminated string starting at position %d", startPos)
			default:
				sb.WriteByte(l.ch)
			}
		} else {
			sb.WriteByte(l.ch)
		}
		l.advance()
	}

	if l.ch != quote {
		return Token{}, fmt.Errorf("unterminated string starting at position %d", startPos)
	}
	l.advance()

	return Token{Type: TOKEN_STRING, Value: sb.String(), Pos: startPos}, nil
}

func (l *Lexer) readQuotedIdent(startPos int) (Token, error) {
	l.advance()
	start := l.pos
	for l.ch != 0 && l.ch != '`' {
		l.advance()
	}
	if l.ch != '`' {
		return Token{}, fmt.Errorf("unterminated field name starting at position %d", startPos)
	}
	name := l.input[start:l.pos]
	l.advance()
	return Token{Type: TOKEN_IDENT, Value: name, Pos: startPos}, nil
}

func (l *Lexer) readIdent(startPos int) (Token, error) {
	// dots are allowed inside names, e.g. lh.volume
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '.' {
		l.advance()
	}

	value := l.input[startPos:l.pos]

	switch value {
	case "and":
		return Token{Type: TOKEN_AND, Value: value, Pos: startPos}, nil
	case "or":
		return Token{Type: TOKEN_OR, Value: value, Pos: startPos}, nil
	case "not":
		return Token{Type: TOKEN_NOT, Value: value, Pos: startPos}, nil
	}

	return Token{Type: TOKEN_IDENT, Value: value, Pos: startPos}, nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return unicode.IsLetter(rune(ch))
}
