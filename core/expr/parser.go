/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

package expr

import (
	"fmt"
	"strconv"
)

// Parser parses tokens into an AST
type Parser struct {
	lexer *Lexer
	cur   Token
}

// NewParser creates a new parser
func NewParser(input string) *Parser {
	return &Parser{lexer: NewLexer(input)}
}

func (p *Parser) advance() error {
	tok, err := p.lexer.NextToken()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

// Parse parses the whole input and returns the AST
func (p *Parser) Parse() (Node, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur.Type != TOKEN_EOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.cur.Value, p.cur.Pos)
	}
	return node, nil
}

// Precedence (low to high):
// 1. or
// 2. and
// 3. not
// 4. ==, !=, <, >, <=, >=
// 5. +, -
// 6. *, /, //, %
// 7. unary -
// 8. ** (right associative, binds tighter than unary minus on its left)
// 9. function calls

// binary parses a left-associative level made of the given operators
func (p *Parser) binary(next func() (Node, error), ops ...TokenType) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.is(ops...) {
		op := p.cur.Type
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryOp{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) is(ops ...TokenType) bool {
	for _, op := range ops {
		if p.cur.Type == op {
			return true
		}
	}
	return false
}

func (p *Parser) parseOr() (Node, error) {
	return p.binary(p.parseAnd, TOKEN_OR)
}

func (p *Parser) parseAnd() (Node, error) {
	return p.binary(p.parseNot, TOKEN_AND)
}

func (p *Parser) parseNot() (Node, error) {
	if p.cur.Type == TOKEN_NOT {
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Op: TOKEN_NOT, Expr: expr}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Node, error) {
	return p.binary(p.parseAddSub, TOKEN_EQ, TOKEN_NE, TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE)
}

func (p *Parser) parseAddSub() (Node, error) {
	return p.binary(p.parseMulDiv, TOKEN_PLUS, TOKEN_MINUS)
}

func (p *Parser) parseMulDiv() (Node, error) {
	return p.binary(p.parseUnary, TOKEN_STAR, TOKEN_SLASH, TOKEN_FLOOR_DIV, TOKEN_PERCENT)
}

func (p *Parser) parseUnary() (Node, error) {
	if p.cur.Type == TOKEN_MINUS || p.cur.Type == TOKEN_PLUS {
		op := p.cur.Type
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if op == TOKEN_PLUS {
			return expr, nil
		}
		return &UnaryOp{Op: op, Expr: expr}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	// Power is right-associative; the exponent may carry a unary minus
	if p.cur.Type == TOKEN_POWER {
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Op: TOKEN_POWER, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseArgs() ([]Node, error) {
	// Skip '('
	if err := p.advance(); err != nil {
		return nil, err
	}

	var args []Node
	if p.cur.Type != TOKEN_RPAREN {
		for {
			arg, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.cur.Type != TOKEN_COMMA {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}

	if p.cur.Type != TOKEN_RPAREN {
		return nil, fmt.Errorf("expected ')' after arguments at position %d", p.cur.Pos)
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	return args, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	switch p.cur.Type {
	case TOKEN_NUMBER:
		val, err := strconv.ParseFloat(p.cur.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number: %s", p.cur.Value)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &NumberLit{Value: val}, nil

	case TOKEN_STRING:
		val := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &StringLit{Value: val}, nil

	case TOKEN_IDENT:
		name := p.cur.Value
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur.Type == TOKEN_LPAREN {
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}
			return &CallExpr{Func: name, Args: args}, nil
		}
		switch name {
		case "true", "True":
			return &BoolLit{Value: true}, nil
		case "false", "False":
			return &BoolLit{Value: false}, nil
		}
		return &Ident{Name: name}, nil

	case TOKEN_LPAREN:
		if err := p.advance(); err != nil {
			return nil, err
		}
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.cur.Type != TOKEN_RPAREN {
			return nil, fmt.Errorf("expected ')' after expression")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		return expr, nil

	case TOKEN_EOF:
		return nil, fmt.Errorf("unexpected end of expression")

	default:
		return nil, fmt.Errorf("unexpected token %q at position %d", p.cur.Value, p.cur.Pos)
	}
}
