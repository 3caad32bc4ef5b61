/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

package expr

// Node is the interface for all AST nodes
type Node interface {
	node()
}

// NumberLit represents a numeric literal
type NumberLit struct {
	Value float64
}

func (n *NumberLit) node() {}

// StringLit represents a string literal
type StringLit struct {
	Value string
}

func (n *StringLit) node() {}

// BoolLit represents true or false
type BoolLit struct {
	Value bool
}

func (n *BoolLit) node() {}

// Ident represents an identifier (field name)
type Ident struct {
	Name string
}

func (n *Ident) node() {}

// BinaryOp represents a binary operation
type BinaryOp struct {
	Op    TokenType
	Left  Node
	Right Node
}

func (n *BinaryOp) node() {}

// UnaryOp represents a unary operation
type UnaryOp struct {
	Op   TokenType
	Expr Node
}

func (n *UnaryOp) node() {}

// CallExpr represents a function call
type CallExpr struct {
	Func string
	Args []Node
}

func (n *CallExpr) node() {}

// identifiers appends the names of all field references under n, in order
// of first appearance.
func identifiers(n Node, seen map[string]bool, out []string) []string {
	switch n := n.(type) {
	case *Ident:
		if !seen[n.Name] {
			seen[n.Name] = true
			out = append(out, n.Name)
		}
	case *BinaryOp:
		out = identifiers(n.Left, seen, out)
		out = identifiers(n.Right, seen, out)
	case *UnaryOp:
		out = identifiers(n.Expr, seen, out)
	case *CallExpr:
		for _, a := range n.Args {
			out = identifiers(a, seen, out)
		}
	}
	return out
}
