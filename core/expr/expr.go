/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Package expr provides a small expression interpreter for row predicates.
It supports:
  - Field references by name (e.g., age, lh.volume) or quoted (`left-hippo`)
  - Arithmetic operators: +, -, *, /, //, %, ** (also ^)
  - Comparison operators: ==, !=, <, >, <=, >=
  - Logical operators: and, or, not (also &&, ||, !)
  - String concatenation with +
  - String literals: "hello" or 'hello'; number literals: 123, 3.14, 1e-3
  - Built-in functions: abs(), sqrt(), exp(), log(), log10(), floor(), ceil(),
    pow(), round(), min(), max(), isna(), len(), upper(), lower(), str(), num()
*/
package expr

import "fmt"

// Expression represents a compiled expression ready for evaluation
type Expression struct {
	source string
	ast    Node
}

// Compile parses and compiles an expression string
func Compile(source string) (*Expression, error) {
	if source == "" {
		return nil, fmt.Errorf("empty expression")
	}

	ast, err := NewParser(source).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	return &Expression{
		source: source,
		ast:    ast,
	}, nil
}

// Source returns the original expression source
func (e *Expression) Source() string {
	return e.source
}

// Identifiers returns the field names the expression references
func (e *Expression) Identifiers() []string {
	return identifiers(e.ast, map[string]bool{}, nil)
}

// Bind creates an evaluator bound to a column getter function
func (e *Expression) Bind(getColumn ColumnGetter) *BoundExpression {
	return &BoundExpression{
		expr:      e,
		evaluator: NewEvaluator(e.ast, getColumn),
	}
}

// BoundExpression is an expression bound to a column getter, ready for row evaluation
type BoundExpression struct {
	expr      *Expression
	evaluator *Evaluator
}

// Eval evaluates the expression for the row with the given key
func (b *BoundExpression) Eval(key int) (Value, error) {
	return b.evaluator.Eval(key)
}

// EvalNumber evaluates the expression and returns the result as a number
func (b *BoundExpression) EvalNumber(key int) (float64, error) {
	val, err := b.evaluator.Eval(key)
	if err != nil {
		return 0, err
	}
	if !val.IsNumber() {
		return 0, fmt.Errorf("expression result is not a number")
	}
	return val.AsNumber(), nil
}

// EvalBool evaluates the expression and returns the result as a boolean
func (b *BoundExpression) EvalBool(key int) (bool, error) {
	val, err := b.evaluator.Eval(key)
	if err != nil {
		return false, err
	}
	return val.AsBool(), nil
}
