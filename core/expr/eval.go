/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/quantab/core/values"
)

// ColumnGetter retrieves the value of a field for the row with the given key
type ColumnGetter func(field string, key int) (Value, error)

// Evaluator evaluates an expression AST
type Evaluator struct {
	ast       Node
	getColumn ColumnGetter
}

// NewEvaluator creates a new evaluator
func NewEvaluator(ast Node, getColumn ColumnGetter) *Evaluator {
	return &Evaluator{ast: ast, getColumn: getColumn}
}

// Eval evaluates the expression for the given row
func (e *Evaluator) Eval(key int) (Value, error) {
	return e.eval(e.ast, key)
}

func (e *Evaluator) eval(node Node, key int) (Value, error) {
	switch n := node.(type) {
	case *NumberLit:
		return NewNumber(n.Value), nil

	case *StringLit:
		return NewString(n.Value), nil

	case *BoolLit:
		return NewBool(n.Value), nil

	case *Ident:
		return e.getColumn(n.Name, key)

	case *UnaryOp:
		val, err := e.eval(n.Expr, key)
		if err != nil {
			return NilValue(), err
		}
		switch n.Op {
		case TOKEN_MINUS:
			if !val.IsNumber() {
				return NilValue(), fmt.Errorf("cannot negate %s", val.TypeName())
			}
			return NewNumber(-val.AsNumber()), nil
		case TOKEN_NOT:
			return NewBool(!val.AsBool()), nil
		}

	case *BinaryOp:
		left, err := e.eval(n.Left, key)
		if err != nil {
			return NilValue(), err
		}

		// Short-circuit for and/or
		if n.Op == TOKEN_AND {
			if !left.AsBool() {
				return NewBool(false), nil
			}
			right, err := e.eval(n.Right, key)
			if err != nil {
				return NilValue(), err
			}
			return NewBool(right.AsBool()), nil
		}
		if n.Op == TOKEN_OR {
			if left.AsBool() {
				return NewBool(true), nil
			}
			right, err := e.eval(n.Right, key)
			if err != nil {
				return NilValue(), err
			}
			return NewBool(right.AsBool()), nil
		}

		right, err := e.eval(n.Right, key)
		if err != nil {
			return NilValue(), err
		}
		return evalBinaryOp(n.Op, left, right)

	case *CallExpr:
		args := make([]Value, 0, len(n.Args))
		for _, arg := range n.Args {
			val, err := e.eval(arg, key)
			if err != nil {
				return NilValue(), err
			}
			args = append(args, val)
		}
		return evalFunc(n.Func, args)
	}

	return NilValue(), fmt.Errorf("unknown node type %T", node)
}

func evalBinaryOp(op TokenType, left, right Value) (Value, error) {
	switch op {
	case TOKEN_EQ, TOKEN_NE:
		eq := equal(left, right)
		if op == TOKEN_NE {
			eq = !eq
		}
		return NewBool(eq), nil

	case TOKEN_LT, TOKEN_GT, TOKEN_LE, TOKEN_GE:
		var cmp int
		switch {
		case left.IsNumber() && right.IsNumber():
			l, r := left.AsNumber(), right.AsNumber()
			if l < r {
				cmp = -1
			} else if l > r {
				cmp = 1
			}
		case left.IsString() && right.IsString():
			cmp = strings.Compare(left.AsString(), right.AsString())
		default:
			return NilValue(), fmt.Errorf("cannot compare %s and %s", left.TypeName(), right.TypeName())
		}
		switch op {
		case TOKEN_LT:
			return NewBool(cmp < 0), nil
		case TOKEN_GT:
			return NewBool(cmp > 0), nil
		case TOKEN_LE:
			return NewBool(cmp <= 0), nil
		default:
			return NewBool(cmp >= 0), nil
		}
	}

	// String concatenation with +
	if op == TOKEN_PLUS && left.IsString() && right.IsString() {
		return NewString(left.AsString() + right.AsString()), nil
	}

	// Arithmetic operators require numbers
	if !left.IsNumber() || !right.IsNumber() {
		return NilValue(), fmt.Errorf("arithmetic operations require numbers, got %s and %s", left.TypeName(), right.TypeName())
	}
	l, r := left.AsNumber(), right.AsNumber()

	switch op {
	case TOKEN_PLUS:
		return NewNumber(l + r), nil
	case TOKEN_MINUS:
		return NewNumber(l - r), nil
	case TOKEN_STAR:
		return NewNumber(l * r), nil
	case TOKEN_SLASH:
		if r == 0 {
			return NilValue(), fmt.Errorf("division by zero")
		}
		return NewNumber(l / r), nil
	case TOKEN_FLOOR_DIV:
		if r == 0 {
			return NilValue(), fmt.Errorf("division by zero")
		}
		return NewNumber(math.Floor(l / r)), nil
	case TOKEN_PERCENT:
		if r == 0 {
			return NilValue(), fmt.Errorf("modulo by zero")
		}
		return NewNumber(math.Mod(l, r)), nil
	case TOKEN_POWER:
		return NewNumber(math.Pow(l, r)), nil
	}

	return NilValue(), fmt.Errorf("unknown operator %v", op)
}

func equal(left, right Value) bool {
	// a number read from a cell compares to a string by its text
	if left.typ == typeNumber && right.typ == typeString && left.strVal != "" {
		return left.strVal == right.strVal
	}
	if left.typ == typeString && right.typ == typeNumber && right.strVal != "" {
		return left.strVal == right.strVal
	}
	if left.typ != right.typ {
		return false
	}
	switch left.typ {
	case typeNumber:
		return left.numVal == right.numVal
	case typeString:
		return left.strVal == right.strVal
	case typeBool:
		return left.boolVal == right.boolVal
	default:
		return true
	}
}

// unaryMath maps function names to single-argument math functions
var unaryMath = map[string]func(float64) float64{
	"abs":   math.Abs,
	"sqrt":  math.Sqrt,
	"exp":   math.Exp,
	"log":   math.Log,
	"log10": math.Log10,
	"floor": math.Floor,
	"ceil":  math.Ceil,
}

func evalFunc(name string, args []Value) (Value, error) {
	if fn, ok := unaryMath[name]; ok {
		if len(args) != 1 {
			return NilValue(), fmt.Errorf("%s() takes 1 argument", name)
		}
		if !args[0].IsNumber() {
			return NilValue(), fmt.Errorf("%s() argument must be number, got %s", name, args[0].TypeName())
		}
		return NewNumber(fn(args[0].AsNumber())), nil
	}

	switch name {
	case "pow":
		if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
			return NilValue(), fmt.Errorf("pow() takes 2 numbers")
		}
		return NewNumber(math.Pow(args[0].AsNumber(), args[1].AsNumber())), nil

	case "round":
		if len(args) < 1 || len(args) > 2 {
			return NilValue(), fmt.Errorf("round() takes 1 or 2 arguments")
		}
		if !args[0].IsNumber() {
			return NilValue(), fmt.Errorf("round() first argument must be number")
		}
		digits := 0.0
		if len(args) == 2 {
			if !args[1].IsNumber() {
				return NilValue(), fmt.Errorf("round() second argument must be number")
			}
			digits = args[1].AsNumber()
		}
		mult := math.Pow(10, digits)
		return NewNumber(math.Round(args[0].AsNumber()*mult) / mult), nil

	case "min", "max":
		if len(args) < 1 {
			return NilValue(), fmt.Errorf("%s() requires at least 1 argument", name)
		}
		best := args[0]
		for _, arg := range args {
			if !arg.IsNumber() {
				return NilValue(), fmt.Errorf("%s() arguments must be numbers", name)
			}
			if (name == "min" && arg.AsNumber() < best.AsNumber()) || (name == "max" && arg.AsNumber() > best.AsNumber()) {
				best = arg
			}
		}
		return best, nil

	case "isna":
		if len(args) != 1 {
			return NilValue(), fmt.Errorf("isna() takes 1 argument")
		}
		return NewBool(args[0].IsNil()), nil

	case "len":
		if len(args) != 1 || !args[0].IsString() {
			return NilValue(), fmt.Errorf("len() takes 1 string")
		}
		return NewNumber(float64(len(args[0].AsString()))), nil

	case "upper", "lower":
		if len(args) != 1 {
			return NilValue(), fmt.Errorf("%s() takes 1 argument", name)
		}
		if name == "upper" {
			return NewString(strings.ToUpper(args[0].AsString())), nil
		}
		return NewString(strings.ToLower(args[0].AsString())), nil

	case "str":
		if len(args) != 1 {
			return NilValue(), fmt.Errorf("str() takes 1 argument")
		}
		return NewString(args[0].AsString()), nil

	case "num":
		if len(args) != 1 {
			return NilValue(), fmt.Errorf("num() takes 1 argument")
		}
		if args[0].IsNumber() {
			return args[0], nil
		}
		n, err := values.ParseNumber(args[0].AsString())
		if err != nil {
			return NilValue(), fmt.Errorf("cannot convert %q to number", args[0].AsString())
		}
		return NewNumber(n), nil
	}

	return NilValue(), fmt.Errorf("unknown function %s()", name)
}
