/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors
*/

package expr

import (
	"strconv"
)

type valueType int

const (
	typeNil valueType = iota
	typeNumber
	typeString
	typeBool
)

// Value represents a runtime value
type Value struct {
	typ     valueType
	numVal  float64
	strVal  string
	boolVal bool
}

// NewNumber creates a numeric value
func NewNumber(n float64) Value {
	return Value{typ: typeNumber, numVal: n}
}

// NewNumberText creates a numeric value parsed from text. The text is kept,
// so equality against a string and str() see the cell as written.
func NewNumberText(n float64, text string) Value {
	return Value{typ: typeNumber, numVal: n, strVal: text}
}

// NewString creates a string value
func NewString(s string) Value {
	return Value{typ: typeString, strVal: s}
}

// NewBool creates a boolean value
func NewBool(b bool) Value {
	return Value{typ: typeBool, boolVal: b}
}

// NilValue returns the value of a missing cell
func NilValue() Value {
	return Value{typ: typeNil}
}

// IsNumber checks if value is a number
func (v Value) IsNumber() bool { return v.typ == typeNumber }

// IsString checks if value is a string
func (v Value) IsString() bool { return v.typ == typeString }

// IsBool checks if value is a boolean
func (v Value) IsBool() bool { return v.typ == typeBool }

// IsNil checks if value is nil
func (v Value) IsNil() bool { return v.typ == typeNil }

// AsNumber returns the numeric value; booleans read as 0 or 1
func (v Value) AsNumber() float64 {
	switch v.typ {
	case typeNumber:
		return v.numVal
	case typeBool:
		if v.boolVal {
			return 1
		}
	}
	return 0
}

// AsString returns the value formatted as a string
func (v Value) AsString() string {
	switch v.typ {
	case typeString:
		return v.strVal
	case typeNumber:
		if v.strVal != "" {
			return v.strVal
		}
		if v.numVal == float64(int64(v.numVal)) {
			return strconv.FormatInt(int64(v.numVal), 10)
		}
		return strconv.FormatFloat(v.numVal, 'g', -1, 64)
	case typeBool:
		if v.boolVal {
			return "True"
		}
		return "False"
	default:
		return "None"
	}
}

// AsBool returns the truthiness of the value
func (v Value) AsBool() bool {
	switch v.typ {
	case typeBool:
		return v.boolVal
	case typeNumber:
		return v.numVal != 0
	case typeString:
		return v.strVal != ""
	default:
		return false
	}
}

// TypeName returns a human-readable name for the value's type
func (v Value) TypeName() string {
	switch v.typ {
	case typeNumber:
		return "number"
	case typeString:
		return "string"
	case typeBool:
		return "bool"
	default:
		return "nil"
	}
}
