/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tables

import (
	"errors"
	"fmt"
)

var (
	// ErrStructural matches every *StructuralError with errors.Is.
	ErrStructural = errors.New("structural error")
	// ErrMalformedInput matches every *MalformedInputError with errors.Is.
	ErrMalformedInput = errors.New("malformed input")
)

// StructuralError aborts an operation that cannot proceed: a referenced field
// is missing, a spec string is malformed, a key does not exist.
type StructuralError struct {
	Op    string // operation, e.g. "sort" or "merge"
	Field string // offending field, may be empty
	Msg   string
}

func (e *StructuralError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Op, e.Field, e.Msg)
}

// Is makes errors.Is(err, ErrStructural) true.
func (e *StructuralError) Is(target error) bool {
	return target == ErrStructural
}

// Structuralf builds a StructuralError with a formatted message.
func Structuralf(op, field, format string, args ...any) error {
	return &StructuralError{Op: op, Field: field, Msg: fmt.Sprintf(format, args...)}
}

// MalformedInputError reports delimited input that cannot be read as a
// table, such as a row whose arity differs from the header.
type MalformedInputError struct {
	Line int // 1-based line number, 0 when unknown
	Msg  string
	Err  error
}

func (e *MalformedInputError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("malformed input at line %d: %s", e.Line, msg)
	}
	return "malformed input: " + msg
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrMalformedInput) true.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}
