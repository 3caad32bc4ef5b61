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

package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/quantab/core/tables"
)

// rebuild returns a table with schema and t's NA token holding fn(r) for
// every record of t, under the same keys and in the same order.
func rebuild(t *tables.Table, schema *tables.Schema, fn func(tables.Record) tables.Record) *tables.Table {
	out := tables.NewTableWithSchema(schema)
	out.SetNA(t.NA())
	for key, r := range t.All() {
		// keys of t are non-negative
		_ = out.PutRecord(key, fn(r))
	}
	return out
}

// Dempty drops fields whose name is the empty string.
func Dempty(t *tables.Table) *tables.Table {
	schema := t.Schema().Copy()
	schema.Remove("")
	return rebuild(t, schema, func(r tables.Record) tables.Record {
		return r.Without("")
	})
}

// Rename renames fields according to spec "new=old,new2=old2". Entries are
// applied left to right. An old name that does not exist, or a new name that
// is already taken, is a StructuralError.
func Rename(t *tables.Table, spec string) (*tables.Table, error) {
	pairs, err := parseAssignments("rename", spec)
	if err != nil {
		return nil, err
	}

	for i := range pairs {
		pairs[i].value = strings.TrimSpace(pairs[i].value)
	}

	schema := t.Schema().Copy()
	for _, p := range pairs {
		if err := schema.Rename(p.value, p.name); err != nil {
			return nil, err
		}
	}

	return rebuild(t, schema, func(r tables.Record) tables.Record {
		for _, p := range pairs {
			r = r.Rename(p.value, p.name)
		}
		return r
	}), nil
}

// compilePatterns compiles comma-separated regular expressions, each
// anchored to match a whole field name.
func compilePatterns(op, spec string) ([]*regexp.Regexp, error) {
	parts := splitList(spec)
	if len(parts) == 0 {
		return nil, tables.Structuralf(op, "", "no patterns")
	}
	patterns := make([]*regexp.Regexp, 0, len(parts))
	for _, part := range parts {
		re, err := regexp.Compile("^(?:" + part + ")$")
		if err != nil {
			return nil, tables.Structuralf(op, "", "bad pattern %q: %v", part, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// filterFields keeps the fields for which keep returns true, in schema order.
func filterFields(t *tables.Table, keep func(string) bool) *tables.Table {
	schema := tables.NewSchema()
	var kept []string
	for _, f := range t.Fields() {
		if !keep(f) {
			continue
		}
		kept = append(kept, f)
		if def, ok := t.Schema().Default(f); ok {
			schema.WithFieldDefault(f, def)
		} else {
			schema.WithField(f)
		}
	}
	return rebuild(t, schema, func(r tables.Record) tables.Record {
		return r.Select(kept...)
	})
}

// Retain keeps only the fields matching one of the comma-separated patterns,
// in their original order.
func Retain(t *tables.Table, spec string) (*tables.Table, error) {
	patterns, err := compilePatterns("retain", spec)
	if err != nil {
		return nil, err
	}
	return filterFields(t, func(f string) bool { return matchesAny(patterns, f) }), nil
}

// Remove drops the fields matching one of the comma-separated patterns.
func Remove(t *tables.Table, spec string) (*tables.Table, error) {
	patterns, err := compilePatterns("remove", spec)
	if err != nil {
		return nil, err
	}
	return filterFields(t, func(f string) bool { return !matchesAny(patterns, f) }), nil
}

// Select projects t onto fields, in the given order. Every field must exist.
func Select(t *tables.Table, fields ...string) (*tables.Table, error) {
	schema := tables.NewSchema()
	for _, f := range fields {
		if !t.HasField(f) {
			return nil, tables.Structuralf("select", f, "field does not exist")
		}
		if def, ok := t.Schema().Default(f); ok {
			schema.WithFieldDefault(f, def)
		} else {
			schema.WithField(f)
		}
	}
	return rebuild(t, schema, func(r tables.Record) tables.Record {
		return r.Select(fields...)
	}), nil
}

// Unique keeps the first row, in current order, of every distinct tuple of
// values of fields.
func Unique(t *tables.Table, fields ...string) (*tables.Table, error) {
	if len(fields) == 0 {
		return nil, tables.Structuralf("unique", "", "no fields")
	}
	for _, f := range fields {
		if !t.HasField(f) {
			return nil, tables.Structuralf("unique", f, "field does not exist")
		}
	}

	out := t.Empty()
	seen := make(map[string]bool)
	for key, r := range t.All() {
		groupKey := r.Select(fields...).Key()
		if seen[groupKey] {
			continue
		}
		seen[groupKey] = true
		_ = out.PutRecord(key, r)
	}
	return out, nil
}

// Constant sets each field of spec "field=value,..." to its literal value on
// every row. Missing fields are added.
func Constant(t *tables.Table, spec string) (*tables.Table, error) {
	pairs, err := parseAssignments("constant", spec)
	if err != nil {
		return nil, err
	}

	schema := t.Schema().Copy()
	for _, p := range pairs {
		schema.WithField(p.name)
	}
	return rebuild(t, schema, func(r tables.Record) tables.Record {
		for _, p := range pairs {
			r = r.With(p.name, p.value)
		}
		return r
	}), nil
}

var placeholder = regexp.MustCompile(`%\{([^}]*)\}`)

// Cat builds a field from a template, spec "new=%{a}_%{b}". Each %{field}
// is replaced with the row's value, or the NA token when the cell is absent.
// A placeholder naming a field the table lacks is a StructuralError.
func Cat(t *tables.Table, spec string) (*tables.Table, error) {
	eqIdx := strings.Index(spec, "=")
	if eqIdx <= 0 {
		return nil, tables.Structuralf("cat", "", "expected name=template, got %q", spec)
	}
	name := strings.TrimSpace(spec[:eqIdx])
	template := spec[eqIdx+1:]

	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		if !t.HasField(m[1]) {
			return nil, tables.Structuralf("cat", m[1], "unresolved placeholder in %q", template)
		}
	}

	out := t.Empty()
	out.WithField(name)
	for key := range t.All() {
		value := placeholder.ReplaceAllStringFunc(template, func(s string) string {
			return t.Value(key, s[2:len(s)-1])
		})
		r, _ := t.Record(key)
		_ = out.PutRecord(key, r.With(name, value))
	}
	return out, nil
}

// Head keeps the first n rows. A negative n keeps every row.
func Head(t *tables.Table, n int) *tables.Table {
	out := t.Empty()
	for key, r := range t.All() {
		if n >= 0 && out.NumRecords() >= n {
			break
		}
		_ = out.PutRecord(key, r)
	}
	return out
}

// Describe returns a one-line summary of t, used in log messages.
func Describe(t *tables.Table) string {
	return fmt.Sprintf("%d rows x %d fields", t.NumRecords(), len(t.Fields()))
}
