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

package reshape

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

// WidenOptions configures Widen.
type WidenOptions struct {
	// Name is the field whose values become column names
	Name string
	// Values are the fields whose values fill the new columns
	Values []string
	// Include and Exclude are regular expressions matched against whole
	// field names. When Include is set only matching fields are kept as
	// key fields; Exclude drops matching fields.
	Include []string
	Exclude []string
	// Pattern names the columns when there is more than one value field,
	// fmt.Sprintf(Pattern, name, valueField). Empty means "%s_%s".
	Pattern string
	// NA fills missing combinations; empty means the input's token
	NA string
}

// Widen converts a long table to a wide one. Every field other than Name
// and Values, subject to Include and Exclude, is part of the row key: two
// input rows land in the same output row exactly when all key fields
// match. Output rows and the new columns follow first-seen order. When two
// input rows share a key and a name, the later one wins. A row without a
// Name value is skipped with a warning.
func Widen(t *tables.Table, opts WidenOptions) (*tables.Table, error) {
	if !t.HasField(opts.Name) {
		return nil, tables.Structuralf("widen", opts.Name, "name field does not exist")
	}
	if len(opts.Values) == 0 {
		return nil, tables.Structuralf("widen", "", "no value fields")
	}
	for _, v := range opts.Values {
		if !t.HasField(v) {
			return nil, tables.Structuralf("widen", v, "value field does not exist")
		}
	}
	pattern := opts.Pattern
	if pattern == "" {
		pattern = "%s_%s"
	}

	include, err := compileAll(opts.Include)
	if err != nil {
		return nil, err
	}
	exclude, err := compileAll(opts.Exclude)
	if err != nil {
		return nil, err
	}

	var keyFields []string
	for _, f := range t.Fields() {
		if f == opts.Name || slices.Contains(opts.Values, f) {
			continue
		}
		if len(include) > 0 && !matchesAny(include, f) {
			continue
		}
		if matchesAny(exclude, f) {
			continue
		}
		keyFields = append(keyFields, f)
	}

	na := opts.NA
	if na == "" {
		na = t.NA()
	}
	out := tables.NewTableWithFields(keyFields...)
	out.SetNA(na)

	log := logging.WithComponent("reshape")
	rowOf := make(map[string]int)
	for key, r := range t.All() {
		name, ok := t.Get(key, opts.Name)
		if !ok {
			log.Warn("skipping row: no name value", "key", key, "field", opts.Name)
			continue
		}

		groupKey := r.Select(keyFields...)
		id := groupKey.Key()
		outKey, ok := rowOf[id]
		if !ok {
			outKey = out.AddRecord(groupKey)
			rowOf[id] = outKey
		}

		for _, vf := range opts.Values {
			col := name
			if len(opts.Values) > 1 {
				col = fmt.Sprintf(pattern, name, vf)
			}
			if slices.Contains(keyFields, col) {
				return nil, tables.Structuralf("widen", col, "new column collides with a key field")
			}
			// outKey exists
			_ = out.Set(outKey, col, t.Value(key, vf))
		}
	}

	// fill missing combinations
	for _, k := range out.Keys() {
		for _, f := range out.Fields() {
			if _, ok := out.Get(k, f); !ok && !slices.Contains(keyFields, f) {
				_ = out.Set(k, f, na)
			}
		}
	}
	return out, nil
}

// NarrowOptions configures Narrow.
type NarrowOptions struct {
	// Keys are copied to every output row; every other field is melted
	Keys []string
	// Name and Value name the output fields; empty means "name" and "value"
	Name  string
	Value string
	// DropNA skips missing cells instead of emitting NA rows
	DropNA bool
}

// Narrow converts a wide table to a long one, the inverse of Widen with a
// single value field. Each input row yields one output row per non-key
// field, in schema order.
func Narrow(t *tables.Table, opts NarrowOptions) (*tables.Table, error) {
	name, value := opts.Name, opts.Value
	if name == "" {
		name = "name"
	}
	if value == "" {
		value = "value"
	}
	for _, k := range opts.Keys {
		if !t.HasField(k) {
			return nil, tables.Structuralf("narrow", k, "key field does not exist")
		}
	}
	if slices.Contains(opts.Keys, name) || slices.Contains(opts.Keys, value) || name == value {
		return nil, tables.Structuralf("narrow", name, "output fields collide")
	}

	var melted []string
	for _, f := range t.Fields() {
		if !slices.Contains(opts.Keys, f) {
			melted = append(melted, f)
		}
	}

	out := tables.NewTableWithFields(append(slices.Clone(opts.Keys), name, value)...)
	out.SetNA(t.NA())
	for key, r := range t.All() {
		base := r.Select(opts.Keys...)
		for _, f := range melted {
			v, ok := t.Get(key, f)
			if !ok || values.IsMissing(v, t.NA()) {
				if opts.DropNA {
					continue
				}
				v = t.NA()
			}
			out.AddRecord(base.With(name, f).With(value, v))
		}
	}
	return out, nil
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	var out []*regexp.Regexp
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := regexp.Compile("^(?:" + p + ")$")
		if err != nil {
			return nil, tables.Structuralf("widen", "", "bad pattern %q: %v", p, err)
		}
		out = append(out, re)
	}
	return out, nil
}

func matchesAny(patterns []*regexp.Regexp, name string) bool {
	for _, re := range patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}
