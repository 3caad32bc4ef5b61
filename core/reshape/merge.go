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

// Package reshape joins, stacks and reshapes tables: Merge is a nested-loop
// inner join, Concatenate stacks rows, Widen and Narrow convert between long
// and wide layouts, and PivotDistance turns pair lists into square matrices.
//
// The join is O(n*m) and meant for tables of up to a few thousand rows.
package reshape

import (
	"github.com/google/quantab/core/tables"
)

// MergeOptions configures Merge.
type MergeOptions struct {
	// Field is the key field on both sides and names the key in the output
	Field string
	// LeftField and RightField override Field for one side
	LeftField  string
	RightField string

	LeftPrefix   string
	LeftPostfix  string
	RightPrefix  string
	RightPostfix string
}

func (o MergeOptions) fields() (left, right, out string) {
	left, right, out = o.Field, o.Field, o.Field
	if o.LeftField != "" {
		left = o.LeftField
	}
	if o.RightField != "" {
		right = o.RightField
	}
	if out == "" {
		out = left
	}
	return left, right, out
}

// Merge joins left and right on string equality of their key fields. Every
// pair of matching rows yields one output row holding the key and the
// non-key fields of both sides, renamed with the configured prefixes and
// postfixes. A row whose key cell is absent matches nothing. A key field
// missing from either side, or two output fields with the same name, is a
// StructuralError.
func Merge(left, right *tables.Table, opts MergeOptions) (*tables.Table, error) {
	lf, rf, kf := opts.fields()
	if lf == "" || rf == "" {
		return nil, tables.Structuralf("merge", "", "no key field")
	}
	if !left.HasField(lf) {
		return nil, tables.Structuralf("merge", lf, "key field missing from left table")
	}
	if !right.HasField(rf) {
		return nil, tables.Structuralf("merge", rf, "key field missing from right table")
	}

	schema := tables.NewSchema(kf)
	leftNames, err := renamed(schema, left.Fields(), lf, opts.LeftPrefix, opts.LeftPostfix)
	if err != nil {
		return nil, err
	}
	rightNames, err := renamed(schema, right.Fields(), rf, opts.RightPrefix, opts.RightPostfix)
	if err != nil {
		return nil, err
	}

	out := tables.NewTableWithSchema(schema)
	out.SetNA(left.NA())

	for lkey, lr := range left.All() {
		lv, ok := left.Get(lkey, lf)
		if !ok {
			continue
		}
		for rkey, rr := range right.All() {
			if rv, ok := right.Get(rkey, rf); !ok || rv != lv {
				continue
			}
			joined := tables.NewRecord(kf, lv)
			joined = copyFields(joined, lr, leftNames)
			joined = copyFields(joined, rr, rightNames)
			out.AddRecord(joined)
		}
	}
	return out, nil
}

// renamed adds the non-key fields to schema under their new names and
// returns the old-to-new mapping in field order.
func renamed(schema *tables.Schema, fields []string, key, prefix, postfix string) ([][2]string, error) {
	var names [][2]string
	for _, f := range fields {
		if f == key {
			continue
		}
		name := prefix + f + postfix
		if schema.Has(name) {
			return nil, tables.Structuralf("merge", name, "field name collision; set a prefix or postfix")
		}
		schema.WithField(name)
		names = append(names, [2]string{f, name})
	}
	return names, nil
}

func copyFields(dst, src tables.Record, names [][2]string) tables.Record {
	for _, n := range names {
		if v, ok := src.Get(n[0]); ok {
			dst = dst.With(n[1], v)
		}
	}
	return dst
}
