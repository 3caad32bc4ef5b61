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
	"cmp"
	"slices"
	"strings"

	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

// SortColumn is one key of a sort specification
type SortColumn struct {
	Name       string
	Numeric    bool // '#' prefix
	Descending bool // '^' prefix
}

// ParseSortSpec parses "a,#b,^#c". The prefixes '^' and '#' may appear in
// either order.
func ParseSortSpec(spec string) ([]SortColumn, error) {
	var cols []SortColumn
	for _, part := range splitList(spec) {
		var sc SortColumn
		for len(part) > 0 && (part[0] == '^' || part[0] == '#') {
			if part[0] == '^' {
				sc.Descending = true
			} else {
				sc.Numeric = true
			}
			part = part[1:]
		}
		if part == "" {
			return nil, tables.Structuralf("sort", "", "empty field name in %q", spec)
		}
		sc.Name = part
		cols = append(cols, sc)
	}
	if len(cols) == 0 {
		return nil, tables.Structuralf("sort", "", "empty specification")
	}
	return cols, nil
}

// sortKey holds the values of one row for every sort column
type sortKey struct {
	key     int
	strs    []string
	nums    []float64
	invalid []bool // numeric value missing or unparsable
}

// Sort orders rows by spec "a,#b,^#c": the first key has the highest
// priority, '#' compares numerically and '^' reverses a key. The sort is
// stable. Under a numeric key, a missing or unparsable value sorts after
// every number in both directions, and such values keep their relative
// order. A key naming a field the table lacks is a StructuralError.
func Sort(t *tables.Table, spec string) (*tables.Table, error) {
	cols, err := ParseSortSpec(spec)
	if err != nil {
		return nil, err
	}
	for _, sc := range cols {
		if !t.HasField(sc.Name) {
			return nil, tables.Structuralf("sort", sc.Name, "field does not exist")
		}
	}

	rows := make([]sortKey, 0, t.NumRecords())
	for key := range t.All() {
		sk := sortKey{
			key:     key,
			strs:    make([]string, len(cols)),
			nums:    make([]float64, len(cols)),
			invalid: make([]bool, len(cols)),
		}
		for i, sc := range cols {
			v, _ := t.Get(key, sc.Name)
			if !sc.Numeric {
				sk.strs[i] = v
				continue
			}
			n, err := values.ParseNumber(v)
			if err != nil || values.IsMissing(v, t.NA()) {
				sk.invalid[i] = true
				continue
			}
			sk.nums[i] = n
		}
		rows = append(rows, sk)
	}

	slices.SortStableFunc(rows, func(a, b sortKey) int {
		for i, sc := range cols {
			if c := compareKey(sc, a, b, i); c != 0 {
				return c
			}
		}
		return 0
	})

	out := t.Empty()
	for _, sk := range rows {
		r, _ := t.Record(sk.key)
		_ = out.PutRecord(sk.key, r)
	}
	return out, nil
}

func compareKey(sc SortColumn, a, b sortKey, i int) int {
	if sc.Numeric {
		switch {
		case a.invalid[i] && b.invalid[i]:
			return 0
		case a.invalid[i]:
			return 1
		case b.invalid[i]:
			return -1
		}
		c := cmp.Compare(a.nums[i], b.nums[i])
		if sc.Descending {
			return -c
		}
		return c
	}
	c := strings.Compare(a.strs[i], b.strs[i])
	if sc.Descending {
		return -c
	}
	return c
}
