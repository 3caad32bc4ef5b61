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
	"slices"

	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/tables"
)

// PivotOptions configures PivotDistance.
type PivotOptions struct {
	Left    string // first id of a pair
	Right   string // second id of a pair
	Value   string // pair value
	IDField string // name of the row label field; empty means "id"
	Default string // value of missing pairs; empty means "0"
}

// PivotDistance turns a list of (left, right, value) pairs into a square
// symmetric matrix. Rows and columns are the sorted union of every id seen
// on either side. Each input row sets both the (left, right) and the
// (right, left) cell; later rows overwrite earlier ones. Rows lacking an id
// are skipped with a warning.
func PivotDistance(t *tables.Table, opts PivotOptions) (*tables.Table, error) {
	for _, f := range []string{opts.Left, opts.Right, opts.Value} {
		if !t.HasField(f) {
			return nil, tables.Structuralf("pivot", f, "field does not exist")
		}
	}
	idField := opts.IDField
	if idField == "" {
		idField = "id"
	}
	def := opts.Default
	if def == "" {
		def = "0"
	}

	log := logging.WithComponent("reshape")
	type pair struct{ a, b, v string }
	var pairs []pair
	seen := make(map[string]bool)
	for key := range t.All() {
		a, okA := t.Get(key, opts.Left)
		b, okB := t.Get(key, opts.Right)
		if !okA || !okB {
			log.Warn("skipping row: missing id", "key", key)
			continue
		}
		pairs = append(pairs, pair{a, b, t.Value(key, opts.Value)})
		seen[a] = true
		seen[b] = true
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	if slices.Contains(ids, idField) {
		return nil, tables.Structuralf("pivot", idField, "an id collides with the label field")
	}

	cells := make(map[[2]string]string, 2*len(pairs))
	for _, p := range pairs {
		cells[[2]string{p.a, p.b}] = p.v
		cells[[2]string{p.b, p.a}] = p.v
	}

	fields := append([]string{idField}, ids...)
	out := tables.NewTableWithFields(fields...)
	out.SetNA(t.NA())
	for _, row := range ids {
		m := map[string]string{idField: row}
		for _, col := range ids {
			v, ok := cells[[2]string{row, col}]
			if !ok {
				v = def
			}
			m[col] = v
		}
		out.AddRecord(tables.RecordFromMap(fields, m))
	}
	return out, nil
}
