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

	"github.com/google/quantab/core/tables"
)

// Concatenate stacks the rows of a and then b. See ConcatenateAll.
func Concatenate(a, b *tables.Table, outer bool) *tables.Table {
	return ConcatenateAll(outer, a, b)
}

// ConcatenateAll stacks the rows of every table in order. The output fields
// are the union of the inputs' fields when outer is set and their
// intersection otherwise, in first-seen order. Under the intersection every
// record is projected to the common fields; under the union records are
// kept as they are and read absent fields as NA. The NA token is taken from
// the first table.
func ConcatenateAll(outer bool, ts ...*tables.Table) *tables.Table {
	if len(ts) == 0 {
		return tables.NewTable()
	}

	var fields []string
	if outer {
		schema := tables.NewSchema()
		for _, t := range ts {
			schema.WithFields(t.Fields()...)
		}
		fields = schema.Fields()
	} else {
		for _, f := range ts[0].Fields() {
			if !slices.ContainsFunc(ts[1:], func(t *tables.Table) bool { return !t.HasField(f) }) {
				fields = append(fields, f)
			}
		}
	}

	out := tables.NewTableWithFields(fields...)
	out.SetNA(ts[0].NA())
	for _, t := range ts {
		for _, r := range t.All() {
			if outer {
				out.AddRecord(r)
			} else {
				out.AddRecord(r.Select(fields...))
			}
		}
	}
	return out
}
