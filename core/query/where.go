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
	"github.com/google/quantab/core/expr"
	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

// Where keeps the rows for which predicate is true. Each field reference
// binds to the row's value: a number when it parses, nil when missing,
// otherwise a string. A number still equals a string literal of its exact
// text, so id == "007" matches the cell 007 but not 7. A row whose evaluation fails, e.g. arithmetic on a
// non-numeric value, is dropped with a warning. A malformed predicate or a
// reference to a field the table lacks is a StructuralError.
func Where(t *tables.Table, predicate string) (*tables.Table, error) {
	e, err := expr.Compile(predicate)
	if err != nil {
		return nil, tables.Structuralf("where", "", "%v", err)
	}
	for _, name := range e.Identifiers() {
		if !t.HasField(name) {
			return nil, tables.Structuralf("where", name, "field does not exist")
		}
	}

	bound := e.Bind(func(field string, key int) (expr.Value, error) {
		return bindCell(t, key, field), nil
	})

	log := logging.WithComponent("query")
	out := t.Empty()
	skipped := 0
	for key, r := range t.All() {
		keep, err := bound.EvalBool(key)
		if err != nil {
			log.Warn("skipping row: predicate failed", "key", key, "where", predicate, "error", err)
			skipped++
			continue
		}
		if keep {
			_ = out.PutRecord(key, r)
		}
	}
	if skipped > 0 {
		log.Info("where completed with skipped rows", "skipped", skipped, "kept", out.NumRecords())
	}
	return out, nil
}

func bindCell(t *tables.Table, key int, field string) expr.Value {
	v, ok := t.Get(key, field)
	if !ok || values.IsMissing(v, t.NA()) {
		return expr.NilValue()
	}
	if n, err := values.ParseNumber(v); err == nil {
		return expr.NewNumberText(n, v)
	}
	return expr.NewString(v)
}
