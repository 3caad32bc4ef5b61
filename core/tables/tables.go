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

// Package tables provides the in-memory tabular data model: a Table is an
// ordered Schema plus an ordered collection of keyed Records whose values are
// all strings.
//
// A Table is not safe for concurrent mutation. Operations in the query,
// aggregates and reshape packages never mutate their inputs; they build and
// return new tables.
package tables

import (
	"iter"
	"slices"

	"github.com/google/quantab/core/values"
)

// Table is an ordered collection of (key, Record) pairs sharing a Schema.
// Keys are unique non-negative integers. Iteration follows insertion order;
// keys need not be contiguous.
type Table struct {
	schema  *Schema
	order   []int
	records map[int]Record
	nextKey int
	na      string
}

// NewTable creates an empty table with no fields.
func NewTable() *Table {
	return NewTableWithSchema(NewSchema())
}

// NewTableWithFields creates an empty table with the given fields.
func NewTableWithFields(fields ...string) *Table {
	return NewTableWithSchema(NewSchema(fields...))
}

// NewTableWithSchema creates an empty table that owns schema.
func NewTableWithSchema(schema *Schema) *Table {
	if schema == nil {
		schema = NewSchema()
	}
	return &Table{
		schema:  schema,
		records: make(map[int]Record),
		na:      values.DefaultNA,
	}
}

// Schema returns the table's schema. Callers must not mutate it while the
// table is shared.
func (t *Table) Schema() *Schema {
	return t.schema
}

// NA returns the token the table uses for missing values.
func (t *Table) NA() string {
	return t.na
}

// SetNA sets the token used for missing values.
func (t *Table) SetNA(token string) {
	t.na = token
}

// WithField adds name to the schema if absent. Existing records are not
// populated; they read the field as missing.
func (t *Table) WithField(name string) *Table {
	t.schema.WithField(name)
	return t
}

// WithFields adds every name in names that is not yet present.
func (t *Table) WithFields(names ...string) *Table {
	for _, n := range names {
		t.schema.WithField(n)
	}
	return t
}

// Fields returns the schema's field names in order.
func (t *Table) Fields() []string {
	return t.schema.Fields()
}

// HasField reports whether name is in the schema.
func (t *Table) HasField(name string) bool {
	return t.schema.Has(name)
}

// FieldIndex returns the schema position of name, or -1.
func (t *Table) FieldIndex(name string) int {
	return t.schema.Index(name)
}

// AddRecord appends r under the next free key and returns that key. Fields
// of r that the schema lacks are appended to the schema.
func (t *Table) AddRecord(r Record) int {
	key := t.nextKey
	t.put(key, r)
	return key
}

// PutRecord stores r at key, replacing any record already there. A new key
// goes to the end of the iteration order.
func (t *Table) PutRecord(key int, r Record) error {
	if key < 0 {
		return Structuralf("put", "", "negative key %d", key)
	}
	t.put(key, r)
	return nil
}

func (t *Table) put(key int, r Record) {
	for _, f := range r.keys {
		t.schema.WithField(f)
	}
	if _, exists := t.records[key]; !exists {
		t.order = append(t.order, key)
	}
	t.records[key] = r
	if key >= t.nextKey {
		t.nextKey = key + 1
	}
}

// Record returns the record stored at key.
func (t *Table) Record(key int) (Record, bool) {
	r, ok := t.records[key]
	return r, ok
}

// Get returns the value of field in the record at key. A record that does
// not hold the field reports the schema default, if any.
func (t *Table) Get(key int, field string) (string, bool) {
	r, ok := t.records[key]
	if !ok {
		return "", false
	}
	if v, ok := r.Get(field); ok {
		return v, true
	}
	return t.schema.Default(field)
}

// Value is Get with the NA token standing in for a missing value.
func (t *Table) Value(key int, field string) string {
	if v, ok := t.Get(key, field); ok {
		return v
	}
	return t.na
}

// Set stores value in field of the record at key. The field is added to the
// schema if needed. Setting on a missing key is a StructuralError.
func (t *Table) Set(key int, field, value string) error {
	r, ok := t.records[key]
	if !ok {
		return Structuralf("set", field, "no record with key %d", key)
	}
	t.schema.WithField(field)
	t.records[key] = r.With(field, value)
	return nil
}

// RemoveRecord deletes the record at key and reports whether it existed.
func (t *Table) RemoveRecord(key int) bool {
	if _, ok := t.records[key]; !ok {
		return false
	}
	delete(t.records, key)
	if i := slices.Index(t.order, key); i >= 0 {
		t.order = slices.Delete(t.order, i, i+1)
	}
	return true
}

// Keys returns the record keys in insertion order.
func (t *Table) Keys() []int {
	return slices.Clone(t.order)
}

// NumRecords returns the number of records.
func (t *Table) NumRecords() int {
	return len(t.order)
}

// All iterates over (key, record) pairs in insertion order.
func (t *Table) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for _, k := range t.order {
			if !yield(k, t.records[k]) {
				return
			}
		}
	}
}

// Records returns the records in insertion order.
func (t *Table) Records() []Record {
	out := make([]Record, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.records[k])
	}
	return out
}

// Copy returns a table with an independent schema and independent records.
// Changing the copy never affects t.
func (t *Table) Copy() *Table {
	c := &Table{
		schema:  t.schema.Copy(),
		order:   slices.Clone(t.order),
		records: make(map[int]Record, len(t.records)),
		nextKey: t.nextKey,
		na:      t.na,
	}
	for k, r := range t.records {
		c.records[k] = r.Copy()
	}
	return c
}

// Empty returns a table with a copy of t's schema and NA token but no rows.
func (t *Table) Empty() *Table {
	c := NewTableWithSchema(t.schema.Copy())
	c.na = t.na
	return c
}
