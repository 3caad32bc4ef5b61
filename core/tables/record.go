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
	"slices"
	"strconv"
	"strings"
)

// Record is one row: an ordered mapping from field name to string value.
//
// Records are immutable values. With, Without, Select and Rename return a
// new Record and leave the receiver untouched, so a Record can be shared
// between tables or used as a group key without copying.
type Record struct {
	keys   []string
	values map[string]string
}

// NewRecord builds a record from alternating field/value pairs.
// A trailing field without a value is ignored.
func NewRecord(pairs ...string) Record {
	r := Record{
		keys:   make([]string, 0, len(pairs)/2),
		values: make(map[string]string, len(pairs)/2),
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		r.set(pairs[i], pairs[i+1])
	}
	return r
}

// RecordFromMap builds a record holding the fields of m that appear in
// order, in that order.
func RecordFromMap(order []string, m map[string]string) Record {
	r := Record{
		keys:   make([]string, 0, len(order)),
		values: make(map[string]string, len(order)),
	}
	for _, f := range order {
		if v, ok := m[f]; ok {
			r.set(f, v)
		}
	}
	return r
}

// set mutates r and must only be used while r is being built.
func (r *Record) set(field, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, exists := r.values[field]; !exists {
		r.keys = append(r.keys, field)
	}
	r.values[field] = value
}

// Get returns the value of field and whether the record holds it.
func (r Record) Get(field string) (string, bool) {
	v, ok := r.values[field]
	return v, ok
}

// ContainsKey reports whether the record holds field.
func (r Record) ContainsKey(field string) bool {
	_, ok := r.values[field]
	return ok
}

// Keys returns the fields present in the record, in insertion order.
func (r Record) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of fields in the record.
func (r Record) Len() int {
	return len(r.keys)
}

// With returns a copy of r with field set to value. A new field is appended
// after the existing ones; an existing field keeps its position.
func (r Record) With(field, value string) Record {
	c := r.Copy()
	c.set(field, value)
	return c
}

// Without returns a copy of r without field.
func (r Record) Without(field string) Record {
	if !r.ContainsKey(field) {
		return r
	}
	c := Record{
		keys:   make([]string, 0, len(r.keys)-1),
		values: make(map[string]string, len(r.keys)-1),
	}
	for _, k := range r.keys {
		if k != field {
			c.set(k, r.values[k])
		}
	}
	return c
}

// Rename returns a copy of r with oldName replaced by newName in place.
func (r Record) Rename(oldName, newName string) Record {
	if !r.ContainsKey(oldName) || oldName == newName {
		return r
	}
	c := Record{
		keys:   make([]string, 0, len(r.keys)),
		values: make(map[string]string, len(r.keys)),
	}
	for _, k := range r.keys {
		switch k {
		case oldName:
			c.set(newName, r.values[k])
		case newName:
			// overwritten by the renamed field
		default:
			c.set(k, r.values[k])
		}
	}
	return c
}

// Copy returns an independent copy of r. Value strings are shared.
func (r Record) Copy() Record {
	c := Record{
		keys:   slices.Clone(r.keys),
		values: make(map[string]string, len(r.values)),
	}
	for k, v := range r.values {
		c.values[k] = v
	}
	return c
}

// Select projects r onto fields, in the order given. Fields that r does not
// hold are skipped.
func (r Record) Select(fields ...string) Record {
	c := Record{
		keys:   make([]string, 0, len(fields)),
		values: make(map[string]string, len(fields)),
	}
	for _, f := range fields {
		if v, ok := r.values[f]; ok {
			c.set(f, v)
		}
	}
	return c
}

// Equal reports whether r and other hold the same field/value pairs.
// Field order is not significant.
func (r Record) Equal(other Record) bool {
	if len(r.values) != len(other.values) {
		return false
	}
	for k, v := range r.values {
		if ov, ok := other.values[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Key returns a canonical string for r, usable as a map key. Two records have
// the same key iff they are Equal. Values are compared case-sensitively and
// without numeric normalization.
func (r Record) Key() string {
	fields := slices.Clone(r.keys)
	slices.Sort(fields)
	var sb strings.Builder
	for _, f := range fields {
		// length prefixes keep "a|b" + "c" distinct from "a" + "b|c"
		sb.WriteString(strconv.Itoa(len(f)))
		sb.WriteByte(':')
		sb.WriteString(f)
		v := r.values[f]
		sb.WriteString(strconv.Itoa(len(v)))
		sb.WriteByte(':')
		sb.WriteString(v)
	}
	return sb.String()
}

// String formats r as {a:1, b:2} for debugging and test output.
func (r Record) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(r.values[k])
	}
	sb.WriteByte('}')
	return sb.String()
}
