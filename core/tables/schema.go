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
)

// Schema is an ordered set of field names. Each field may carry a default
// value that is reported for records that do not hold the field.
type Schema struct {
	fields   []string
	index    map[string]int
	defaults map[string]string
}

// NewSchema creates a schema with the given fields. Duplicates are dropped.
func NewSchema(fields ...string) *Schema {
	s := &Schema{
		index:    make(map[string]int),
		defaults: make(map[string]string),
	}
	for _, f := range fields {
		s.WithField(f)
	}
	return s
}

// WithField appends name if it is not already present.
func (s *Schema) WithField(name string) *Schema {
	if _, exists := s.index[name]; !exists {
		s.index[name] = len(s.fields)
		s.fields = append(s.fields, name)
	}
	return s
}

// WithFields appends every name not already present, in order.
func (s *Schema) WithFields(names ...string) *Schema {
	for _, n := range names {
		s.WithField(n)
	}
	return s
}

// WithFieldDefault appends name if needed and sets its default value.
func (s *Schema) WithFieldDefault(name, def string) *Schema {
	s.WithField(name)
	s.defaults[name] = def
	return s
}

// Fields returns the field names in order.
func (s *Schema) Fields() []string {
	return slices.Clone(s.fields)
}

// Has reports whether name is part of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Index returns the position of name, or -1.
func (s *Schema) Index(name string) int {
	if i, ok := s.index[name]; ok {
		return i
	}
	return -1
}

// Default returns the default value of name, if one was set.
func (s *Schema) Default(name string) (string, bool) {
	v, ok := s.defaults[name]
	return v, ok
}

// Len returns the number of fields.
func (s *Schema) Len() int {
	return len(s.fields)
}

// Rename replaces oldName with newName, keeping its position and default.
func (s *Schema) Rename(oldName, newName string) error {
	i, ok := s.index[oldName]
	if !ok {
		return &StructuralError{Op: "rename", Field: oldName, Msg: "field does not exist"}
	}
	if oldName == newName {
		return nil
	}
	if _, exists := s.index[newName]; exists {
		return &StructuralError{Op: "rename", Field: newName, Msg: "field already exists"}
	}
	s.fields[i] = newName
	delete(s.index, oldName)
	s.index[newName] = i
	if def, ok := s.defaults[oldName]; ok {
		delete(s.defaults, oldName)
		s.defaults[newName] = def
	}
	return nil
}

// Remove drops name from the schema. It is a no-op for unknown fields.
func (s *Schema) Remove(name string) {
	i, ok := s.index[name]
	if !ok {
		return
	}
	s.fields = slices.Delete(s.fields, i, i+1)
	delete(s.index, name)
	delete(s.defaults, name)
	for j := i; j < len(s.fields); j++ {
		s.index[s.fields[j]] = j
	}
}

// Copy returns an independent copy of s.
func (s *Schema) Copy() *Schema {
	c := &Schema{
		fields:   slices.Clone(s.fields),
		index:    make(map[string]int, len(s.index)),
		defaults: make(map[string]string, len(s.defaults)),
	}
	for k, v := range s.index {
		c.index[k] = v
	}
	for k, v := range s.defaults {
		c.defaults[k] = v
	}
	return c
}
