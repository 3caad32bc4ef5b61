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
	"errors"
	"slices"
	"testing"
)

func TestRecordWithDoesNotMutate(t *testing.T) {
	r := NewRecord("a", "1")
	r2 := r.With("b", "2")

	if r.ContainsKey("b") {
		t.Error("With must not change the receiver")
	}
	if v, _ := r2.Get("b"); v != "2" {
		t.Errorf("expected b=2, got %q", v)
	}
	if got := r2.Keys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("expected keys [a b], got %v", got)
	}

	// overwriting keeps position
	r3 := r2.With("a", "9")
	if got := r3.Keys(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("expected keys [a b], got %v", got)
	}
}

func TestRecordSelect(t *testing.T) {
	r := NewRecord("a", "1", "b", "2", "c", "3")
	s := r.Select("c", "a", "missing")
	if got := s.Keys(); !slices.Equal(got, []string{"c", "a"}) {
		t.Errorf("expected keys [c a], got %v", got)
	}
}

func TestRecordEqualityAndKey(t *testing.T) {
	a := NewRecord("x", "1", "y", "2")
	b := NewRecord("y", "2", "x", "1")
	c := NewRecord("x", "1", "y", "02")

	if !a.Equal(b) || a.Key() != b.Key() {
		t.Error("records with the same content must be equal regardless of order")
	}
	if a.Equal(c) || a.Key() == c.Key() {
		t.Error("values are compared as strings, without numeric normalization")
	}

	// separators inside values must not produce collisions
	d := NewRecord("a", "1:b", "c", "")
	e := NewRecord("a", "1", "b", ":c")
	if d.Key() == e.Key() {
		t.Error("distinct records produced the same key")
	}
}

func TestRecordRename(t *testing.T) {
	r := NewRecord("a", "1", "b", "2").Rename("a", "z")
	if got := r.Keys(); !slices.Equal(got, []string{"z", "b"}) {
		t.Errorf("expected keys [z b], got %v", got)
	}
	if r.ContainsKey("a") {
		t.Error("old field still present")
	}
}

func TestTableAddAndGet(t *testing.T) {
	table := NewTableWithFields("a")
	k0 := table.AddRecord(NewRecord("a", "1"))
	k1 := table.AddRecord(NewRecord("a", "2", "b", "x"))

	if k0 != 0 || k1 != 1 {
		t.Fatalf("expected keys 0 and 1, got %d and %d", k0, k1)
	}
	if !table.HasField("b") {
		t.Error("unknown record fields must be added to the schema")
	}
	if _, ok := table.Get(k0, "b"); ok {
		t.Error("a field added later must read as missing on older records")
	}
	if got := table.Value(k0, "b"); got != table.NA() {
		t.Errorf("expected NA token, got %q", got)
	}
	if v, ok := table.Get(k1, "b"); !ok || v != "x" {
		t.Errorf("expected b=x, got %q", v)
	}
}

func TestTablePutRecordUpserts(t *testing.T) {
	table := NewTable()
	if err := table.PutRecord(10, NewRecord("a", "1")); err != nil {
		t.Fatal(err)
	}
	if err := table.PutRecord(3, NewRecord("a", "2")); err != nil {
		t.Fatal(err)
	}
	if err := table.PutRecord(10, NewRecord("a", "3")); err != nil {
		t.Fatal(err)
	}

	if got := table.Keys(); !slices.Equal(got, []int{10, 3}) {
		t.Errorf("expected insertion order [10 3], got %v", got)
	}
	if v, _ := table.Get(10, "a"); v != "3" {
		t.Errorf("expected overwritten value 3, got %q", v)
	}
	if k := table.AddRecord(NewRecord("a", "4")); k != 11 {
		t.Errorf("expected next key 11, got %d", k)
	}
	if err := table.PutRecord(-1, NewRecord()); !errors.Is(err, ErrStructural) {
		t.Errorf("expected structural error for negative key, got %v", err)
	}
}

func TestTableSetMissingKey(t *testing.T) {
	table := NewTableWithFields("a")
	err := table.Set(5, "a", "1")
	var se *StructuralError
	if !errors.As(err, &se) {
		t.Fatalf("expected StructuralError, got %v", err)
	}
}

func TestTableSchemaDefault(t *testing.T) {
	schema := NewSchema("a").WithFieldDefault("b", "0")
	table := NewTableWithSchema(schema)
	k := table.AddRecord(NewRecord("a", "1"))
	if v, ok := table.Get(k, "b"); !ok || v != "0" {
		t.Errorf("expected default 0, got %q (%v)", v, ok)
	}
}

func TestTableCopyIsIndependent(t *testing.T) {
	table := NewTableWithFields("a")
	k := table.AddRecord(NewRecord("a", "1"))

	c := table.Copy()
	if err := c.Set(k, "a", "changed"); err != nil {
		t.Fatal(err)
	}
	c.WithField("extra")

	if v, _ := table.Get(k, "a"); v != "1" {
		t.Errorf("original changed through copy: a=%q", v)
	}
	if table.HasField("extra") {
		t.Error("original schema changed through copy")
	}
}

func TestTableRemoveRecord(t *testing.T) {
	table := NewTable()
	table.AddRecord(NewRecord("a", "1"))
	k := table.AddRecord(NewRecord("a", "2"))
	table.AddRecord(NewRecord("a", "3"))

	if !table.RemoveRecord(k) {
		t.Fatal("expected record to be removed")
	}
	if table.RemoveRecord(k) {
		t.Error("second remove must report false")
	}
	var got []string
	for _, r := range table.All() {
		v, _ := r.Get("a")
		got = append(got, v)
	}
	if !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("expected [1 3], got %v", got)
	}
}

func TestSchemaRenameAndRemove(t *testing.T) {
	s := NewSchema("a", "b", "c")
	if err := s.Rename("b", "x"); err != nil {
		t.Fatal(err)
	}
	if err := s.Rename("nope", "y"); !errors.Is(err, ErrStructural) {
		t.Errorf("expected structural error, got %v", err)
	}
	if err := s.Rename("a", "c"); !errors.Is(err, ErrStructural) {
		t.Errorf("expected collision error, got %v", err)
	}
	s.Remove("a")
	if got := s.Fields(); !slices.Equal(got, []string{"x", "c"}) {
		t.Errorf("expected [x c], got %v", got)
	}
	if s.Index("c") != 1 {
		t.Errorf("expected index 1 for c, got %d", s.Index("c"))
	}
}
