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

package csvimport

import (
	"bytes"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/quantab/core/tables"
)

func TestImportBasicCSV(t *testing.T) {
	csvData := `name,age,city
Alice,30,New York
Bob,25,Los Angeles
Charlie,35,Chicago`

	table, err := ImportFromReader(strings.NewReader(csvData), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}

	if table.NumRecords() != 3 {
		t.Errorf("expected 3 rows, got %d", table.NumRecords())
	}
	if got := table.Fields(); !slices.Equal(got, []string{"name", "age", "city"}) {
		t.Errorf("unexpected fields %v", got)
	}
	if v, _ := table.Get(0, "name"); v != "Alice" {
		t.Errorf("expected 'Alice', got '%s'", v)
	}
	// numbers stay strings
	if v, _ := table.Get(0, "age"); v != "30" {
		t.Errorf("expected '30', got '%s'", v)
	}
}

func TestImportWithoutHeader(t *testing.T) {
	csvData := `Alice,30,New York
Bob,25,Los Angeles`

	options := DefaultOptions()
	options.HasHeader = false

	table, err := ImportFromReader(strings.NewReader(csvData), options)
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}
	if table.NumRecords() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.NumRecords())
	}
	if v, _ := table.Get(0, "column_1"); v != "Alice" {
		t.Errorf("expected 'Alice', got '%s'", v)
	}
}

func TestImportWithDelimiter(t *testing.T) {
	csvData := "name\tage\nAlice\t30\n"

	table, err := ImportFromReader(strings.NewReader(csvData), OptionsForPath("people.tsv"))
	if err != nil {
		t.Fatalf("failed to import CSV: %v", err)
	}
	if v, _ := table.Get(0, "age"); v != "30" {
		t.Errorf("expected '30', got '%s'", v)
	}
}

func TestImportEmptyInput(t *testing.T) {
	table, err := ImportFromReader(strings.NewReader(""), DefaultOptions())
	if err != nil {
		t.Fatalf("empty input must not fail: %v", err)
	}
	if table.NumRecords() != 0 || len(table.Fields()) != 0 {
		t.Errorf("expected empty table, got %d rows and fields %v", table.NumRecords(), table.Fields())
	}

	table, err = ImportFromReader(strings.NewReader("a,b\n"), DefaultOptions())
	if err != nil {
		t.Fatalf("header-only input must not fail: %v", err)
	}
	if got := table.Fields(); !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("expected fields [a b], got %v", got)
	}
}

func TestImportArityMismatch(t *testing.T) {
	csvData := "a,b\n1,2\n3\n"

	_, err := ImportFromReader(strings.NewReader(csvData), DefaultOptions())
	var malformed *tables.MalformedInputError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedInputError, got %v", err)
	}
	if malformed.Line != 3 {
		t.Errorf("expected line 3, got %d", malformed.Line)
	}
}

func TestImportDuplicateHeader(t *testing.T) {
	_, err := ImportFromReader(strings.NewReader("a,a\n1,2\n"), DefaultOptions())
	if !errors.Is(err, tables.ErrMalformedInput) {
		t.Fatalf("expected malformed input, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	csvData := "id,score,note\n2,NA,\"a, b\"\n1,3.5,\n10,-,x\n"

	table, err := ImportFromReader(strings.NewReader(csvData), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := ExportToWriter(&buf, table, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != csvData {
		t.Errorf("round trip changed the data:\n%s\nwant:\n%s", buf.String(), csvData)
	}

	again, err := ImportFromReader(&buf, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(again.Fields(), table.Fields()) {
		t.Errorf("field order changed: %v", again.Fields())
	}
	originals := table.Records()
	for i, r := range again.Records() {
		if !r.Equal(originals[i]) {
			t.Errorf("row %d changed: %v != %v", i, r, originals[i])
		}
	}
}

func TestRoundTripSingleColumnEmptyCell(t *testing.T) {
	table := tables.NewTableWithFields("x")
	for _, v := range []string{"a", "", "b"} {
		table.AddRecord(tables.NewRecord("x", v))
	}

	var buf bytes.Buffer
	if err := ExportToWriter(&buf, table, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "x\na\n\"\"\nb\n" {
		t.Errorf("unexpected output %q", buf.String())
	}

	back, err := ImportFromReader(&buf, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if back.NumRecords() != 3 {
		t.Fatalf("expected 3 rows after round trip, got %d", back.NumRecords())
	}
	if v, _ := back.Get(1, "x"); v != "" {
		t.Errorf("expected empty cell in row 1, got %q", v)
	}
}

func TestExportWritesNAForAbsentCells(t *testing.T) {
	table := tables.NewTableWithFields("a", "b")
	table.AddRecord(tables.NewRecord("a", "1"))
	table.SetNA("-")

	var buf bytes.Buffer
	if err := ExportToWriter(&buf, table, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "a,b\n1,-\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestExportToFile(t *testing.T) {
	table := tables.NewTableWithFields("x")
	table.AddRecord(tables.NewRecord("x", "1"))

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := ExportToFile(path, table, DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	back, err := ImportFromFile(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := back.Get(0, "x"); v != "1" {
		t.Errorf("expected x=1, got %q", v)
	}
}
