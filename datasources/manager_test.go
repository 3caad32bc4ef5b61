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

package datasources

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/google/quantab/core/csvimport"
	"github.com/google/quantab/core/logging"
)

func init() {
	logging.Discard()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestManager() *Manager {
	return NewManager(NewCsvLoader(csvimport.DefaultOptions()), NewJSONLoader(""))
}

func TestManagerLazyLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scores.csv", "name;score\nann;1\n")

	manager := newTestManager()
	manager.SetBaseDir(dir)
	manager.AddSource(&DataSource{
		Name:       "scores",
		SourceType: "csv",
		Config:     map[string]string{KeyFilePath: "scores.csv", KeyDelimiter: ";"},
	})

	if got := manager.GetSourceNames(); !slices.Equal(got, []string{"scores"}) {
		t.Errorf("unexpected sources %v", got)
	}
	if manager.IsLoaded("scores") {
		t.Error("scores should not be loaded yet")
	}

	table, err := manager.LoadData("scores")
	if err != nil {
		t.Fatalf("failed to load data: %v", err)
	}
	if v, _ := table.Get(0, "score"); v != "1" {
		t.Errorf("expected score 1, got %q", v)
	}
	if !manager.IsLoaded("scores") {
		t.Error("scores should be loaded now")
	}

	again, err := manager.LoadData("scores")
	if err != nil {
		t.Fatal(err)
	}
	if again != table {
		t.Error("expected the cached table")
	}

	manager.InvalidateCache("scores")
	if manager.IsLoaded("scores") {
		t.Error("scores should have been evicted")
	}
}

func TestManagerErrors(t *testing.T) {
	manager := newTestManager()
	if _, err := manager.LoadData("absent"); err == nil {
		t.Error("expected an error for an unknown source")
	}

	manager.AddSource(&DataSource{Name: "db", SourceType: "postgres"})
	_, err := manager.LoadData("db")
	if err == nil || !strings.Contains(err.Error(), "no loader") {
		t.Errorf("expected a missing loader error, got %v", err)
	}

	manager.AddSource(&DataSource{Name: "nopath", SourceType: "csv"})
	if _, err := manager.LoadData("nopath"); err == nil {
		t.Error("expected an error without file_path")
	}
}

func TestManagerOpen(t *testing.T) {
	dir := t.TempDir()
	csvPath := writeFile(t, dir, "a.tsv", "k\tv\nx\t1\n")
	jsonPath := writeFile(t, dir, "b.json", `[{"k":"y","v":2},{"k":"z"}]`)

	manager := newTestManager()
	// the base directory does not apply to opened paths
	manager.SetBaseDir(filepath.Join(dir, "elsewhere"))

	a, err := manager.Open(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := a.Get(0, "v"); v != "1" {
		t.Errorf("expected v=1 from the tsv file, got %q", v)
	}

	b, err := manager.Open(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if b.NumRecords() != 2 || b.Value(1, "v") != "NA" {
		t.Errorf("unexpected json table %d rows, v=%q", b.NumRecords(), b.Value(1, "v"))
	}
	if got := manager.GetLoadedSources(); len(got) != 2 {
		t.Errorf("expected 2 loaded sources, got %v", got)
	}
}

func TestCsvLoaderOptions(t *testing.T) {
	loader := NewCsvLoader(csvimport.DefaultOptions())
	opts, err := loader.Options(map[string]string{KeyFilePath: "x.csv", KeyHasHeader: "false", KeyNA: "-"})
	if err != nil {
		t.Fatal(err)
	}
	if opts.HasHeader || opts.NA != "-" || opts.Delimiter != ',' {
		t.Errorf("unexpected options %+v", opts)
	}

	for _, config := range []map[string]string{
		{KeyDelimiter: ";;"},
		{KeyHasHeader: "maybe"},
	} {
		if _, err := loader.Options(config); err == nil {
			t.Errorf("expected an error for %v", config)
		}
	}
}

func TestSourceTypeForPath(t *testing.T) {
	tests := map[string]string{
		"a.csv":  "csv",
		"a.tsv":  "csv",
		"a.JSON": "json",
		"a":      "csv",
	}
	for path, want := range tests {
		if got := SourceTypeForPath(path); got != want {
			t.Errorf("SourceTypeForPath(%q) = %q, want %q", path, got, want)
		}
	}
}

var _ DataSourceLoader = (*CsvLoader)(nil)
var _ DataSourceLoader = (*JSONLoader)(nil)
