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

package rendering

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/quantab/core/query"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/views"
)

func sampleTable() *tables.Table {
	t := tables.NewTableWithFields("name", "note")
	t.AddRecord(tables.NewRecord("name", "a", "note", "<b>bold</b>"))
	t.AddRecord(tables.NewRecord("name", "b"))
	return t
}

func TestRenderEscapes(t *testing.T) {
	r, err := NewTableRenderer()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}

	var buf bytes.Buffer
	if err := r.RenderTable(&buf, "People & <Things>", sampleTable(), query.Pipeline{Sort: "name"}, 0); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<b>bold</b>") {
		t.Error("cell content was not escaped")
	}
	if !strings.Contains(out, "&lt;b&gt;bold&lt;/b&gt;") {
		t.Errorf("expected escaped cell in output:\n%s", out)
	}
	if !strings.Contains(out, "<td>NA</td>") {
		t.Error("expected NA for absent cell")
	}
	if !strings.Contains(out, "People &amp; &lt;Things&gt;") {
		t.Error("expected escaped title")
	}
}

func TestRenderLanding(t *testing.T) {
	r, err := NewTableRenderer()
	if err != nil {
		t.Fatal(err)
	}
	vm := views.BuildLandingViewModel("batch", []string{"one"}, []*tables.Table{sampleTable()})
	var buf bytes.Buffer
	if err := r.RenderLanding(&buf, vm); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `href="one.html"`) {
		t.Errorf("expected link to one.html:\n%s", buf.String())
	}
}

func TestRenderText(t *testing.T) {
	out := RenderText(sampleTable(), 1)
	if !strings.Contains(out, "name") || !strings.Contains(out, "<b>bold</b>") {
		t.Errorf("unexpected text rendering:\n%s", out)
	}
	if strings.Contains(out, "NA") {
		t.Error("limit 1 must not render the second row")
	}
}

func TestRenderFailureWritesNothing(t *testing.T) {
	r, err := NewTableRenderer()
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	// the landing template reads .Title, which this value lacks
	if err := r.execute(&buf, landingPage, struct{ Name string }{"x"}); err == nil {
		t.Fatal("expected an execution error")
	}
	if buf.Len() != 0 {
		t.Errorf("expected no partial output, got %q", buf.String())
	}
}
