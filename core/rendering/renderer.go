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

// Package rendering renders tables as HTML pages and as terminal text.
package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"io"

	"github.com/google/safehtml/template"

	"github.com/google/quantab/core/query"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/views"
)

//go:embed templates/*
var templateFS embed.FS

type page string

const (
	tablePage   page = "table.html"
	landingPage page = "landing.html"
)

var pages = []page{tablePage, landingPage}

// TableRenderer executes the embedded page templates. A page is rendered
// into memory first, so a failing template writes nothing to w.
type TableRenderer struct {
	templates map[page]*template.Template
}

// NewTableRenderer parses every embedded page template.
func NewTableRenderer() (*TableRenderer, error) {
	trusted := template.TrustedFSFromEmbed(templateFS)
	r := &TableRenderer{templates: make(map[page]*template.Template, len(pages))}
	for _, p := range pages {
		tmpl, err := template.New(string(p)).ParseFS(trusted, "templates/"+string(p))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", p, err)
		}
		r.templates[p] = tmpl
	}
	return r, nil
}

// Render writes the page for one table view.
func (r *TableRenderer) Render(w io.Writer, vm views.TableViewModel) error {
	return r.execute(w, tablePage, vm)
}

// RenderTable renders at most limit rows of t (all when limit is 0).
func (r *TableRenderer) RenderTable(w io.Writer, title string, t *tables.Table, p query.Pipeline, limit int) error {
	return r.Render(w, views.BuildTableViewModel(title, t, p, limit))
}

// RenderLanding writes the index page linking several tables.
func (r *TableRenderer) RenderLanding(w io.Writer, vm views.LandingViewModel) error {
	return r.execute(w, landingPage, vm)
}

func (r *TableRenderer) execute(w io.Writer, p page, data any) error {
	var buf bytes.Buffer
	if err := r.templates[p].Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", p, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
