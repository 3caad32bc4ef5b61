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

// Package views builds the view models the HTML templates render.
package views

import (
	"net/url"

	"github.com/google/safehtml"

	"github.com/google/quantab/core/query"
	"github.com/google/quantab/core/tables"
)

// TableViewModel contains the data from the table formatted for template consumption
type TableViewModel struct {
	Title   string
	Headers []string   // Field names
	Rows    [][]string // Cell values in field order, NA for absent cells

	// Pipeline describes the transforms that produced the table, if any
	Pipeline    string
	PipelineURL safehtml.URL

	// Pagination info
	TotalRows     int  // Total number of rows in the table
	DisplayedRows int  // Number of rows actually displayed
	HasMoreRows   bool // True if there are more rows than displayed
	CurrentLimit  int  // Current row limit, 0 for all
}

// LandingViewModel lists the rendered tables of a batch.
type LandingViewModel struct {
	Title  string
	Tables []TableLink
}

// TableLink is one entry of the landing page.
type TableLink struct {
	Name      string
	URL       safehtml.URL
	NumRows   int
	NumFields int
}

// BuildTableViewModel formats at most limit rows of t (all when limit is 0).
// p is the pipeline that produced t; its parameters are shown on the page.
func BuildTableViewModel(title string, t *tables.Table, p query.Pipeline, limit int) TableViewModel {
	fields := t.Fields()
	vm := TableViewModel{
		Title:        title,
		Headers:      fields,
		TotalRows:    t.NumRecords(),
		CurrentLimit: limit,
	}

	for key := range t.All() {
		if limit > 0 && len(vm.Rows) >= limit {
			vm.HasMoreRows = true
			break
		}
		row := make([]string, len(fields))
		for i, f := range fields {
			row[i] = t.Value(key, f)
		}
		vm.Rows = append(vm.Rows, row)
	}
	vm.DisplayedRows = len(vm.Rows)

	if !p.IsEmpty() {
		vm.Pipeline = p.Values().Encode()
		vm.PipelineURL = TableURL(title, p)
	}
	return vm
}

// BuildLandingViewModel links every named table to page name + ".html".
func BuildLandingViewModel(title string, names []string, ts []*tables.Table) LandingViewModel {
	vm := LandingViewModel{Title: title}
	for i, name := range names {
		link := TableLink{
			Name: name,
			URL:  PageURL(name + ".html"),
		}
		if i < len(ts) && ts[i] != nil {
			link.NumRows = ts[i].NumRecords()
			link.NumFields = len(ts[i].Fields())
		}
		vm.Tables = append(vm.Tables, link)
	}
	return vm
}

// PageURL returns a relative link to a rendered page file.
func PageURL(page string) safehtml.URL {
	return safehtml.URLSanitized(url.PathEscape(page))
}

// TableURL returns the link to the table page of name with pipeline p.
func TableURL(name string, p query.Pipeline) safehtml.URL {
	params := p.Values()
	params.Set("table", name)
	u := &url.URL{Path: "table", RawQuery: params.Encode()}
	return safehtml.URLSanitized(u.String())
}
