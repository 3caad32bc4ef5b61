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

// Package server serves tables as HTML pages. The table page applies the
// transform pipeline given in its query string, so a page URL describes the
// table it shows.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/query"
	"github.com/google/quantab/core/rendering"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/views"
)

// DefaultLimit is the number of rows a table page shows without a limit
// parameter.
const DefaultLimit = 500

// TableSource resolves a table name to its table. Tables returned are
// shared and must not be modified.
type TableSource interface {
	Open(name string) (*tables.Table, error)
}

// TableSourceFunc adapts a function to TableSource.
type TableSourceFunc func(name string) (*tables.Table, error)

// Open calls f(name).
func (f TableSourceFunc) Open(name string) (*tables.Table, error) {
	return f(name)
}

// Server renders the tables it was given
type Server struct {
	title    string
	names    []string
	source   TableSource
	renderer *rendering.TableRenderer
}

// NewServer creates a server for the named tables of source.
func NewServer(title string, names []string, source TableSource) (*Server, error) {
	renderer, err := rendering.NewTableRenderer()
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return &Server{
		title:    title,
		names:    slices.Clone(names),
		source:   source,
		renderer: renderer,
	}, nil
}

// TableHandlerResult represents the result of handling a table request
type TableHandlerResult struct {
	Error      error
	StatusCode int
	Message    string
}

// TimingCollector collects timing measurements for various operations
type TimingCollector struct {
	entries []any
	start   time.Time
}

// NewTimingCollector creates a new timing collector
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{start: time.Now()}
}

// Record records a timing entry
func (tc *TimingCollector) Record(operation string, duration time.Duration) {
	tc.entries = append(tc.entries, operation, fmt.Sprintf("%.2fms", float64(duration.Microseconds())/1000.0))
}

// LogAttrs returns the entries as alternating key/value pairs.
func (tc *TimingCollector) LogAttrs() []any {
	return append(slices.Clone(tc.entries), "total", tc.TotalMs()+"ms")
}

// TotalMs returns total elapsed time in milliseconds as formatted string
func (tc *TimingCollector) TotalMs() string {
	return fmt.Sprintf("%.2f", float64(time.Since(tc.start).Microseconds())/1000.0)
}

// HandleTableRequest processes a table request and writes the response.
// Returns an error result if the request is invalid, nil on success.
func (s *Server) HandleTableRequest(w io.Writer, requestURL *url.URL, setHeader func(key, value string)) *TableHandlerResult {
	timing := NewTimingCollector()
	params := requestURL.Query()

	name := params.Get("table")
	if name == "" {
		return &TableHandlerResult{StatusCode: http.StatusBadRequest, Message: "Table parameter is required"}
	}
	if !slices.Contains(s.names, name) {
		return &TableHandlerResult{StatusCode: http.StatusNotFound, Message: fmt.Sprintf("Table '%s' not found", name)}
	}

	limit := DefaultLimit
	if l := params.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n < 0 {
			return &TableHandlerResult{StatusCode: http.StatusBadRequest, Message: fmt.Sprintf("invalid limit %q", l)}
		}
		limit = n
	}
	p := query.ParsePipeline(params)
	// the page paginates itself
	p.Limit = 0

	loadStart := time.Now()
	table, err := s.source.Open(name)
	if err != nil {
		return &TableHandlerResult{Error: err, StatusCode: http.StatusInternalServerError, Message: "failed to load table"}
	}
	timing.Record("load", time.Since(loadStart))

	applyStart := time.Now()
	out, err := query.Apply(table, p)
	if err != nil {
		if errors.Is(err, tables.ErrStructural) {
			return &TableHandlerResult{Error: err, StatusCode: http.StatusBadRequest, Message: err.Error()}
		}
		return &TableHandlerResult{Error: err, StatusCode: http.StatusInternalServerError, Message: "failed to apply pipeline"}
	}
	timing.Record("pipeline", time.Since(applyStart))

	setHeader("Content-Type", "text/html; charset=utf-8")
	vm := views.BuildTableViewModel(name, out, p, limit)
	if err := s.renderer.Render(w, vm); err != nil {
		return &TableHandlerResult{Error: err}
	}
	logging.WithTable(name).Info("served table", timing.LogAttrs()...)
	return nil
}

// HandleLandingRequest processes the landing page request
func (s *Server) HandleLandingRequest(w io.Writer, setHeader func(key, value string)) error {
	ts := make([]*tables.Table, len(s.names))
	for i, name := range s.names {
		t, err := s.source.Open(name)
		if err != nil {
			logging.WithTable(name).Warn("failed to load table", "error", err)
			continue
		}
		ts[i] = t
	}

	vm := views.BuildLandingViewModel(s.title, s.names, ts)
	for i, name := range s.names {
		vm.Tables[i].URL = views.TableURL(name, query.Pipeline{})
	}
	setHeader("Content-Type", "text/html; charset=utf-8")
	return s.renderer.RenderLanding(w, vm)
}

// Handler returns the HTTP handler serving "/" and "/table".
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/table", func(w http.ResponseWriter, r *http.Request) {
		result := s.HandleTableRequest(w, r.URL, w.Header().Set)
		if result == nil {
			return
		}
		if result.Error != nil {
			logging.GetLogger().Error("table request failed", "url", r.URL.String(), "error", result.Error)
		}
		if result.StatusCode != 0 {
			http.Error(w, result.Message, result.StatusCode)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if err := s.HandleLandingRequest(w, w.Header().Set); err != nil {
			logging.GetLogger().Error("landing page failed", "error", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
	})
	return mux
}
