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

// Package datasources loads tables by name or path through pluggable
// loaders. quantab provides loaders for delimited text ("csv") and JSON
// arrays of objects ("json").
package datasources

import (
	"path/filepath"
	"strings"

	"github.com/google/quantab/core/tables"
)

// Config keys understood by the built-in loaders.
const (
	KeyFilePath  = "file_path"
	KeyDelimiter = "delimiter"
	KeyHasHeader = "has_header"
	KeyNA        = "na"
)

// DataSourceLoader is the interface that all data source loaders must implement.
type DataSourceLoader interface {
	// SourceType returns the type identifier used in config (e.g. "csv", "json").
	SourceType() string

	// Load reads the source described by config into a Table.
	Load(config map[string]string) (*tables.Table, error)
}

// DataSource describes a named table and how to load it.
type DataSource struct {
	Name       string
	SourceType string
	Config     map[string]string
}

// SourceTypeForPath returns the loader type implied by a file extension:
// "json" for .json files, "csv" otherwise.
func SourceTypeForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "csv"
}
