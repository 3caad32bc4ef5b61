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
	"fmt"
	"unicode/utf8"

	"github.com/google/quantab/core/csvimport"
	"github.com/google/quantab/core/tables"
)

// CsvLoader implements DataSourceLoader for delimited text files.
// All columns are loaded as strings.
//
// Required config keys:
//   - file_path: Path to the file
//
// Optional config keys:
//   - has_header: "true" or "false" (default: "true")
//   - delimiter: Field delimiter (default: from the loader options, or tab
//     for .tsv and .txt files)
//   - na: Missing value token
type CsvLoader struct {
	defaults csvimport.ImportOptions
}

// NewCsvLoader creates a CSV loader whose options default to defaults.
func NewCsvLoader(defaults csvimport.ImportOptions) *CsvLoader {
	return &CsvLoader{defaults: defaults}
}

// SourceType returns "csv".
func (l *CsvLoader) SourceType() string {
	return "csv"
}

// Options returns the import options for config.
func (l *CsvLoader) Options(config map[string]string) (csvimport.ImportOptions, error) {
	opts := l.defaults
	if csvimport.OptionsForPath(config[KeyFilePath]).Delimiter == '\t' {
		opts.Delimiter = '\t'
	}
	if d := config[KeyDelimiter]; d != "" {
		r, size := utf8.DecodeRuneInString(d)
		if size != len(d) {
			return opts, fmt.Errorf("delimiter must be a single character, got %q", d)
		}
		opts.Delimiter = r
	}
	switch config[KeyHasHeader] {
	case "", "true":
	case "false":
		opts.HasHeader = false
	default:
		return opts, fmt.Errorf("has_header must be true or false, got %q", config[KeyHasHeader])
	}
	if na := config[KeyNA]; na != "" {
		opts.NA = na
	}
	return opts, nil
}

// Load reads the file named by file_path.
func (l *CsvLoader) Load(config map[string]string) (*tables.Table, error) {
	filePath := config[KeyFilePath]
	if filePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}
	opts, err := l.Options(config)
	if err != nil {
		return nil, err
	}
	return csvimport.ImportFromFile(filePath, opts)
}
