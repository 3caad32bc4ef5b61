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

// Package csvimport reads and writes tables as delimited text with a header
// row of field names. Every cell is kept as a string; no type detection is
// performed.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

// ImportOptions configures reading and writing delimited text.
type ImportOptions struct {
	// HasHeader indicates whether the first row contains field names
	HasHeader bool
	// Delimiter is the field delimiter (defaults to comma)
	Delimiter rune
	// Comment, if non-zero, marks lines to skip
	Comment rune
	// NA is the token for missing values, stored on the table and written
	// for absent cells
	NA string
	// TrimSpace trims surrounding whitespace from every cell
	TrimSpace bool
}

// DefaultOptions returns default import options
func DefaultOptions() ImportOptions {
	return ImportOptions{
		HasHeader: true,
		Delimiter: ',',
		NA:        values.DefaultNA,
	}
}

// OptionsForPath returns DefaultOptions with the delimiter chosen from the
// file extension: tab for .tsv and .txt, comma otherwise.
func OptionsForPath(path string) ImportOptions {
	options := DefaultOptions()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		options.Delimiter = '\t'
	}
	return options
}

// ImportFromFile reads a delimited file into a Table
func ImportFromFile(path string, options ImportOptions) (*tables.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ImportFromReader(file, options)
}

// ImportFromReader reads delimited data into a Table. Empty input yields an
// empty table; a header without rows yields an empty table with fields.
// A row whose arity differs from the header is a *tables.MalformedInputError.
func ImportFromReader(reader io.Reader, options ImportOptions) (*tables.Table, error) {
	csvReader := csv.NewReader(reader)
	if options.Delimiter != 0 {
		csvReader.Comma = options.Delimiter
	}
	csvReader.Comment = options.Comment
	// arity is checked against the header below
	csvReader.FieldsPerRecord = -1

	table := tables.NewTable()
	if options.NA != "" {
		table.SetNA(options.NA)
	}

	var headers []string
	line := 0
	for {
		row, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, &tables.MalformedInputError{Line: parseErr.Line, Msg: "failed to read CSV", Err: parseErr.Err}
			}
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line, _ = csvReader.FieldPos(0)

		if options.TrimSpace {
			for i := range row {
				row[i] = strings.TrimSpace(row[i])
			}
		}

		if headers == nil {
			if options.HasHeader {
				headers, err = checkHeaders(row, line)
				if err != nil {
					return nil, err
				}
				table.WithFields(headers...)
				continue
			}
			// Generate field names if no header
			headers = make([]string, len(row))
			for i := range row {
				headers[i] = fmt.Sprintf("column_%d", i+1)
			}
			table.WithFields(headers...)
		}

		if len(row) != len(headers) {
			return nil, &tables.MalformedInputError{
				Line: line,
				Msg:  fmt.Sprintf("row has %d fields, header has %d", len(row), len(headers)),
			}
		}

		pairs := make([]string, 0, 2*len(row))
		for i, value := range row {
			pairs = append(pairs, headers[i], value)
		}
		table.AddRecord(tables.NewRecord(pairs...))
	}

	return table, nil
}

func checkHeaders(row []string, line int) ([]string, error) {
	seen := make(map[string]bool, len(row))
	headers := make([]string, len(row))
	for i, h := range row {
		if seen[h] {
			return nil, &tables.MalformedInputError{Line: line, Msg: fmt.Sprintf("duplicate field %q in header", h)}
		}
		seen[h] = true
		headers[i] = h
	}
	return headers, nil
}

// ExportToFile writes the table to path, creating or truncating it.
func ExportToFile(path string, table *tables.Table, options ImportOptions) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := ExportToWriter(file, table, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ExportToWriter writes a header row followed by one row per record in key
// order. Absent cells are written as the table's NA token.
func ExportToWriter(w io.Writer, table *tables.Table, options ImportOptions) error {
	csvWriter := csv.NewWriter(w)
	if options.Delimiter != 0 {
		csvWriter.Comma = options.Delimiter
	}

	fields := table.Fields()
	if options.HasHeader {
		if err := writeRow(w, csvWriter, fields); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := make([]string, len(fields))
	for key := range table.All() {
		for i, f := range fields {
			row[i] = table.Value(key, f)
		}
		if err := writeRow(w, csvWriter, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", key, err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// writeRow writes one record. encoding/csv writes a lone empty cell as a
// blank line, which readers skip, so that row is written quoted by hand.
func writeRow(w io.Writer, csvWriter *csv.Writer, row []string) error {
	if len(row) != 1 || row[0] != "" {
		return csvWriter.Write(row)
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\"\"\n")
	return err
}
