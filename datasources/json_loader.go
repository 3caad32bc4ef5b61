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
	"os"

	"github.com/google/quantab/core/jsonexport"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

// JSONLoader implements DataSourceLoader for files holding a JSON array of
// flat objects, the format the json command writes.
//
// Required config keys:
//   - file_path: Path to the JSON file
//
// Optional config keys:
//   - na: Missing value token (default: the loader's)
type JSONLoader struct {
	na string
}

// NewJSONLoader creates a JSON loader whose tables use the NA token na,
// values.DefaultNA when empty.
func NewJSONLoader(na string) *JSONLoader {
	if na == "" {
		na = values.DefaultNA
	}
	return &JSONLoader{na: na}
}

// SourceType returns "json".
func (l *JSONLoader) SourceType() string {
	return "json"
}

// Load reads and decodes the file named by file_path.
func (l *JSONLoader) Load(config map[string]string) (*tables.Table, error) {
	filePath := config[KeyFilePath]
	if filePath == "" {
		return nil, fmt.Errorf("file_path is required")
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	t, err := jsonexport.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	na := config[KeyNA]
	if na == "" {
		na = l.na
	}
	t.SetNA(na)
	return t, nil
}
