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

package jsonexport

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/quantab/core/tables"
)

func TestMarshal(t *testing.T) {
	table := tables.NewTableWithFields("id", "score")
	table.AddRecord(tables.NewRecord("id", "1", "score", "3.5"))
	table.AddRecord(tables.NewRecord("id", "2"))

	for _, multiline := range []bool{false, true} {
		data, err := Marshal(table, multiline)
		require.NoError(t, err)

		var rows []map[string]*string
		require.NoError(t, json.Unmarshal(data, &rows))
		require.Len(t, rows, 2)
		require.Equal(t, "3.5", *rows[0]["score"])
		require.Contains(t, rows[1], "score")
		require.Nil(t, rows[1]["score"], "absent cell must be null")
	}
}

func TestUnmarshal(t *testing.T) {
	table, err := Unmarshal([]byte(`[{"b": "x", "a": 1}, {"a": 2.5, "c": true, "b": null}]`))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, table.Fields())
	require.Equal(t, 2, table.NumRecords())

	keys := table.Keys()
	require.Equal(t, "1", table.Value(keys[0], "a"))
	require.Equal(t, "x", table.Value(keys[0], "b"))
	require.Equal(t, "2.5", table.Value(keys[1], "a"))
	require.Equal(t, "true", table.Value(keys[1], "c"))
	_, ok := table.Get(keys[1], "b")
	require.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	table := tables.NewTableWithFields("a", "b")
	table.AddRecord(tables.NewRecord("a", "1", "b", "NA"))
	data, err := Marshal(table, false)
	require.NoError(t, err)

	back, err := Unmarshal(data)
	require.NoError(t, err)
	r, _ := back.Record(back.Keys()[0])
	orig, _ := table.Record(0)
	require.True(t, r.Equal(orig))
}

func TestUnmarshalMalformed(t *testing.T) {
	for _, input := range []string{`{"a": 1}`, `[1, 2]`, `[{"a": {"b": 1}}]`, `[`} {
		_, err := Unmarshal([]byte(input))
		require.True(t, errors.Is(err, tables.ErrMalformedInput), "input %s: %v", input, err)
	}
}
