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

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/google/quantab/core/aggregates"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quantab.yaml")
	data := `
na: "-"
delimiter: "\t"
workers: 2
stats:
  pattern: "v_%s"
  stats: [median, mad]
pipeline:
  sort: "^#score"
  cat: ["id=%{a}_%{b}"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Workers)
	require.Equal(t, "text", cfg.Logging.Format, "defaults survive partial files")

	opts := cfg.ImportOptions()
	require.Equal(t, '\t', opts.Delimiter)
	require.Equal(t, "-", opts.NA)

	require.Equal(t, []aggregates.Stat{aggregates.StatMedian, aggregates.StatMAD}, cfg.StatList())

	p := cfg.QueryPipeline()
	require.Equal(t, "^#score", p.Sort)
	require.Equal(t, []string{"id=%{a}_%{b}"}, p.Cat)
}

func TestLoadConfigInvalid(t *testing.T) {
	dir := t.TempDir()
	for name, data := range map[string]string{
		"delimiter": "delimiter: ';;'\n",
		"workers":   "workers: 0\n",
		"stats":     "stats: {stats: [mode]}\n",
		"format":    "logging: {format: xml}\n",
		"yaml":      "na: [unclosed\n",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
			_, err := LoadConfig(path)
			require.Error(t, err)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Where = "age > 18"
	path := filepath.Join(t.TempDir(), "nested", "quantab.yaml")

	require.NoError(t, SaveConfig(cfg, path))
	back, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, cfg, back)
}

func TestWriteConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteConfig(&buf, DefaultConfig()))
	require.Contains(t, buf.String(), "na: NA")

	path := filepath.Join(t.TempDir(), "written.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestValidateSources(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sources = []SourceConfig{{Name: "scores", Path: "data/scores.csv"}}
	require.NoError(t, cfg.Validate())

	cfg.Sources = append(cfg.Sources, SourceConfig{Name: "scores", Path: "other.csv"})
	require.Error(t, cfg.Validate())

	cfg.Sources = []SourceConfig{{Name: "nopath"}}
	require.Error(t, cfg.Validate())
}
