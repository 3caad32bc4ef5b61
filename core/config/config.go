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

// Package config loads the quantab YAML configuration. A missing file is not
// an error; the defaults apply.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"github.com/google/quantab/core/aggregates"
	"github.com/google/quantab/core/csvimport"
	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/query"
	"github.com/google/quantab/core/values"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// NA is the token for missing values in input and output tables
	NA string `yaml:"na"`

	// Delimiter separates fields in delimited files; a single character
	Delimiter string `yaml:"delimiter"`

	// Workers bounds the number of tables processed in parallel
	Workers int `yaml:"workers"`

	// Logging parameters
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`

	// Stats holds the defaults of the stats command
	Stats struct {
		// Pattern names the statistic columns, e.g. "v_%s"
		Pattern string `yaml:"pattern"`
		// Stats lists the statistics to compute
		Stats []string `yaml:"stats"`
	} `yaml:"stats"`

	// Pipeline holds the transforms the filter command runs when no flag
	// overrides them
	Pipeline struct {
		Dempty   bool     `yaml:"dempty"`
		Rename   string   `yaml:"rename"`
		Retain   string   `yaml:"retain"`
		Remove   string   `yaml:"remove"`
		Sort     string   `yaml:"sort"`
		Unique   string   `yaml:"unique"`
		Constant string   `yaml:"constant"`
		Cat      []string `yaml:"cat,omitempty"`
		Where    string   `yaml:"where"`
	} `yaml:"pipeline"`

	// Sources names tables that commands can read as "@name"
	Sources []SourceConfig `yaml:"sources,omitempty"`
}

// SourceConfig describes one named table.
type SourceConfig struct {
	Name string `yaml:"name"`
	// Type selects the loader, "csv" or "json"; empty means from the
	// path extension
	Type string `yaml:"type,omitempty"`
	// Path is relative to the directory of the configuration file
	Path string `yaml:"path"`
	// Options are passed to the loader, e.g. delimiter or na
	Options map[string]string `yaml:"options,omitempty"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{
		NA:        values.DefaultNA,
		Delimiter: ",",
		Workers:   runtime.NumCPU(),
	}
	cfg.Logging.Level = string(logging.LevelInfo)
	cfg.Logging.Format = "text"
	cfg.Stats.Pattern = "%s"
	cfg.Stats.Stats = []string{"mean", "std", "num"}
	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// WriteConfig encodes cfg as YAML to w.
func WriteConfig(w io.Writer, cfg *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	return enc.Close()
}

// Validate checks the configuration for values the engine cannot use.
func (c *Config) Validate() error {
	if utf8.RuneCountInString(c.Delimiter) != 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	for _, s := range c.Stats.Stats {
		if _, err := aggregates.ParseStat(s); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if src.Name == "" || src.Path == "" {
			return fmt.Errorf("source %q needs a name and a path", src.Name)
		}
		if seen[src.Name] {
			return fmt.Errorf("source %q defined twice", src.Name)
		}
		seen[src.Name] = true
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	return nil
}

// ImportOptions returns the delimited-file options the configuration implies.
func (c *Config) ImportOptions() csvimport.ImportOptions {
	opts := csvimport.DefaultOptions()
	if r, _ := utf8.DecodeRuneInString(c.Delimiter); r != utf8.RuneError {
		opts.Delimiter = r
	}
	if c.NA != "" {
		opts.NA = c.NA
	}
	return opts
}

// LoggingConfig returns the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	return logging.Config{
		Level:      logging.Level(c.Logging.Level),
		Format:     c.Logging.Format,
		OutputPath: c.Logging.Output,
	}
}

// StatList returns the configured statistics.
func (c *Config) StatList() []aggregates.Stat {
	stats := make([]aggregates.Stat, 0, len(c.Stats.Stats))
	for _, s := range c.Stats.Stats {
		// checked by Validate
		if st, err := aggregates.ParseStat(s); err == nil {
			stats = append(stats, st)
		}
	}
	return stats
}

// QueryPipeline returns the configured transform pipeline.
func (c *Config) QueryPipeline() query.Pipeline {
	p := c.Pipeline
	return query.Pipeline{
		Dempty:   p.Dempty,
		Rename:   p.Rename,
		Retain:   p.Retain,
		Remove:   p.Remove,
		Sort:     p.Sort,
		Unique:   p.Unique,
		Constant: p.Constant,
		Cat:      append([]string(nil), p.Cat...),
		Where:    p.Where,
	}
}
