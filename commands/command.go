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

// Package commands implements the quantab subcommands. Each command parses
// its own flags, reads its input tables, runs one engine operation and
// writes the result.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/google/quantab/core/config"
	"github.com/google/quantab/core/csvimport"
	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/query"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/datasources"
)

// Env carries what a command needs from the process.
type Env struct {
	Config  *config.Config
	Sources *datasources.Manager
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// NewEnv returns an Env bound to the standard streams.
func NewEnv(cfg *config.Config) *Env {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Env{
		Config:  cfg,
		Sources: NewSources(cfg),
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
	}
}

// NewSources returns a manager with the built-in loaders and the sources
// named in cfg.
func NewSources(cfg *config.Config) *datasources.Manager {
	m := datasources.NewManager(
		datasources.NewCsvLoader(cfg.ImportOptions()),
		datasources.NewJSONLoader(cfg.NA),
	)
	for _, src := range cfg.Sources {
		sourceType := src.Type
		if sourceType == "" {
			sourceType = datasources.SourceTypeForPath(src.Path)
		}
		sourceConfig := map[string]string{datasources.KeyNA: cfg.NA}
		for k, v := range src.Options {
			sourceConfig[k] = v
		}
		sourceConfig[datasources.KeyFilePath] = src.Path
		m.AddSource(&datasources.DataSource{Name: src.Name, SourceType: sourceType, Config: sourceConfig})
	}
	return m
}

// Command is one quantab subcommand.
type Command interface {
	Name() string
	Synopsis() string
	Run(ctx context.Context, env *Env, args []string) error
}

var registry = map[string]func() Command{
	"filter":      func() Command { return &filterCommand{} },
	"merge":       func() Command { return &mergeCommand{} },
	"cat":         func() Command { return &catCommand{} },
	"stats":       func() Command { return &statsCommand{} },
	"reliability": func() Command { return &reliabilityCommand{} },
	"widen":       func() Command { return &widenCommand{} },
	"narrow":      func() Command { return &narrowCommand{} },
	"pivot":       func() Command { return &pivotCommand{} },
	"synth":       func() Command { return &synthCommand{} },
	"render":      func() Command { return &renderCommand{} },
	"serve":       func() Command { return &serveCommand{} },
	"json":        func() Command { return &jsonCommand{} },
	"describe":    func() Command { return &describeCommand{} },
	"config":      func() Command { return &configCommand{} },
	"help":        func() Command { return &helpCommand{} },
}

// Lookup returns a fresh instance of the named command.
func Lookup(name string) (Command, bool) {
	newCmd, ok := registry[name]
	if !ok {
		return nil, false
	}
	return newCmd(), true
}

// Names returns the registered command names in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Usage lists every command with its synopsis.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: quantab [-config file] <command> [flags] [inputs]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, name := range Names() {
		cmd, _ := Lookup(name)
		fmt.Fprintf(w, "  %-12s %s\n", name, cmd.Synopsis())
	}
}

// Run dispatches args[0] to its command.
func Run(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		Usage(env.Stderr)
		return errors.New("no command given")
	}
	cmd, ok := Lookup(args[0])
	if !ok {
		Usage(env.Stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
	if env.Sources == nil {
		env.Sources = NewSources(env.Config)
	}
	logging.GetLogger().Debug("running command", "command", cmd.Name(), "args", args[1:])
	return cmd.Run(ctx, env, args[1:])
}

func newFlagSet(env *Env, cmd Command, params string) *flag.FlagSet {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(env.Stderr, "Usage: quantab %s [flags] %s\n%s\n\nFlags:\n", cmd.Name(), params, cmd.Synopsis())
		fs.PrintDefaults()
	}
	return fs
}

// requireArgs checks the number of positional arguments; hi < 0 means no
// upper bound.
func requireArgs(fs *flag.FlagSet, lo, hi int) error {
	n := fs.NArg()
	if n < lo || (hi >= 0 && n > hi) {
		fs.Usage()
		return fmt.Errorf("%s: wrong number of arguments (%d)", fs.Name(), n)
	}
	return nil
}

func requireFlag(fs *flag.FlagSet, name, value string) error {
	if value == "" {
		fs.Usage()
		return fmt.Errorf("%s: -%s is required", fs.Name(), name)
	}
	return nil
}

// readTable reads an input table. "-" is delimited text on standard input,
// "@name" is a source named in the configuration, and anything else is a
// file path: .json files hold JSON, other files delimited text with the
// delimiter from the extension (.tsv, .txt) or the configuration.
func readTable(env *Env, path string) (*tables.Table, error) {
	if path == "-" {
		return csvimport.ImportFromReader(env.Stdin, importOptions(env, path))
	}
	var t *tables.Table
	var err error
	if name, ok := strings.CutPrefix(path, "@"); ok {
		t, err = env.Sources.LoadData(name)
	} else {
		t, err = env.Sources.Open(path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logging.WithTable(path).Debug("read table", "size", query.Describe(t))
	return t, nil
}

// writeTable writes t to path, or to standard output when path is empty
// or "-".
func writeTable(env *Env, path string, t *tables.Table) error {
	opts := importOptions(env, path)
	if path == "" || path == "-" {
		return csvimport.ExportToWriter(env.Stdout, t, opts)
	}
	if err := csvimport.ExportToFile(path, t, opts); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	logging.WithTable(path).Info("wrote table", "size", query.Describe(t))
	return nil
}

// writeBytes writes data to path, or to standard output when path is empty.
func writeBytes(env *Env, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := env.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func importOptions(env *Env, path string) csvimport.ImportOptions {
	opts := env.Config.ImportOptions()
	if path != "" && path != "-" && csvimport.OptionsForPath(path).Delimiter == '\t' {
		opts.Delimiter = '\t'
	}
	return opts
}

// listFlag is a comma-separated list flag; repeating the flag appends.
type listFlag []string

func (l *listFlag) String() string {
	return strings.Join(*l, ",")
}

func (l *listFlag) Set(v string) error {
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}
	return nil
}

// repeatedFlag collects every occurrence of a flag verbatim.
type repeatedFlag []string

func (r *repeatedFlag) String() string {
	return strings.Join(*r, " ")
}

func (r *repeatedFlag) Set(v string) error {
	*r = append(*r, v)
	return nil
}
