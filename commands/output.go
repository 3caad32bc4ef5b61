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

package commands

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/quantab/core/jsonexport"
	"github.com/google/quantab/core/query"
	"github.com/google/quantab/core/rendering"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/views"
)

// renderCommand renders tables as HTML or as a terminal table. Several
// inputs in HTML form produce a landing page linking one page per input,
// written next to the landing page.
type renderCommand struct{}

func (c *renderCommand) Name() string { return "render" }

func (c *renderCommand) Synopsis() string { return "render tables as HTML or text" }

func (c *renderCommand) Run(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, c, "<input>...")
	output := fs.String("output", "", "output file (default stdout)")
	format := fs.String("format", "text", "html or text")
	title := fs.String("title", "", "page title (default the input path)")
	limit := fs.Int("limit", 0, "render at most n rows (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, -1); err != nil {
		return err
	}

	inputs := make([]*tables.Table, 0, fs.NArg())
	for _, path := range fs.Args() {
		t, err := readTable(env, path)
		if err != nil {
			return err
		}
		inputs = append(inputs, t)
	}

	switch *format {
	case "text":
		var buf bytes.Buffer
		for i, t := range inputs {
			if len(inputs) > 1 {
				fmt.Fprintf(&buf, "%s\n", fs.Arg(i))
			}
			buf.WriteString(rendering.RenderText(t, *limit))
			buf.WriteString("\n")
		}
		return writeBytes(env, *output, buf.Bytes())
	case "html":
		renderer, err := rendering.NewTableRenderer()
		if err != nil {
			return fmt.Errorf("failed to create renderer: %w", err)
		}
		if len(inputs) == 1 {
			name := *title
			if name == "" {
				name = fs.Arg(0)
			}
			return writeRendered(env, *output, func(w io.Writer) error {
				return renderer.RenderTable(w, name, inputs[0], query.Pipeline{}, *limit)
			})
		}
		return renderLanding(env, renderer, *output, *title, fs.Args(), inputs, *limit)
	default:
		return fmt.Errorf("render: unknown format %q", *format)
	}
}

func renderLanding(env *Env, renderer *rendering.TableRenderer, output, title string, names []string, ts []*tables.Table, limit int) error {
	if output == "" || output == "-" {
		return fmt.Errorf("render: -output is required for several html inputs")
	}
	if title == "" {
		title = "quantab"
	}
	dir := filepath.Dir(output)
	pages := make([]string, len(names))
	for i, name := range names {
		pages[i] = fmt.Sprintf("table_%d.html", i)
		path := filepath.Join(dir, pages[i])
		err := writeRendered(env, path, func(w io.Writer) error {
			return renderer.RenderTable(w, name, ts[i], query.Pipeline{}, limit)
		})
		if err != nil {
			return err
		}
	}
	vm := views.BuildLandingViewModel(title, names, ts)
	for i := range vm.Tables {
		vm.Tables[i].URL = views.PageURL(pages[i])
	}
	return writeRendered(env, output, func(w io.Writer) error {
		return renderer.RenderLanding(w, vm)
	})
}

func writeRendered(env *Env, path string, render func(io.Writer) error) error {
	if path == "" || path == "-" {
		return render(env.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// jsonCommand converts between delimited tables and JSON arrays of objects.
type jsonCommand struct{}

func (c *jsonCommand) Name() string { return "json" }

func (c *jsonCommand) Synopsis() string { return "convert a table to JSON, or JSON back to a table" }

func (c *jsonCommand) Run(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, c, "<input>")
	output := fs.String("output", "", "output file (default stdout)")
	multiline := fs.Bool("multiline", false, "indent the JSON output")
	decode := fs.Bool("decode", false, "read a JSON array of objects and write a table")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, 1); err != nil {
		return err
	}

	if *decode {
		data, err := readInput(env, fs.Arg(0))
		if err != nil {
			return err
		}
		t, err := jsonexport.Unmarshal(data)
		if err != nil {
			return fmt.Errorf("%s: %w", fs.Arg(0), err)
		}
		t.SetNA(env.Config.NA)
		return writeTable(env, *output, t)
	}

	t, err := readTable(env, fs.Arg(0))
	if err != nil {
		return err
	}
	data, err := jsonexport.Marshal(t, *multiline)
	if err != nil {
		return err
	}
	return writeBytes(env, *output, append(data, '\n'))
}

func readInput(env *Env, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(env.Stdin)
	}
	return os.ReadFile(path)
}
