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
	"context"
	"fmt"

	"github.com/google/quantab/core/query"
)

// filterCommand runs the transform pipeline over one table. Flags that are
// not given fall back to the pipeline section of the configuration.
type filterCommand struct{}

func (c *filterCommand) Name() string { return "filter" }

func (c *filterCommand) Synopsis() string {
	return "rename, retain, remove, sort, unique, constant, cat and where over one table"
}

func (c *filterCommand) Run(ctx context.Context, env *Env, args []string) error {
	p := env.Config.QueryPipeline()

	fs := newFlagSet(env, c, "<input>")
	output := fs.String("output", "", "output file (default stdout)")
	fs.BoolVar(&p.Dempty, "dempty", p.Dempty, "drop fields with an empty name")
	fs.StringVar(&p.Rename, "rename", p.Rename, `rename fields, "new=old,new2=old2"`)
	fs.StringVar(&p.Retain, "retain", p.Retain, "comma-separated regexps of fields to keep")
	fs.StringVar(&p.Remove, "remove", p.Remove, "comma-separated regexps of fields to drop")
	fs.StringVar(&p.Sort, "sort", p.Sort, `sort keys, "a,#b,^#c" (# numeric, ^ descending)`)
	fs.StringVar(&p.Unique, "unique", p.Unique, "keep the first row per value of these fields")
	fs.StringVar(&p.Constant, "constant", p.Constant, `add constant fields, "f=v,f2=v2"`)
	var cats repeatedFlag
	fs.Var(&cats, "cat", `add a concatenated field, "new=%{a}_%{b}" (repeatable)`)
	fs.StringVar(&p.Where, "where", p.Where, "keep rows for which the expression holds")
	fs.IntVar(&p.Limit, "limit", p.Limit, "keep the first n rows (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, 1); err != nil {
		return err
	}
	if len(cats) > 0 {
		p.Cat = cats
	}

	t, err := readTable(env, fs.Arg(0))
	if err != nil {
		return err
	}
	out, err := query.Apply(t, p)
	if err != nil {
		return fmt.Errorf("filter %s: %w", fs.Arg(0), err)
	}
	return writeTable(env, *output, out)
}

// describeCommand prints the fields and size of each input.
type describeCommand struct{}

func (c *describeCommand) Name() string { return "describe" }

func (c *describeCommand) Synopsis() string { return "print the size and fields of tables" }

func (c *describeCommand) Run(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, c, "<input>...")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, -1); err != nil {
		return err
	}
	for _, path := range fs.Args() {
		t, err := readTable(env, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(env.Stdout, "%s: %s\n", path, query.Describe(t))
		for i, f := range t.Fields() {
			fmt.Fprintf(env.Stdout, "  %d\t%s\n", i, f)
		}
	}
	return nil
}
