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

	"github.com/google/quantab/core/reshape"
	"github.com/google/quantab/core/tables"
)

type mergeCommand struct{}

func (c *mergeCommand) Name() string { return "merge" }

func (c *mergeCommand) Synopsis() string { return "inner join two tables on a key field" }

func (c *mergeCommand) Run(ctx context.Context, env *Env, args []string) error {
	var opts reshape.MergeOptions
	fs := newFlagSet(env, c, "<left> <right>")
	output := fs.String("output", "", "output file (default stdout)")
	fs.StringVar(&opts.Field, "field", "", "key field of both tables")
	fs.StringVar(&opts.LeftField, "left-field", "", "key field of the left table")
	fs.StringVar(&opts.RightField, "right-field", "", "key field of the right table")
	fs.StringVar(&opts.LeftPrefix, "left-prefix", "", "prefix for left fields")
	fs.StringVar(&opts.LeftPostfix, "left-postfix", "", "postfix for left fields")
	fs.StringVar(&opts.RightPrefix, "right-prefix", "", "prefix for right fields")
	fs.StringVar(&opts.RightPostfix, "right-postfix", "", "postfix for right fields")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 2, 2); err != nil {
		return err
	}
	if opts.LeftField == "" && opts.RightField == "" {
		if err := requireFlag(fs, "field", opts.Field); err != nil {
			return err
		}
	}

	left, err := readTable(env, fs.Arg(0))
	if err != nil {
		return err
	}
	right, err := readTable(env, fs.Arg(1))
	if err != nil {
		return err
	}
	out, err := reshape.Merge(left, right, opts)
	if err != nil {
		return err
	}
	return writeTable(env, *output, out)
}

type catCommand struct{}

func (c *catCommand) Name() string { return "cat" }

func (c *catCommand) Synopsis() string { return "stack the rows of several tables" }

func (c *catCommand) Run(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, c, "<input>...")
	output := fs.String("output", "", "output file (default stdout)")
	outer := fs.Bool("outer", false, "keep the union of the fields instead of the intersection")
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
	return writeTable(env, *output, reshape.ConcatenateAll(*outer, inputs...))
}

type widenCommand struct{}

func (c *widenCommand) Name() string { return "widen" }

func (c *widenCommand) Synopsis() string { return "convert a long table to a wide one" }

func (c *widenCommand) Run(ctx context.Context, env *Env, args []string) error {
	var opts reshape.WidenOptions
	var valueFields, include, exclude listFlag
	fs := newFlagSet(env, c, "<input>")
	output := fs.String("output", "", "output file (default stdout)")
	fs.StringVar(&opts.Name, "name", "name", "field whose values become columns")
	fs.Var(&valueFields, "value", "fields whose values fill the columns (default value)")
	fs.Var(&include, "include", "regexps of fields to keep in the row key")
	fs.Var(&exclude, "exclude", "regexps of fields to drop from the row key")
	fs.StringVar(&opts.Pattern, "pattern", "%s_%s", "column name pattern for several value fields")
	fs.StringVar(&opts.NA, "na", "", "value of missing combinations (default the NA token)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, 1); err != nil {
		return err
	}
	if len(valueFields) == 0 {
		valueFields = listFlag{"value"}
	}
	opts.Values, opts.Include, opts.Exclude = valueFields, include, exclude

	t, err := readTable(env, fs.Arg(0))
	if err != nil {
		return err
	}
	out, err := reshape.Widen(t, opts)
	if err != nil {
		return err
	}
	return writeTable(env, *output, out)
}

type narrowCommand struct{}

func (c *narrowCommand) Name() string { return "narrow" }

func (c *narrowCommand) Synopsis() string { return "convert a wide table to a long one" }

func (c *narrowCommand) Run(ctx context.Context, env *Env, args []string) error {
	var opts reshape.NarrowOptions
	var keys listFlag
	fs := newFlagSet(env, c, "<input>")
	output := fs.String("output", "", "output file (default stdout)")
	fs.Var(&keys, "keys", "fields copied to every output row")
	fs.StringVar(&opts.Name, "name", "name", "output field holding the column name")
	fs.StringVar(&opts.Value, "value", "value", "output field holding the cell value")
	fs.BoolVar(&opts.DropNA, "dropna", false, "skip missing cells")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, 1); err != nil {
		return err
	}
	opts.Keys = keys

	t, err := readTable(env, fs.Arg(0))
	if err != nil {
		return err
	}
	out, err := reshape.Narrow(t, opts)
	if err != nil {
		return err
	}
	return writeTable(env, *output, out)
}

type pivotCommand struct{}

func (c *pivotCommand) Name() string { return "pivot" }

func (c *pivotCommand) Synopsis() string { return "turn (left, right, value) pairs into a square matrix" }

func (c *pivotCommand) Run(ctx context.Context, env *Env, args []string) error {
	var opts reshape.PivotOptions
	fs := newFlagSet(env, c, "<input>")
	output := fs.String("output", "", "output file (default stdout)")
	fs.StringVar(&opts.Left, "left", "left", "first id of each pair")
	fs.StringVar(&opts.Right, "right", "right", "second id of each pair")
	fs.StringVar(&opts.Value, "value", "value", "pair value")
	fs.StringVar(&opts.IDField, "id", "id", "name of the row label field")
	fs.StringVar(&opts.Default, "default", "0", "value of missing pairs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, 1); err != nil {
		return err
	}

	t, err := readTable(env, fs.Arg(0))
	if err != nil {
		return err
	}
	out, err := reshape.PivotDistance(t, opts)
	if err != nil {
		return err
	}
	return writeTable(env, *output, out)
}
