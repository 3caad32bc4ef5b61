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
	"strings"

	"github.com/google/quantab/core/aggregates"
	"github.com/google/quantab/core/batch"
	"github.com/google/quantab/core/reshape"
	"github.com/google/quantab/core/tables"
)

// statsCommand computes grouped statistics. Several inputs are processed
// in parallel, one table per task, and stacked in input order.
type statsCommand struct{}

func (c *statsCommand) Name() string { return "stats" }

func (c *statsCommand) Synopsis() string { return "grouped statistics of a value field" }

func (c *statsCommand) Run(ctx context.Context, env *Env, args []string) error {
	var groupBy listFlag
	fs := newFlagSet(env, c, "<input>...")
	output := fs.String("output", "", "output file (default stdout)")
	value := fs.String("value", "", "field to summarize")
	fs.Var(&groupBy, "group", "grouping fields")
	statList := fs.String("stats", strings.Join(env.Config.Stats.Stats, ","),
		"statistics, any of "+statNames())
	pattern := fs.String("pattern", env.Config.Stats.Pattern, "statistic column name pattern")
	source := fs.String("source", "", "if set, add a field of this name holding the input path")
	workers := fs.Int("workers", env.Config.Workers, "inputs processed in parallel")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, -1); err != nil {
		return err
	}
	if err := requireFlag(fs, "value", *value); err != nil {
		return err
	}
	stats, err := aggregates.ParseStats(*statList)
	if err != nil {
		return err
	}
	opts := aggregates.StatsOptions{
		Value:   *value,
		GroupBy: groupBy,
		Stats:   stats,
		Pattern: *pattern,
	}

	inputs := fs.Args()
	results, err := batch.Run(ctx, inputs, *workers, func(ctx context.Context, input string) (*tables.Table, error) {
		t, err := readTable(env, input)
		if err != nil {
			return nil, err
		}
		out, err := aggregates.GroupedStats(t, opts)
		if err != nil {
			return nil, err
		}
		if *source != "" {
			if err := addSource(out, *source, input); err != nil {
				return nil, err
			}
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	return writeTable(env, *output, reshape.ConcatenateAll(false, results.Ordered(inputs)...))
}

func addSource(t *tables.Table, field, input string) error {
	if t.HasField(field) {
		return tables.Structuralf("stats", field, "field already exists")
	}
	t.WithField(field)
	for _, key := range t.Keys() {
		if err := t.Set(key, field, input); err != nil {
			return err
		}
	}
	return nil
}

func statNames() string {
	names := make([]string, len(aggregates.AllStats))
	for i, s := range aggregates.AllStats {
		names[i] = string(s)
	}
	return strings.Join(names, ",")
}

type reliabilityCommand struct{}

func (c *reliabilityCommand) Name() string { return "reliability" }

func (c *reliabilityCommand) Synopsis() string {
	return "intraclass correlation of repeated measurements per group"
}

func (c *reliabilityCommand) Run(ctx context.Context, env *Env, args []string) error {
	var opts aggregates.ReliabilityOptions
	fs := newFlagSet(env, c, "<input>")
	output := fs.String("output", "", "output file (default stdout)")
	fs.StringVar(&opts.ID, "id", "id", "subject identifier field")
	fs.StringVar(&opts.Group, "group", "group", "measurement group field")
	fs.StringVar(&opts.Value, "value", "value", "measured value field")
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
	out, err := aggregates.Reliability(t, opts)
	if err != nil {
		return fmt.Errorf("reliability %s: %w", fs.Arg(0), err)
	}
	return writeTable(env, *output, out)
}
