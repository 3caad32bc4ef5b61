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
	"time"

	"golang.org/x/exp/rand"

	"github.com/google/quantab/core/synth"
)

type synthCommand struct{}

func (c *synthCommand) Name() string { return "synth" }

func (c *synthCommand) Synopsis() string {
	return "sample synthetic field values from a reference table"
}

func (c *synthCommand) Run(ctx context.Context, env *Env, args []string) error {
	var groupBy listFlag
	var opts synth.Options
	fs := newFlagSet(env, c, "<sample>")
	output := fs.String("output", "", "output file (default stdout)")
	reference := fs.String("reference", "", "table the models are fit on")
	fields := fs.String("fields", "", `fields to synthesize, "age:scalar,sex,visits:discrete"`)
	fs.Var(&groupBy, "group", "fields selecting the reference rows of each sample row")
	fs.BoolVar(&opts.Missing, "missing", false, "reproduce the observed rate of missing values")
	seed := fs.Uint64("seed", 0, "random seed (default from the clock)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, 1); err != nil {
		return err
	}
	if err := requireFlag(fs, "reference", *reference); err != nil {
		return err
	}
	if err := requireFlag(fs, "fields", *fields); err != nil {
		return err
	}
	specs, err := synth.ParseFieldSpecs(*fields)
	if err != nil {
		return err
	}
	opts.Fields = specs
	opts.GroupBy = groupBy

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}

	sample, err := readTable(env, fs.Arg(0))
	if err != nil {
		return err
	}
	ref, err := readTable(env, *reference)
	if err != nil {
		return err
	}
	out, err := synth.Synthesize(sample, ref, opts, rand.NewSource(*seed))
	if err != nil {
		return err
	}
	return writeTable(env, *output, out)
}
