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
	"errors"
	"flag"

	"github.com/google/quantab/core/config"
)

// configCommand writes the effective configuration, which is the default
// configuration when no file was loaded.
type configCommand struct{}

func (c *configCommand) Name() string { return "config" }

func (c *configCommand) Synopsis() string { return "write the effective configuration as YAML" }

func (c *configCommand) Run(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, c, "")
	output := fs.String("output", "", "output file (default stdout)")
	defaults := fs.Bool("defaults", false, "write the built-in defaults instead")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 0, 0); err != nil {
		return err
	}

	cfg := env.Config
	if *defaults {
		cfg = config.DefaultConfig()
	}
	if *output == "" || *output == "-" {
		return config.WriteConfig(env.Stdout, cfg)
	}
	return config.SaveConfig(cfg, *output)
}

type helpCommand struct{}

func (c *helpCommand) Name() string { return "help" }

func (c *helpCommand) Synopsis() string { return "list the commands, or show the flags of one" }

func (c *helpCommand) Run(ctx context.Context, env *Env, args []string) error {
	if len(args) == 0 {
		Usage(env.Stdout)
		return nil
	}
	cmd, ok := Lookup(args[0])
	if !ok {
		Usage(env.Stdout)
		return nil
	}
	// -h prints the command's usage without running it
	saved := env.Stderr
	env.Stderr = env.Stdout
	defer func() { env.Stderr = saved }()
	err := cmd.Run(ctx, env, []string{"-h"})
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}
