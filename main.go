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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/quantab/commands"
	"github.com/google/quantab/core/config"
	"github.com/google/quantab/core/logging"
)

func main() {
	configPath := flag.String("config", "quantab.yaml", "configuration file; defaults apply when it is absent")
	logLevel := flag.String("log-level", "", "override the configured log level (DEBUG, INFO, WARN, ERROR)")
	flag.Usage = func() {
		commands.Usage(os.Stderr)
		fmt.Fprintln(os.Stderr, "\nGlobal flags:")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := logging.Init(cfg.LoggingConfig()); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	env := commands.NewEnv(cfg)
	env.Sources.SetBaseDir(filepath.Dir(*configPath))
	err = commands.Run(ctx, env, flag.Args())
	stop()
	logging.Close()

	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "quantab: %v\n", err)
		os.Exit(1)
	}
}
