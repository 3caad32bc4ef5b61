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
	"fmt"
	"net/http"
	"time"

	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/server"
	"github.com/google/quantab/core/tables"
)

// serveCommand serves tables as HTML until the context is cancelled.
type serveCommand struct{}

func (c *serveCommand) Name() string { return "serve" }

func (c *serveCommand) Synopsis() string { return "browse tables in a web browser" }

func (c *serveCommand) Run(ctx context.Context, env *Env, args []string) error {
	fs := newFlagSet(env, c, "<input>...")
	addr := fs.String("addr", "127.0.0.1:8097", "listen address")
	title := fs.String("title", "quantab", "landing page title")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireArgs(fs, 1, -1); err != nil {
		return err
	}
	for _, in := range fs.Args() {
		if in == "-" {
			return fmt.Errorf("serve: standard input cannot be served")
		}
	}

	source := server.TableSourceFunc(func(name string) (*tables.Table, error) {
		return readTable(env, name)
	})
	srv, err := server.NewServer(*title, fs.Args(), source)
	if err != nil {
		return err
	}
	return listenAndServe(ctx, &http.Server{Addr: *addr, Handler: srv.Handler()})
}

func listenAndServe(ctx context.Context, hs *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		logging.GetLogger().Info("serving", "addr", hs.Addr)
		errc <- hs.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
