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

// Package batch runs one whole table pipeline per input in parallel. Each
// task owns the tables it builds; results are published only after a task
// finishes, so no table is shared between goroutines.
package batch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/tables"
)

// Task processes one input and returns its result table.
type Task func(ctx context.Context, input string) (*tables.Table, error)

// Results maps each input to its result table.
type Results struct {
	mu     sync.Mutex
	tables map[string]*tables.Table
}

func (r *Results) put(input string, t *tables.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[input] = t
}

// Get returns the result for input.
func (r *Results) Get(input string) (*tables.Table, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[input]
	return t, ok
}

// Len returns the number of results.
func (r *Results) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tables)
}

// Ordered returns the results in the order of inputs, skipping inputs
// without a result.
func (r *Results) Ordered(inputs []string) []*tables.Table {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*tables.Table, 0, len(inputs))
	for _, in := range inputs {
		if t, ok := r.tables[in]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Run calls task for every input with at most workers goroutines (one
// when workers is not positive). The first error cancels the context passed
// to the remaining tasks and is returned, wrapped with its input.
func Run(ctx context.Context, inputs []string, workers int, task Task) (*Results, error) {
	if workers <= 0 {
		workers = 1
	}
	results := &Results{tables: make(map[string]*tables.Table, len(inputs))}
	log := logging.WithComponent("batch")

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := task(ctx, input)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			results.put(input, t)
			log.Debug("task finished", "input", input, "rows", t.NumRecords())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
