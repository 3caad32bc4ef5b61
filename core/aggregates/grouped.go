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

package aggregates

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

// StatsOptions configures GroupedStats.
type StatsOptions struct {
	// Value is the field whose values are summarized
	Value string
	// GroupBy lists the grouping fields; empty means one global group
	GroupBy []string
	// Stats lists the statistic columns in output order; empty means
	// mean, std and num
	Stats []Stat
	// Pattern names each statistic column via fmt.Sprintf(Pattern, stat);
	// it must contain exactly one %s. Empty means "%s".
	Pattern string
	// NA is the token written for undefined statistics; empty means the
	// input table's token
	NA string
}

// DefaultStats are computed when StatsOptions.Stats is empty.
var DefaultStats = []Stat{StatMean, StatStd, StatNum}

// Group is one group key and its accumulator.
type Group struct {
	Key   tables.Record
	State *Accumulator
}

// Accumulate makes a single pass over t, adding the value of field to the
// accumulator of each row's group. Groups are returned in first-seen order.
// A row whose value does not parse is skipped with a warning; its group is
// still created so that it appears in the output.
func Accumulate(t *tables.Table, field string, groupBy []string, keepSamples bool) ([]*Group, error) {
	if !t.HasField(field) {
		return nil, tables.Structuralf("stats", field, "value field does not exist")
	}
	for _, g := range groupBy {
		if !t.HasField(g) {
			return nil, tables.Structuralf("stats", g, "group field does not exist")
		}
	}

	log := logging.WithComponent("aggregates")
	var groups []*Group
	index := make(map[string]*Group)
	skipped := 0

	for key, r := range t.All() {
		groupKey := r.Select(groupBy...)
		id := groupKey.Key()
		g, ok := index[id]
		if !ok {
			g = &Group{Key: groupKey, State: NewAccumulator(keepSamples)}
			index[id] = g
			groups = append(groups, g)
		}

		v, _ := t.Get(key, field)
		x, err := values.ParseNumber(v)
		if err != nil || values.IsMissing(v, t.NA()) {
			log.Warn("skipping row: failed to parse value", "key", key, "field", field, "value", v)
			skipped++
			continue
		}
		g.State.Add(x)
	}

	if skipped > 0 {
		log.Info("statistics computed with skipped rows", "field", field, "skipped", skipped, "groups", len(groups))
	}
	return groups, nil
}

// GroupedStats summarizes opts.Value for every distinct combination of the
// opts.GroupBy fields. The output has the group fields followed by one
// column per statistic, and one row per group in first-seen order. An empty
// input yields an empty table with that schema.
func GroupedStats(t *tables.Table, opts StatsOptions) (*tables.Table, error) {
	stats := opts.Stats
	if len(stats) == 0 {
		stats = DefaultStats
	}
	names, err := statColumns(stats, opts.Pattern)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if slices.Contains(opts.GroupBy, name) {
			return nil, tables.Structuralf("stats", name, "statistic column collides with a group field")
		}
	}

	keepSamples := slices.ContainsFunc(stats, Stat.NeedsSamples)
	groups, err := Accumulate(t, opts.Value, opts.GroupBy, keepSamples)
	if err != nil {
		return nil, err
	}

	na := opts.NA
	if na == "" {
		na = t.NA()
	}

	out := tables.NewTableWithFields(append(slices.Clone(opts.GroupBy), names...)...)
	out.SetNA(na)
	for _, g := range groups {
		r := g.Key
		for i, s := range stats {
			r = r.With(names[i], g.State.Format(s, na))
		}
		out.AddRecord(r)
	}
	return out, nil
}

func statColumns(stats []Stat, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "%s"
	}
	if strings.Count(pattern, "%s") != 1 || strings.Count(pattern, "%") != 1 {
		return nil, tables.Structuralf("stats", "", "pattern %q must contain exactly one %%s", pattern)
	}

	names := make([]string, len(stats))
	seen := make(map[string]bool, len(stats))
	for i, s := range stats {
		names[i] = fmt.Sprintf(pattern, s)
		if seen[names[i]] {
			return nil, tables.Structuralf("stats", names[i], "statistic requested twice")
		}
		seen[names[i]] = true
	}
	return names, nil
}
