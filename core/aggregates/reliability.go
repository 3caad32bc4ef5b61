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
	"math"

	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

// ReliabilityOptions configures Reliability.
type ReliabilityOptions struct {
	ID    string // subject identifier field
	Group string // measurement group field, e.g. a region
	Value string // measured value field
	NA    string // token for undefined results; empty means the input's token
}

// ReliabilityFields are the output fields of Reliability.
var ReliabilityFields = []string{"group", "num", "within", "between", "icc", "rmse"}

// ICC holds the reliability of one group.
type ICC struct {
	Num     int64   // number of subjects with at least one parsed value
	Within  float64 // mean of per-subject variances
	Between float64 // sample variance of per-subject means
	ICC     float64 // (between-within)/(between+within)
	RMSE    float64 // sqrt(within)
}

// ComputeICC derives the reliability from per-subject accumulators. Subjects
// with a single measurement have no variance and do not contribute to
// within. A zero or undefined denominator gives a NaN ICC.
func ComputeICC(subjects []*Accumulator) ICC {
	within := NewAccumulator(false)
	between := NewAccumulator(false)
	var num int64
	for _, s := range subjects {
		if s.Count == 0 {
			continue
		}
		num++
		between.Add(s.Mean())
		if v := s.Variance(); !math.IsNaN(v) {
			within.Add(v)
		}
	}

	r := ICC{
		Num:     num,
		Within:  within.Mean(),
		Between: between.Variance(),
	}
	r.RMSE = math.Sqrt(r.Within)

	denom := r.Between + r.Within
	if denom == 0 || math.IsNaN(denom) {
		r.ICC = math.NaN()
	} else {
		r.ICC = (r.Between - r.Within) / denom
	}
	return r
}

// Reliability computes the intraclass correlation of repeated measurements.
// Values are first summarized per (id, group); the per-subject means and
// variances are then combined per group. One row per group is returned in
// first-seen order.
func Reliability(t *tables.Table, opts ReliabilityOptions) (*tables.Table, error) {
	if opts.ID == "" || opts.Group == "" || opts.Value == "" {
		return nil, tables.Structuralf("reliability", "", "id, group and value fields are required")
	}

	fine, err := Accumulate(t, opts.Value, []string{opts.ID, opts.Group}, false)
	if err != nil {
		return nil, err
	}

	var order []string
	byGroup := make(map[string][]*Accumulator)
	for _, g := range fine {
		name, _ := g.Key.Get(opts.Group)
		if _, ok := byGroup[name]; !ok {
			order = append(order, name)
		}
		byGroup[name] = append(byGroup[name], g.State)
	}

	na := opts.NA
	if na == "" {
		na = t.NA()
	}

	out := tables.NewTableWithFields(ReliabilityFields...)
	out.SetNA(na)
	for _, name := range order {
		r := ComputeICC(byGroup[name])
		out.AddRecord(tables.NewRecord(
			"group", name,
			"num", values.FormatInt(int(r.Num)),
			"within", values.FormatNumber(r.Within, na),
			"between", values.FormatNumber(r.Between, na),
			"icc", values.FormatNumber(r.ICC, na),
			"rmse", values.FormatNumber(r.RMSE, na),
		))
	}
	return out, nil
}
