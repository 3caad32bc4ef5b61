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

// Package synth samples synthetic field values from empirical models fit on
// a reference table. A model is fit per group key and per field: categorical
// fields resample observed categories by frequency, scalar fields draw from
// a Gaussian with the observed mean and standard deviation, and discrete
// fields round the scalar draw.
//
// All randomness comes from the rand.Source passed in, so a fixed seed gives
// a reproducible table.
package synth

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/google/quantab/core/aggregates"
	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

// Kind selects how a field is modelled.
type Kind int

const (
	Categorical Kind = iota
	Discrete
	Scalar
)

func (k Kind) String() string {
	switch k {
	case Categorical:
		return "categorical"
	case Discrete:
		return "discrete"
	case Scalar:
		return "scalar"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "categorical", "cat":
		return Categorical, nil
	case "discrete", "int":
		return Discrete, nil
	case "scalar", "float":
		return Scalar, nil
	}
	return 0, fmt.Errorf("unknown field kind %q", s)
}

// FieldSpec names a field to synthesize and how to model it.
type FieldSpec struct {
	Name string
	Kind Kind
}

// ParseFieldSpecs parses "age:scalar,sex:categorical". A field without a
// kind is categorical.
func ParseFieldSpecs(spec string) ([]FieldSpec, error) {
	var specs []FieldSpec
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fs := FieldSpec{Name: part, Kind: Categorical}
		if i := strings.LastIndex(part, ":"); i >= 0 {
			k, err := ParseKind(part[i+1:])
			if err != nil {
				return nil, err
			}
			fs.Name, fs.Kind = part[:i], k
		}
		specs = append(specs, fs)
	}
	return specs, nil
}

// Options configures Synthesize.
type Options struct {
	// GroupBy lists the fields that select the reference subset for each
	// sample row; empty means the whole reference table
	GroupBy []string
	// Fields lists the fields to synthesize
	Fields []FieldSpec
	// Missing makes the synthesized data reproduce the observed rate of
	// missing values
	Missing bool
	// NA is the token written for missing values; empty means the sample's
	NA string
}

// model is the fitted distribution of one field within one group
type model struct {
	kind        Kind
	present     int64
	missingRate float64

	categories []string
	cdf        []float64

	mean float64
	std  float64
}

func fit(ref *tables.Table, keys []int, fs FieldSpec) *model {
	m := &model{kind: fs.Kind}
	counts := aggregates.NewCounter()
	acc := aggregates.NewAccumulator(false)
	missing := 0

	for _, key := range keys {
		v, ok := ref.Get(key, fs.Name)
		if !ok || values.IsMissing(v, ref.NA()) {
			missing++
			continue
		}
		if fs.Kind == Categorical {
			counts.Add(v)
			continue
		}
		x, err := values.ParseNumber(v)
		if err != nil {
			// not a number, counts as missing
			missing++
			continue
		}
		acc.Add(x)
	}
	if len(keys) > 0 {
		m.missingRate = float64(missing) / float64(len(keys))
	}

	if fs.Kind == Categorical {
		m.present = counts.Total
		m.categories = counts.Values()
		m.cdf = make([]float64, len(m.categories))
		var cum int64
		for i, c := range m.categories {
			cum += counts.Count(c)
			m.cdf[i] = float64(cum) / float64(counts.Total)
		}
		return m
	}

	m.present = acc.Count
	m.mean = acc.Mean()
	m.std = acc.Std()
	if math.IsNaN(m.std) {
		m.std = 0
	}
	return m
}

func (m *model) sample(rng *rand.Rand, src rand.Source, missing bool, na string) string {
	if missing && m.missingRate > 0 && rng.Float64() < m.missingRate {
		return na
	}
	if m.present == 0 {
		return na
	}

	switch m.kind {
	case Categorical:
		u := rng.Float64()
		for i, p := range m.cdf {
			if u < p {
				return m.categories[i]
			}
		}
		return m.categories[len(m.categories)-1]
	default:
		x := distuv.Normal{Mu: m.mean, Sigma: m.std, Src: src}.Rand()
		if m.kind == Discrete {
			x = math.Round(x)
		}
		return values.FormatNumber(x, na)
	}
}

// Synthesize returns a copy of sample in which every field of opts.Fields is
// replaced with a value drawn from the model fit on the reference rows that
// share the sample row's group key. A group with no present reference value
// yields the NA token. sample and reference are not modified.
func Synthesize(sample, reference *tables.Table, opts Options, src rand.Source) (*tables.Table, error) {
	if src == nil {
		return nil, fmt.Errorf("synth: nil random source")
	}
	if len(opts.Fields) == 0 {
		return nil, tables.Structuralf("synth", "", "no fields to synthesize")
	}
	for _, g := range opts.GroupBy {
		if !sample.HasField(g) {
			return nil, tables.Structuralf("synth", g, "group field missing from sample")
		}
		if !reference.HasField(g) {
			return nil, tables.Structuralf("synth", g, "group field missing from reference")
		}
	}
	for _, fs := range opts.Fields {
		if !reference.HasField(fs.Name) {
			return nil, tables.Structuralf("synth", fs.Name, "field missing from reference")
		}
	}

	na := opts.NA
	if na == "" {
		na = sample.NA()
	}

	// reference keys per group
	groups := make(map[string][]int)
	for key, r := range reference.All() {
		id := r.Select(opts.GroupBy...).Key()
		groups[id] = append(groups[id], key)
	}

	log := logging.WithComponent("synth")
	models := make(map[string][]*model)
	rng := rand.New(src)

	out := sample.Copy()
	for _, fs := range opts.Fields {
		out.WithField(fs.Name)
	}

	for key, r := range sample.All() {
		id := r.Select(opts.GroupBy...).Key()
		ms, ok := models[id]
		if !ok {
			keys := groups[id]
			if len(keys) == 0 {
				log.Warn("no reference rows for group", "group", r.Select(opts.GroupBy...).String())
			}
			ms = make([]*model, len(opts.Fields))
			for i, fs := range opts.Fields {
				ms[i] = fit(reference, keys, fs)
			}
			models[id] = ms
		}
		for i, fs := range opts.Fields {
			// key comes from sample, which out copies
			_ = out.Set(key, fs.Name, ms[i].sample(rng, src, opts.Missing, na))
		}
	}

	log.Debug("synthesized table", "rows", out.NumRecords(), "groups", len(models))
	return out, nil
}
