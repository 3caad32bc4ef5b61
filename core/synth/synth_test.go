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

package synth

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/google/quantab/core/aggregates"
	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/tables"
)

func init() {
	logging.Discard()
}

func reference() *tables.Table {
	t := tables.NewTableWithFields("site", "sex", "age", "visits")
	rows := [][]string{
		{"A", "f", "30", "1"},
		{"A", "f", "30", "2"},
		{"A", "f", "30", "NA"},
		{"A", "m", "30", "1"},
		{"B", "m", "50", "4"},
		{"B", "m", "70", "NA"},
	}
	for _, r := range rows {
		t.AddRecord(tables.NewRecord("site", r[0], "sex", r[1], "age", r[2], "visits", r[3]))
	}
	return t
}

func sample(n int, sites ...string) *tables.Table {
	t := tables.NewTableWithFields("site")
	for i := 0; i < n; i++ {
		t.AddRecord(tables.NewRecord("site", sites[i%len(sites)]))
	}
	return t
}

func TestParseFieldSpecs(t *testing.T) {
	specs, err := ParseFieldSpecs("age:scalar, sex ,visits:discrete")
	require.NoError(t, err)
	require.Equal(t, []FieldSpec{{"age", Scalar}, {"sex", Categorical}, {"visits", Discrete}}, specs)

	_, err = ParseFieldSpecs("age:gamma")
	require.Error(t, err)
}

func TestSynthesizeCategoricalFrequencies(t *testing.T) {
	out, err := Synthesize(sample(4000, "A"), reference(), Options{
		GroupBy: []string{"site"},
		Fields:  []FieldSpec{{"sex", Categorical}},
	}, rand.NewSource(1))
	require.NoError(t, err)

	counts := aggregates.NewCounter()
	for key := range out.All() {
		counts.Add(out.Value(key, "sex"))
	}
	require.Equal(t, []string{"f", "m"}, counts.Values())
	require.InDelta(t, 0.75, float64(counts.Count("f"))/4000, 0.03)
}

func TestSynthesizeScalar(t *testing.T) {
	out, err := Synthesize(sample(3, "A"), reference(), Options{
		GroupBy: []string{"site"},
		Fields:  []FieldSpec{{"age", Scalar}},
	}, rand.NewSource(2))
	require.NoError(t, err)
	// every reference age of site A is 30, so std is zero
	for key := range out.All() {
		require.Equal(t, "30", out.Value(key, "age"))
	}

	out, err = Synthesize(sample(5000, "B"), reference(), Options{
		GroupBy: []string{"site"},
		Fields:  []FieldSpec{{"age", Scalar}},
	}, rand.NewSource(3))
	require.NoError(t, err)
	acc := aggregates.NewAccumulator(false)
	for key := range out.All() {
		x, err := strconv.ParseFloat(out.Value(key, "age"), 64)
		require.NoError(t, err)
		acc.Add(x)
	}
	require.InDelta(t, 60, acc.Mean(), 1)
	require.InDelta(t, math.Sqrt(200), acc.Std(), 1)
}

func TestSynthesizeDiscreteRounds(t *testing.T) {
	out, err := Synthesize(sample(200, "A"), reference(), Options{
		GroupBy: []string{"site"},
		Fields:  []FieldSpec{{"visits", Discrete}},
	}, rand.NewSource(4))
	require.NoError(t, err)
	for key := range out.All() {
		_, err := strconv.Atoi(out.Value(key, "visits"))
		require.NoError(t, err, "value %q", out.Value(key, "visits"))
	}
}

func TestSynthesizeMissingRate(t *testing.T) {
	opts := Options{
		GroupBy: []string{"site"},
		Fields:  []FieldSpec{{"visits", Scalar}},
		Missing: true,
		NA:      "-",
	}
	out, err := Synthesize(sample(4000, "B"), reference(), opts, rand.NewSource(5))
	require.NoError(t, err)
	missing := 0
	for key := range out.All() {
		if out.Value(key, "visits") == "-" {
			missing++
		}
	}
	require.InDelta(t, 0.5, float64(missing)/4000, 0.03)

	opts.Missing = false
	out, err = Synthesize(sample(500, "B"), reference(), opts, rand.NewSource(5))
	require.NoError(t, err)
	for key := range out.All() {
		require.Equal(t, "4", out.Value(key, "visits"))
	}
}

func TestSynthesizeUnknownGroup(t *testing.T) {
	out, err := Synthesize(sample(2, "Z"), reference(), Options{
		GroupBy: []string{"site"},
		Fields:  []FieldSpec{{"sex", Categorical}, {"age", Scalar}},
	}, rand.NewSource(6))
	require.NoError(t, err)
	for key := range out.All() {
		require.Equal(t, "NA", out.Value(key, "sex"))
		require.Equal(t, "NA", out.Value(key, "age"))
	}
}

func TestSynthesizeDeterministicAndPure(t *testing.T) {
	in := sample(50, "A", "B")
	ref := reference()
	opts := Options{
		GroupBy: []string{"site"},
		Fields:  []FieldSpec{{"sex", Categorical}, {"age", Scalar}, {"visits", Discrete}},
		Missing: true,
	}

	a, err := Synthesize(in, ref, opts, rand.NewSource(42))
	require.NoError(t, err)
	b, err := Synthesize(in, ref, opts, rand.NewSource(42))
	require.NoError(t, err)

	ra, rb := a.Records(), b.Records()
	require.Len(t, ra, 50)
	for i := range ra {
		require.True(t, ra[i].Equal(rb[i]), "row %d differs", i)
	}

	require.Equal(t, []string{"site"}, in.Fields())
	require.Equal(t, []string{"site", "sex", "age", "visits"}, a.Fields())
	require.Equal(t, 6, ref.NumRecords())
}

func TestSynthesizeErrors(t *testing.T) {
	ref := reference()
	_, err := Synthesize(sample(1, "A"), ref, Options{Fields: []FieldSpec{{"height", Scalar}}}, rand.NewSource(1))
	require.True(t, errors.Is(err, tables.ErrStructural))

	_, err = Synthesize(sample(1, "A"), ref, Options{GroupBy: []string{"sex"}, Fields: []FieldSpec{{"age", Scalar}}}, rand.NewSource(1))
	require.True(t, errors.Is(err, tables.ErrStructural))

	_, err = Synthesize(sample(1, "A"), ref, Options{Fields: []FieldSpec{{"age", Scalar}}}, nil)
	require.Error(t, err)
}
