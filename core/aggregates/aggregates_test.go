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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/google/quantab/core/logging"
	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

func init() {
	logging.Discard()
}

func valueTable(field string, vals ...string) *tables.Table {
	t := tables.NewTableWithFields(field)
	for _, v := range vals {
		t.AddRecord(tables.NewRecord(field, v))
	}
	return t
}

func TestAccumulatorBasics(t *testing.T) {
	a := NewAccumulator(true)
	for _, x := range []float64{1, 2, 3, 4} {
		a.Add(x)
	}

	require.Equal(t, 2.5, a.Mean())
	require.Equal(t, int64(4), a.Count)
	require.Equal(t, 10.0, a.Sum)
	require.Equal(t, 1.0, a.Min)
	require.Equal(t, 4.0, a.Max)

	// sample: sum of squared deviations 5 over n-1
	require.InDelta(t, 5.0/3.0, a.Variance(), 1e-12)
	require.InDelta(t, math.Sqrt(5.0/3.0), a.Std(), 1e-9)
	// population: 5 over n
	require.InDelta(t, 1.25, a.PopVariance(), 1e-12)

	require.InDelta(t, a.Std()/2, a.Stde(), 1e-12)
	require.InDelta(t, a.Std()/2.5, a.CV(), 1e-12)
	require.Equal(t, 2.5, a.Median())
	require.Equal(t, 1.0, a.MAD())
}

func TestVarianceMatchesTwoPass(t *testing.T) {
	data := []float64{1e9 + 4, 1e9 + 7, 1e9 + 13, 1e9 + 16, 0.5, -3.25, 42}
	a := NewAccumulator(false)
	for _, x := range data {
		a.Add(x)
	}
	require.InEpsilon(t, stat.Variance(data, nil), a.Variance(), 1e-9)
	require.InEpsilon(t, stat.Mean(data, nil), a.Mean(), 1e-12)
}

func TestAccumulatorCombine(t *testing.T) {
	data := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	whole := NewAccumulator(true)
	left, right := NewAccumulator(true), NewAccumulator(true)
	for i, x := range data {
		whole.Add(x)
		if i < 4 {
			left.Add(x)
		} else {
			right.Add(x)
		}
	}
	left.Combine(right)

	require.Equal(t, whole.Count, left.Count)
	require.InDelta(t, whole.Mean(), left.Mean(), 1e-12)
	require.InDelta(t, whole.Variance(), left.Variance(), 1e-12)
	require.Equal(t, whole.Min, left.Min)
	require.Equal(t, whole.Max, left.Max)
	require.Equal(t, whole.Median(), left.Median())

	empty := NewAccumulator(true)
	empty.Combine(whole)
	require.InDelta(t, whole.Variance(), empty.Variance(), 1e-12)
	require.Equal(t, whole.Median(), empty.Median())
}

func TestAccumulatorDegenerate(t *testing.T) {
	a := NewAccumulator(true)
	for _, s := range AllStats {
		if s == StatNum {
			require.Equal(t, 0.0, a.Value(s))
			continue
		}
		require.True(t, math.IsNaN(a.Value(s)), "stat %s of no values", s)
	}
	require.Equal(t, "NA", a.Format(StatMean, "NA"))
	require.Equal(t, "0", a.Format(StatNum, "NA"))

	a.Add(5)
	require.True(t, math.IsNaN(a.Variance()), "variance of one value")

	zero := NewAccumulator(false)
	zero.Add(-1)
	zero.Add(1)
	require.True(t, math.IsNaN(zero.CV()), "cv with zero mean")
}

func TestQuantiles(t *testing.T) {
	a := NewAccumulator(true)
	for _, x := range []float64{8, 1, 5, 3, 7, 2, 6, 4} {
		a.Add(x)
	}
	require.Equal(t, 2.0, a.Value(StatQ1))
	require.Equal(t, 6.0, a.Value(StatQ3))
	require.Equal(t, 4.5, a.Value(StatMedian))
}

func TestParseStats(t *testing.T) {
	stats, err := ParseStats("mean, STD,num")
	require.NoError(t, err)
	require.Equal(t, []Stat{StatMean, StatStd, StatNum}, stats)

	_, err = ParseStats("mean,mode")
	require.Error(t, err)
}

func TestGroupedStatsSingleGroup(t *testing.T) {
	table := valueTable("v", "1", "2", "3", "4")
	out, err := GroupedStats(table, StatsOptions{
		Value: "v",
		Stats: []Stat{StatMean, StatNum, StatSum, StatStd, StatMin, StatMax},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"mean", "num", "sum", "std", "min", "max"}, out.Fields())
	require.Equal(t, 1, out.NumRecords())

	require.Equal(t, "2.5", out.Value(0, "mean"))
	require.Equal(t, "4", out.Value(0, "num"))
	require.Equal(t, "10", out.Value(0, "sum"))
	require.Equal(t, "1", out.Value(0, "min"))
	require.Equal(t, "4", out.Value(0, "max"))
	std, err := values.ParseNumber(out.Value(0, "std"))
	require.NoError(t, err)
	require.InDelta(t, math.Sqrt(stat.Variance([]float64{1, 2, 3, 4}, nil)), std, 1e-9)
}

func TestGroupedStatsGroupsAndSkips(t *testing.T) {
	table := tables.NewTableWithFields("site", "sex", "v")
	rows := [][]string{
		{"A", "f", "1"},
		{"B", "m", "10"},
		{"A", "f", "3"},
		{"A", "m", "oops"},
		{"B", "m", "NA"},
		{"B", "m", "20"},
	}
	for _, row := range rows {
		table.AddRecord(tables.NewRecord("site", row[0], "sex", row[1], "v", row[2]))
	}

	out, err := GroupedStats(table, StatsOptions{
		Value:   "v",
		GroupBy: []string{"site", "sex"},
		Stats:   []Stat{StatMean, StatNum},
		Pattern: "v_%s",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"site", "sex", "v_mean", "v_num"}, out.Fields())

	// first-seen order; the unparsable-only group still appears
	require.Equal(t, 3, out.NumRecords())
	got := out.Records()
	require.True(t, got[0].Equal(tables.NewRecord("site", "A", "sex", "f", "v_mean", "2", "v_num", "2")), "%v", got[0])
	require.True(t, got[1].Equal(tables.NewRecord("site", "B", "sex", "m", "v_mean", "15", "v_num", "2")), "%v", got[1])
	require.True(t, got[2].Equal(tables.NewRecord("site", "A", "sex", "m", "v_mean", "NA", "v_num", "0")), "%v", got[2])
}

func TestGroupedStatsEmptyAndErrors(t *testing.T) {
	table := tables.NewTableWithFields("g", "v")
	out, err := GroupedStats(table, StatsOptions{Value: "v", GroupBy: []string{"g"}})
	require.NoError(t, err)
	require.Equal(t, 0, out.NumRecords())
	require.Equal(t, []string{"g", "mean", "std", "num"}, out.Fields())

	_, err = GroupedStats(table, StatsOptions{Value: "nope"})
	require.True(t, errors.Is(err, tables.ErrStructural))

	_, err = GroupedStats(table, StatsOptions{Value: "v", GroupBy: []string{"nope"}})
	require.True(t, errors.Is(err, tables.ErrStructural))

	_, err = GroupedStats(table, StatsOptions{Value: "v", Pattern: "no placeholder"})
	require.True(t, errors.Is(err, tables.ErrStructural))

	_, err = GroupedStats(table, StatsOptions{Value: "v", GroupBy: []string{"g"}, Pattern: "%s", Stats: []Stat{StatMean, StatMean}})
	require.True(t, errors.Is(err, tables.ErrStructural))
}

func TestGroupedStatsDoesNotMutate(t *testing.T) {
	table := valueTable("v", "1", "2")
	_, err := GroupedStats(table, StatsOptions{Value: "v"})
	require.NoError(t, err)
	require.Equal(t, []string{"v"}, table.Fields())
}
