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

// Package aggregates computes grouped statistics over tables. An Accumulator
// collects one group's values in a single pass and can be combined with
// another, so that statistics computed at a fine grain can be merged into a
// coarser one.
package aggregates

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/google/quantab/core/values"
)

// Stat names a statistic an Accumulator can report.
type Stat string

const (
	StatMin    Stat = "min"
	StatMax    Stat = "max"
	StatSum    Stat = "sum"
	StatMean   Stat = "mean"
	StatVar    Stat = "var"
	StatStd    Stat = "std"
	StatStde   Stat = "stde"
	StatNum    Stat = "num"
	StatCV     Stat = "cv"
	StatMedian Stat = "median"
	StatMAD    Stat = "mad"
	StatQ1     Stat = "q1"
	StatQ3     Stat = "q3"
)

// AllStats lists every supported statistic in output order.
var AllStats = []Stat{
	StatMin, StatMax, StatSum, StatMean, StatVar, StatStd, StatStde,
	StatNum, StatCV, StatMedian, StatMAD, StatQ1, StatQ3,
}

// NeedsSamples reports whether s requires the buffered values rather than
// the running moments.
func (s Stat) NeedsSamples() bool {
	switch s {
	case StatMedian, StatMAD, StatQ1, StatQ3:
		return true
	}
	return false
}

// ParseStat parses a statistic name, case-insensitively.
func ParseStat(name string) (Stat, error) {
	s := Stat(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(AllStats, s) {
		return "", fmt.Errorf("unknown statistic %q", name)
	}
	return s, nil
}

// ParseStats parses a comma-separated list of statistic names.
func ParseStats(list string) ([]Stat, error) {
	var stats []Stat
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		s, err := ParseStat(name)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

// Accumulator holds the running state of one group: count, mean and sum of
// squared deviations (Welford), sum, min and max. When created with sample
// buffering it also keeps every value for the order statistics.
//
// Variance uses the sample (n-1) convention, as gonum's stat.Variance does.
type Accumulator struct {
	Count int64
	Sum   float64
	Min   float64
	Max   float64

	mean float64
	m2   float64

	keepSamples bool
	samples     []float64
}

// NewAccumulator creates an empty accumulator. With keepSamples set, the
// median, MAD and quartiles are available.
func NewAccumulator(keepSamples bool) *Accumulator {
	return &Accumulator{
		Min:         math.Inf(1),
		Max:         math.Inf(-1),
		keepSamples: keepSamples,
	}
}

// Add adds a single value.
func (a *Accumulator) Add(x float64) {
	a.Count++
	a.Sum += x
	delta := x - a.mean
	a.mean += delta / float64(a.Count)
	a.m2 += delta * (x - a.mean)
	if x < a.Min {
		a.Min = x
	}
	if x > a.Max {
		a.Max = x
	}
	if a.keepSamples {
		a.samples = append(a.samples, x)
	}
}

// Combine merges other into a using the parallel update of Chan et al.
func (a *Accumulator) Combine(other *Accumulator) {
	if other == nil || other.Count == 0 {
		return
	}
	if a.Count == 0 {
		keep := a.keepSamples
		*a = *other
		a.samples = slices.Clone(other.samples)
		a.keepSamples = keep
		if !keep {
			a.samples = nil
		}
		return
	}

	na, nb := float64(a.Count), float64(other.Count)
	n := na + nb
	delta := other.mean - a.mean
	a.mean += delta * nb / n
	a.m2 += other.m2 + delta*delta*na*nb/n
	a.Count += other.Count
	a.Sum += other.Sum
	a.Min = math.Min(a.Min, other.Min)
	a.Max = math.Max(a.Max, other.Max)
	if a.keepSamples {
		a.samples = append(a.samples, other.samples...)
	}
}

// Mean returns the arithmetic mean, NaN for no values.
func (a *Accumulator) Mean() float64 {
	if a.Count == 0 {
		return math.NaN()
	}
	return a.mean
}

// Variance returns the sample variance, NaN for fewer than two values.
func (a *Accumulator) Variance() float64 {
	if a.Count < 2 {
		return math.NaN()
	}
	return a.m2 / float64(a.Count-1)
}

// PopVariance returns the population variance, NaN for no values.
func (a *Accumulator) PopVariance() float64 {
	if a.Count == 0 {
		return math.NaN()
	}
	return a.m2 / float64(a.Count)
}

// Std returns the sample standard deviation.
func (a *Accumulator) Std() float64 {
	return math.Sqrt(a.Variance())
}

// Stde returns the standard error of the mean, std/sqrt(num).
func (a *Accumulator) Stde() float64 {
	if a.Count == 0 {
		return math.NaN()
	}
	return a.Std() / math.Sqrt(float64(a.Count))
}

// CV returns the coefficient of variation std/mean, NaN when mean is zero.
func (a *Accumulator) CV() float64 {
	mean := a.Mean()
	if mean == 0 {
		return math.NaN()
	}
	return a.Std() / mean
}

func (a *Accumulator) sorted() []float64 {
	s := slices.Clone(a.samples)
	slices.Sort(s)
	return s
}

// Median returns the median, averaging the two middle values of an even
// count. It is NaN without buffered samples.
func (a *Accumulator) Median() float64 {
	return median(a.sorted())
}

// MAD returns the median absolute deviation from the median, unscaled.
func (a *Accumulator) MAD() float64 {
	if len(a.samples) == 0 {
		return math.NaN()
	}
	m := a.Median()
	dev := make([]float64, len(a.samples))
	for i, x := range a.samples {
		dev[i] = math.Abs(x - m)
	}
	slices.Sort(dev)
	return median(dev)
}

// Quantile returns the p-quantile of the buffered samples using the
// empirical estimator.
func (a *Accumulator) Quantile(p float64) float64 {
	if len(a.samples) == 0 {
		return math.NaN()
	}
	return stat.Quantile(p, stat.Empirical, a.sorted(), nil)
}

func median(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return math.NaN()
	case n%2 == 1:
		return sorted[n/2]
	default:
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
}

// Value returns the statistic s. Every statistic but num is NaN for an empty
// accumulator.
func (a *Accumulator) Value(s Stat) float64 {
	if a.Count == 0 && s != StatNum {
		return math.NaN()
	}
	switch s {
	case StatMin:
		return a.Min
	case StatMax:
		return a.Max
	case StatSum:
		return a.Sum
	case StatMean:
		return a.Mean()
	case StatVar:
		return a.Variance()
	case StatStd:
		return a.Std()
	case StatStde:
		return a.Stde()
	case StatNum:
		return float64(a.Count)
	case StatCV:
		return a.CV()
	case StatMedian:
		return a.Median()
	case StatMAD:
		return a.MAD()
	case StatQ1:
		return a.Quantile(0.25)
	case StatQ3:
		return a.Quantile(0.75)
	default:
		return math.NaN()
	}
}

// Format returns the statistic s as a cell value, na for NaN.
func (a *Accumulator) Format(s Stat, na string) string {
	if s == StatNum {
		return values.FormatInt(int(a.Count))
	}
	return values.FormatNumber(a.Value(s), na)
}

// Counter counts occurrences of distinct string values, remembering the
// order in which they were first seen.
type Counter struct {
	Total  int64
	order  []string
	counts map[string]int64
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int64)}
}

// Add counts one occurrence of v.
func (c *Counter) Add(v string) {
	if _, ok := c.counts[v]; !ok {
		c.order = append(c.order, v)
	}
	c.counts[v]++
	c.Total++
}

// Combine merges other into c. Values new to c are appended in other's order.
func (c *Counter) Combine(other *Counter) {
	for _, v := range other.order {
		if _, ok := c.counts[v]; !ok {
			c.order = append(c.order, v)
		}
		c.counts[v] += other.counts[v]
	}
	c.Total += other.Total
}

// Values returns the distinct values in first-seen order.
func (c *Counter) Values() []string {
	return slices.Clone(c.order)
}

// Count returns the number of occurrences of v.
func (c *Counter) Count(v string) int64 {
	return c.counts[v]
}

// UniqueCount returns the number of distinct values.
func (c *Counter) UniqueCount() int {
	return len(c.order)
}
