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

// Package values holds the parse and format rules for cell values.
// Every cell in a table is a string; numeric meaning is assigned lazily,
// and only through the functions in this package, so that NA handling and
// number formatting are defined in exactly one place.
package values

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultNA is the NA token used when a table does not configure one.
const DefaultNA = "NA"

var (
	// ErrMissing is returned when a value is one of the missing-value tokens.
	ErrMissing = errors.New("missing value")
	// ErrNotNumber is returned when a value cannot be read as a number.
	ErrNotNumber = errors.New("not a number")
)

// IsMissing reports whether v denotes a missing value: the empty string,
// na/nan/null in any case, or the configured NA token.
func IsMissing(v, na string) bool {
	if v == "" || v == na {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "na", "nan", "null":
		return true
	}
	return false
}

// ParseNumber reads v as a float64. Surrounding whitespace is ignored.
// Missing tokens yield ErrMissing, anything else that does not parse yields
// ErrNotNumber. Infinities are accepted.
func ParseNumber(v string) (float64, error) {
	s := strings.TrimSpace(v)
	if IsMissing(s, DefaultNA) {
		return 0, ErrMissing
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			// overflow still yields ±Inf, which is a usable ordering value
			return f, nil
		}
		return 0, ErrNotNumber
	}
	if math.IsNaN(f) {
		return 0, ErrMissing
	}
	return f, nil
}

// ParseNumberOr returns the parsed number or fallback when v does not parse.
func ParseNumberOr(v string, fallback float64) float64 {
	f, err := ParseNumber(v)
	if err != nil {
		return fallback
	}
	return f
}

// FormatNumber formats f for a cell. NaN becomes na, integral values are
// written without a fractional part, anything else uses the shortest
// representation that reads back to the same float64.
func FormatNumber(f float64, na string) string {
	switch {
	case math.IsNaN(f):
		return na
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatInt formats a count.
func FormatInt(n int) string {
	return strconv.Itoa(n)
}
