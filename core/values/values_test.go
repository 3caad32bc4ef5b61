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

package values

import (
	"errors"
	"math"
	"testing"
)

func TestIsMissing(t *testing.T) {
	tests := []struct {
		value string
		na    string
		want  bool
	}{
		{"", DefaultNA, true},
		{"NA", DefaultNA, true},
		{"na", DefaultNA, true},
		{"NaN", DefaultNA, true},
		{"Null", DefaultNA, true},
		{"-", "-", true},
		{"-", DefaultNA, false},
		{"0", DefaultNA, false},
		{"abc", DefaultNA, false},
	}
	for _, tt := range tests {
		if got := IsMissing(tt.value, tt.na); got != tt.want {
			t.Errorf("IsMissing(%q, %q) = %v, want %v", tt.value, tt.na, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		value   string
		want    float64
		wantErr error
	}{
		{"1", 1, nil},
		{" 2.5 ", 2.5, nil},
		{"-1e3", -1000, nil},
		{"inf", math.Inf(1), nil},
		{"NA", 0, ErrMissing},
		{"nan", 0, ErrMissing},
		{"", 0, ErrMissing},
		{"abc", 0, ErrNotNumber},
		{"1,5", 0, ErrNotNumber},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.value)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseNumber(%q) error = %v, want %v", tt.value, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseNumber(%q) unexpected error: %v", tt.value, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestParseNumberOr(t *testing.T) {
	if got := ParseNumberOr("abc", math.Inf(1)); !math.IsInf(got, 1) {
		t.Errorf("expected fallback +Inf, got %v", got)
	}
	if got := ParseNumberOr("3", 0); got != 3 {
		t.Errorf("expected 3, got %v", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{10, "10"},
		{-3, "-3"},
		{2.5, "2.5"},
		{1234567.5, "1234567.5"},
		{0.1, "0.1"},
		{math.NaN(), "NA"},
		{math.Inf(1), "Inf"},
		{math.Inf(-1), "-Inf"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.value, DefaultNA); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
