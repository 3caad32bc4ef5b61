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

// Package query implements the transform operations over tables: rename,
// retain, remove, sort, unique, constant, cat, where, dempty, plus the
// Pipeline that runs them in a fixed order.
//
// Every operation returns a new table and leaves its input unchanged.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/quantab/core/tables"
)

// Pipeline holds the transforms to run over one table. Empty fields are
// skipped. Apply runs the stages in this order: dempty, rename, retain,
// remove, sort, unique, constant, cat, where, limit.
type Pipeline struct {
	Dempty   bool     // drop fields with an empty name
	Rename   string   // "new=old,new2=old2"
	Retain   string   // comma-separated regexps, fields to keep
	Remove   string   // comma-separated regexps, fields to drop
	Sort     string   // "a,#b,^#c"
	Unique   string   // comma-separated fields
	Constant string   // "field=value,field2=value2"
	Cat      []string // "new=%{a}_%{b}", applied in order
	Where    string   // predicate expression
	Limit    int      // keep the first Limit rows (0 = all)
}

// ParsePipeline builds a Pipeline from parameters such as those of a URL
// query string or a set of command-line flags.
func ParsePipeline(q url.Values) Pipeline {
	p := Pipeline{
		Rename:   q.Get("rename"),
		Retain:   q.Get("retain"),
		Remove:   q.Get("remove"),
		Sort:     q.Get("sort"),
		Unique:   q.Get("unique"),
		Constant: q.Get("constant"),
		Where:    q.Get("where"),
	}

	if d := q.Get("dempty"); d != "" {
		p.Dempty, _ = strconv.ParseBool(d)
	}

	for _, c := range q["cat"] {
		if c != "" {
			p.Cat = append(p.Cat, c)
		}
	}

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit >= 0 {
			p.Limit = limit
		}
	}

	return p
}

// Values converts the Pipeline back to parameters. ParsePipeline(p.Values())
// equals p.
func (p Pipeline) Values() url.Values {
	q := url.Values{}
	if p.Dempty {
		q.Set("dempty", "true")
	}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("rename", p.Rename)
	set("retain", p.Retain)
	set("remove", p.Remove)
	set("sort", p.Sort)
	set("unique", p.Unique)
	set("constant", p.Constant)
	for _, c := range p.Cat {
		q.Add("cat", c)
	}
	set("where", p.Where)
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

// IsEmpty reports whether the Pipeline has no stage to run.
func (p Pipeline) IsEmpty() bool {
	return len(p.Values()) == 0
}

// Clone creates a deep copy of the Pipeline
func (p Pipeline) Clone() Pipeline {
	c := p
	c.Cat = append([]string(nil), p.Cat...)
	return c
}

// Apply runs every configured stage of p over t. The first failing stage
// aborts the pipeline.
func Apply(t *tables.Table, p Pipeline) (*tables.Table, error) {
	out := t
	var err error

	if p.Dempty {
		out = Dempty(out)
	}
	if p.Rename != "" {
		if out, err = Rename(out, p.Rename); err != nil {
			return nil, err
		}
	}
	if p.Retain != "" {
		if out, err = Retain(out, p.Retain); err != nil {
			return nil, err
		}
	}
	if p.Remove != "" {
		if out, err = Remove(out, p.Remove); err != nil {
			return nil, err
		}
	}
	if p.Sort != "" {
		if out, err = Sort(out, p.Sort); err != nil {
			return nil, err
		}
	}
	if p.Unique != "" {
		if out, err = Unique(out, splitList(p.Unique)...); err != nil {
			return nil, err
		}
	}
	if p.Constant != "" {
		if out, err = Constant(out, p.Constant); err != nil {
			return nil, err
		}
	}
	for _, c := range p.Cat {
		if out, err = Cat(out, c); err != nil {
			return nil, err
		}
	}
	if p.Where != "" {
		if out, err = Where(out, p.Where); err != nil {
			return nil, err
		}
	}
	if p.Limit > 0 {
		out = Head(out, p.Limit)
	}

	// an empty pipeline still returns a new table
	if out == t {
		out = t.Copy()
	}
	return out, nil
}

// assignment is one "name=value" entry of a spec string
type assignment struct {
	name  string
	value string
}

// parseAssignments splits "a=x,b=y" into assignments. The value runs to the
// next comma; entries without '=' or with an empty name are errors.
func parseAssignments(op, spec string) ([]assignment, error) {
	var result []assignment
	for _, def := range strings.Split(spec, ",") {
		if strings.TrimSpace(def) == "" {
			continue
		}
		eqIdx := strings.Index(def, "=")
		if eqIdx == -1 {
			return nil, tables.Structuralf(op, "", "expected name=value, got %q", def)
		}
		name := strings.TrimSpace(def[:eqIdx])
		if name == "" {
			return nil, tables.Structuralf(op, "", "empty name in %q", def)
		}
		result = append(result, assignment{name: name, value: def[eqIdx+1:]})
	}
	if len(result) == 0 {
		return nil, tables.Structuralf(op, "", "empty specification")
	}
	return result, nil
}

// splitList splits a comma-separated list, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
