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

// Package jsonexport converts tables to JSON through protobuf's structpb,
// one object per row with the fields in schema order.
package jsonexport

import (
	"fmt"
	"slices"
	"strconv"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/google/quantab/core/tables"
	"github.com/google/quantab/core/values"
)

// ToListValue converts t to a list of structs. Absent cells become JSON
// null; every present cell is a string.
func ToListValue(t *tables.Table) (*structpb.ListValue, error) {
	fields := t.Fields()
	list := &structpb.ListValue{Values: make([]*structpb.Value, 0, t.NumRecords())}
	for key := range t.All() {
		row := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(fields))}
		for _, f := range fields {
			v, ok := t.Get(key, f)
			if !ok {
				row.Fields[f] = structpb.NewNullValue()
				continue
			}
			row.Fields[f] = structpb.NewStringValue(v)
		}
		list.Values = append(list.Values, structpb.NewStructValue(row))
	}
	return list, nil
}

// Marshal encodes t as a JSON array. With multiline set the output is
// indented.
func Marshal(t *tables.Table, multiline bool) ([]byte, error) {
	list, err := ToListValue(t)
	if err != nil {
		return nil, err
	}
	opts := protojson.MarshalOptions{Multiline: multiline}
	if multiline {
		opts.Indent = "  "
	}
	data, err := opts.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal table: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a JSON array of flat objects into a table. Fields are
// ordered by first appearance, sorted within each object since JSON objects
// carry no order. Numbers and booleans are formatted as cell values;
// null means an absent cell.
func Unmarshal(data []byte) (*tables.Table, error) {
	list := &structpb.ListValue{}
	if err := protojson.Unmarshal(data, list); err != nil {
		return nil, &tables.MalformedInputError{Msg: "invalid JSON table", Err: err}
	}

	t := tables.NewTable()
	for i, v := range list.GetValues() {
		obj := v.GetStructValue()
		if obj == nil {
			return nil, &tables.MalformedInputError{Line: i + 1, Msg: "row is not an object"}
		}
		names := make([]string, 0, len(obj.GetFields()))
		for name := range obj.GetFields() {
			names = append(names, name)
		}
		slices.Sort(names)

		var pairs []string
		for _, name := range names {
			cell, err := cellString(obj.GetFields()[name])
			if err != nil {
				return nil, &tables.MalformedInputError{Line: i + 1, Msg: fmt.Sprintf("field %q", name), Err: err}
			}
			t.WithField(name)
			if cell != nil {
				pairs = append(pairs, name, *cell)
			}
		}
		t.AddRecord(tables.NewRecord(pairs...))
	}
	return t, nil
}

func cellString(v *structpb.Value) (*string, error) {
	var s string
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, nil
	case *structpb.Value_StringValue:
		s = k.StringValue
	case *structpb.Value_NumberValue:
		s = values.FormatNumber(k.NumberValue, "")
	case *structpb.Value_BoolValue:
		s = strconv.FormatBool(k.BoolValue)
	default:
		return nil, fmt.Errorf("nested values are not supported")
	}
	return &s, nil
}
