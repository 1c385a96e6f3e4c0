/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1alpha1

import (
	"fmt"
	"strings"
)

// FieldType is the type of a column in a schema.
type FieldType string

const (
	FieldTypeInt64     FieldType = "int64"
	FieldTypeFloat64   FieldType = "float64"
	FieldTypeString    FieldType = "string"
	FieldTypeBool      FieldType = "bool"
	FieldTypeBytes     FieldType = "bytes"
	FieldTypeTimestamp FieldType = "timestamp"
	FieldTypeAny       FieldType = "any"
)

// IsValid returns true if the field type is one of the supported types.
func (t FieldType) IsValid() bool {
	switch t {
	case FieldTypeInt64, FieldTypeFloat64, FieldTypeString, FieldTypeBool, FieldTypeBytes, FieldTypeTimestamp, FieldTypeAny:
		return true
	default:
		return false
	}
}

// Field describes a single column.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
	// Nullable indicates whether the column accepts null values.
	// +optional
	Nullable bool `json:"nullable,omitempty"`
}

// Schema is an ordered list of fields.
type Schema struct {
	Fields []Field `json:"fields"`
}

func (s Schema) FieldCount() int {
	return len(s.Fields)
}

// Types returns the field types in schema order.
func (s Schema) Types() []FieldType {
	types := make([]FieldType, len(s.Fields))
	for i, f := range s.Fields {
		types[i] = f.Type
	}
	return types
}

// IndexOf returns the index of the named field, or -1 if there is no such field.
func (s Schema) IndexOf(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (s Schema) String() string {
	parts := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", f.Name, f.Type))
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (s Schema) validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("no fields defined")
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("field %d has no name", i)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("duplicate field name %q", f.Name)
		}
		seen[f.Name] = struct{}{}
		if !f.Type.IsValid() {
			return fmt.Errorf("field %q has an unsupported type %q", f.Name, f.Type)
		}
	}
	return nil
}
