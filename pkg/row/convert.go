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

package row

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/araddon/dateparse"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
)

// number is satisfied by the json.Number types of both the standard library and goccy/go-json.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
}

// FromMap builds a row from a decoded JSON object, ordering and coercing the values by the schema.
// Fields missing from the object are null.
func FromMap(m map[string]interface{}, schema v1alpha1.Schema, loc *time.Location) (Row, error) {
	r := make(Row, schema.FieldCount())
	for i, f := range schema.Fields {
		v, err := Coerce(f, m[f.Name], loc)
		if err != nil {
			return nil, SchemaValidationError{Field: f.Name, Index: i, Message: err.Error()}
		}
		r[i] = v
	}
	return r, nil
}

// FromResult turns a non-null expression result into a row of the given schema. A result is either
// a list with one value per field, a map keyed by field names, or a scalar when the schema has exactly
// one field. When verify is set, every value is coerced to and checked against its field type.
func FromResult(result interface{}, schema v1alpha1.Schema, verify bool, loc *time.Location) (Row, error) {
	var r Row
	switch x := result.(type) {
	case Row:
		r = append(Row(nil), x...)
	case []interface{}:
		r = append(Row(nil), x...)
	case map[string]interface{}:
		r = make(Row, schema.FieldCount())
		for i, f := range schema.Fields {
			r[i] = x[f.Name]
		}
	default:
		if schema.FieldCount() != 1 {
			return nil, SchemaValidationError{Message: fmt.Sprintf("scalar result of type %T for an output schema of %d fields", result, schema.FieldCount())}
		}
		r = Row{result}
	}
	if len(r) != schema.FieldCount() {
		return nil, SchemaValidationError{Message: fmt.Sprintf("result has %d values, output schema has %d fields", len(r), schema.FieldCount())}
	}
	if !verify {
		return r, nil
	}
	for i, f := range schema.Fields {
		v, err := Coerce(f, r[i], loc)
		if err != nil {
			return nil, SchemaValidationError{Field: f.Name, Index: i, Message: err.Error()}
		}
		r[i] = v
	}
	return r, nil
}

// Coerce converts v to the canonical Go representation of the field type:
// int64, float64, string, bool, []byte, time.Time, or v itself for "any".
func Coerce(f v1alpha1.Field, v interface{}, loc *time.Location) (interface{}, error) {
	if v == nil {
		if !f.Nullable {
			return nil, fmt.Errorf("null value for a non-nullable field")
		}
		return nil, nil
	}
	switch f.Type {
	case v1alpha1.FieldTypeInt64:
		return toInt64(v)
	case v1alpha1.FieldTypeFloat64:
		return toFloat64(v)
	case v1alpha1.FieldTypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case v1alpha1.FieldTypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case v1alpha1.FieldTypeBytes:
		switch x := v.(type) {
		case []byte:
			return x, nil
		case string:
			b, err := base64.StdEncoding.DecodeString(x)
			if err != nil {
				return nil, fmt.Errorf("invalid base64 value, %w", err)
			}
			return b, nil
		}
	case v1alpha1.FieldTypeTimestamp:
		return toTime(v, loc)
	case v1alpha1.FieldTypeAny:
		if n, ok := v.(number); ok {
			if i, err := n.Int64(); err == nil {
				return i, nil
			}
			return n.Float64()
		}
		return v, nil
	}
	return nil, fmt.Errorf("value of type %T is not a %s", v, f.Type)
}

func toInt64(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", x)
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("value %d overflows int64", x)
		}
		return int64(x), nil
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case number:
		i, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("value %v is not an int64, %w", x, err)
		}
		return i, nil
	}
	return nil, fmt.Errorf("value of type %T is not a %s", v, v1alpha1.FieldTypeInt64)
}

func floatToInt64(f float64) (interface{}, error) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return nil, fmt.Errorf("value %v is not an int64", f)
	}
	return int64(f), nil
}

func toFloat64(v interface{}) (interface{}, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case number:
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("value %v is not a float64, %w", x, err)
		}
		return f, nil
	}
	return nil, fmt.Errorf("value of type %T is not a %s", v, v1alpha1.FieldTypeFloat64)
}

func toTime(v interface{}, loc *time.Location) (interface{}, error) {
	if loc == nil {
		loc = time.UTC
	}
	switch x := v.(type) {
	case time.Time:
		return x, nil
	case string:
		t, err := dateparse.ParseIn(x, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q, %w", x, err)
		}
		return t, nil
	case int64:
		return time.UnixMilli(x).In(loc), nil
	case float64:
		return time.UnixMilli(int64(x)).In(loc), nil
	case number:
		ms, err := x.Int64()
		if err != nil {
			return nil, fmt.Errorf("invalid epoch millis %v, %w", x, err)
		}
		return time.UnixMilli(ms).In(loc), nil
	}
	return nil, fmt.Errorf("value of type %T is not a %s", v, v1alpha1.FieldTypeTimestamp)
}
