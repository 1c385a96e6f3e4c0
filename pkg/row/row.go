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

// Package row defines the record representation shared by the evaluator and the runner: an ordered list of
// field values. It also converts values between the loosely typed world of decoded JSON and expression
// results, and the typed world described by a schema.
package row

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Row is an ordered list of field values. A nil element is a null value.
// Rows are treated as immutable once they are handed to the evaluator.
type Row []interface{}

// Equal reports whether two rows are structurally equal, field by field.
func (r Row) Equal(other Row) bool {
	if len(r) != len(other) {
		return false
	}
	for i := range r {
		if !valueEqual(r[i], other[i]) {
			return false
		}
	}
	return true
}

func (r Row) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		if v == nil {
			parts[i] = "NULL"
			continue
		}
		parts[i] = fmt.Sprintf("%v", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func valueEqual(a, b interface{}) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case []byte:
		y, ok := b.([]byte)
		return ok && bytes.Equal(x, y)
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y) && sameZone(x, y)
	case int64, float64, string, bool:
		return a == b
	default:
		return reflect.DeepEqual(a, b)
	}
}

// sameZone reports whether two times are displayed in the same zone, expressions reading the wall
// clock of a timestamp give different results otherwise.
func sameZone(x, y time.Time) bool {
	xName, xOffset := x.Zone()
	yName, yOffset := y.Zone()
	return xName == yName && xOffset == yOffset && x.Location().String() == y.Location().String()
}
