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

package expr

import (
	"fmt"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/araddon/dateparse"
	"github.com/goccy/go-json"
)

var sprigFuncMap = sprig.GenericFuncMap()

// getFuncMap returns the helper functions available to every expression.
func getFuncMap(loc *time.Location) map[string]interface{} {
	env := make(map[string]interface{})
	env["sprig"] = sprigFuncMap
	env["json"] = _json
	env["timestamp"] = func(v interface{}) time.Time {
		return _timestamp(v, loc)
	}
	return env
}

func _json(v interface{}) map[string]interface{} {
	x := make(map[string]interface{})
	switch w := v.(type) {
	case nil:
		return nil
	case []byte:
		if err := json.Unmarshal(w, &x); err != nil {
			panic(fmt.Errorf("cannot convert %q to object: %v", v, err))
		}
		return x
	case string:
		if err := json.Unmarshal([]byte(w), &x); err != nil {
			panic(fmt.Errorf("cannot convert %q to object: %v", v, err))
		}
		return x
	default:
		panic("unknown type")
	}
}

func _timestamp(v interface{}, loc *time.Location) time.Time {
	switch w := v.(type) {
	case time.Time:
		return w
	case []byte:
		return _timestamp(string(w), loc)
	case string:
		t, err := dateparse.ParseIn(w, loc)
		if err != nil {
			panic(fmt.Errorf("cannot convert %q to timestamp: %v", w, err))
		}
		return t
	case int:
		return time.UnixMilli(int64(w)).In(loc)
	case int64:
		return time.UnixMilli(w).In(loc)
	case float64:
		return time.UnixMilli(int64(w)).In(loc)
	default:
		panic(fmt.Errorf("cannot convert %v to timestamp", v))
	}
}
