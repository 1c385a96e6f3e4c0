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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() *CalcSpec {
	cs := &CalcSpec{
		Name:       "calc",
		Expression: "_0 > 10 ? [_0, _1] : nil",
		InputSchema: Schema{Fields: []Field{
			{Name: "id", Type: FieldTypeInt64},
			{Name: "name", Type: FieldTypeString},
		}},
		OutputSchema: Schema{Fields: []Field{
			{Name: "id", Type: FieldTypeInt64},
			{Name: "name", Type: FieldTypeString},
		}},
	}
	_ = cs.ApplyDefaults()
	return cs
}

func TestCalcSpec_ApplyDefaults(t *testing.T) {
	cs := &CalcSpec{Expression: "_0", MaxPending: 4}
	require.NoError(t, cs.ApplyDefaults())
	assert.Equal(t, 4, cs.MaxPending)
	assert.Equal(t, DefaultTimezone, cs.DefaultTimezone)
	assert.Equal(t, DefaultEngineConcurrency, cs.Engine.Concurrency)
	assert.Equal(t, DefaultEngineStreamBatchSize, cs.Engine.StreamBatchSize)
	assert.Equal(t, DefaultRunnerBatchSize, cs.Runner.BatchSize)
	assert.Equal(t, WindowTypeGlobal, cs.Window.Type)
}

func TestCalcSpec_GetMaxPending(t *testing.T) {
	assert.Equal(t, DefaultMaxPending, CalcSpec{}.GetMaxPending())
	assert.Equal(t, 2, CalcSpec{MaxPending: 2}.GetMaxPending())
}

func TestCalcSpec_GetLocation(t *testing.T) {
	loc, err := CalcSpec{}.GetLocation()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
	_, err = CalcSpec{DefaultTimezone: "Mars/Olympus"}.GetLocation()
	assert.Error(t, err)
}

func TestCalcSpec_NullParamNames(t *testing.T) {
	cs := testSpec()
	assert.Empty(t, cs.NullParamNames())
	cs.NullParams = []NullParam{{Name: "noId", Type: FieldTypeInt64}, {Name: "noName", Type: FieldTypeString}}
	assert.Equal(t, []string{"noId", "noName"}, cs.NullParamNames())
}

func TestCalcSpec_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, testSpec().Validate())
	})

	tests := []struct {
		name   string
		mutate func(cs *CalcSpec)
		errMsg string
	}{
		{"no expression", func(cs *CalcSpec) { cs.Expression = "" }, "expression is required"},
		{"empty input schema", func(cs *CalcSpec) { cs.InputSchema = Schema{} }, "invalid input schema"},
		{"duplicate output field", func(cs *CalcSpec) {
			cs.OutputSchema.Fields = append(cs.OutputSchema.Fields, Field{Name: "id", Type: FieldTypeInt64})
		}, "duplicate field name"},
		{"bad field type", func(cs *CalcSpec) { cs.InputSchema.Fields[0].Type = "decimal" }, "unsupported type"},
		{"bad null param", func(cs *CalcSpec) { cs.NullParams = []NullParam{{Name: "1p", Type: FieldTypeInt64}} }, "invalid null param name"},
		{"duplicate null param", func(cs *CalcSpec) {
			cs.NullParams = []NullParam{{Name: "p", Type: FieldTypeInt64}, {Name: "p", Type: FieldTypeString}}
		}, "duplicate null param"},
		{"bad max pending", func(cs *CalcSpec) { cs.MaxPending = 0 }, "maxPending"},
		{"bad timezone", func(cs *CalcSpec) { cs.DefaultTimezone = "Nowhere/Land" }, "invalid timezone"},
		{"bad concurrency", func(cs *CalcSpec) { cs.Engine.Concurrency = 0 }, "concurrency"},
		{"fixed window without length", func(cs *CalcSpec) { cs.Window.Type = WindowTypeFixed }, "length should be positive"},
		{"sliding slide too long", func(cs *CalcSpec) {
			cs.Window = WindowSpec{Type: WindowTypeSliding, Length: time.Minute, Slide: time.Hour}
		}, "should not be longer"},
		{"unknown window", func(cs *CalcSpec) { cs.Window.Type = "session" }, "unsupported window type"},
		{"bad shards", func(cs *CalcSpec) { cs.Runner.Shards = 0 }, "shards"},
		{"unknown event time field", func(cs *CalcSpec) { cs.Runner.EventTimeField = "ts" }, "event time field"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := testSpec()
			tt.mutate(cs)
			err := cs.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSchema(t *testing.T) {
	s := testSpec().InputSchema
	assert.Equal(t, 2, s.FieldCount())
	assert.Equal(t, []FieldType{FieldTypeInt64, FieldTypeString}, s.Types())
	assert.Equal(t, 1, s.IndexOf("name"))
	assert.Equal(t, -1, s.IndexOf("missing"))
	assert.Equal(t, "(id:int64, name:string)", s.String())
}
