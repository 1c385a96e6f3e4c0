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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/calc/applier"
)

var testColumnTypes = []v1alpha1.FieldType{v1alpha1.FieldTypeInt64, v1alpha1.FieldTypeString, v1alpha1.FieldTypeFloat64}

func newTestCompiler(t *testing.T, opts ...Option) *Compiler {
	t.Helper()
	c, err := NewCompiler(opts...)
	require.NoError(t, err)
	return c
}

func TestNewCompiler(t *testing.T) {
	_, err := NewCompiler(WithConcurrency(0))
	assert.Error(t, err)
	_, err = NewCompiler(WithStreamBatchSize(-1))
	assert.Error(t, err)
	_, err = NewCompiler(WithCompileCacheSize(0))
	assert.Error(t, err)

	c := newTestCompiler(t, WithEngineSpec(v1alpha1.EngineSpec{Concurrency: 3}))
	assert.Equal(t, 3, c.opts.concurrency)
	assert.Equal(t, v1alpha1.DefaultEngineStreamBatchSize, c.opts.streamBatchSize)
}

func TestCompiler_Compile(t *testing.T) {
	c := newTestCompiler(t)

	tests := []struct {
		name       string
		expression string
		nullParams []v1alpha1.NullParam
		referenced []int
		wantErr    bool
	}{
		{
			name:       "arithmetic",
			expression: "_0 * 2",
			referenced: []int{0},
		},
		{
			name:       "conditional with null param",
			expression: "_2 > 1.5 ? _0 : nothing",
			nullParams: []v1alpha1.NullParam{{Name: "nothing", Type: v1alpha1.FieldTypeInt64}},
			referenced: []int{0, 2},
		},
		{
			name:       "sprig function",
			expression: `sprig.upper(_1) + "!"`,
			referenced: []int{1},
		},
		{
			name:       "repeated column",
			expression: "_0 + _0 * _0",
			referenced: []int{0},
		},
		{
			name:       "no column",
			expression: "1 + 2",
			referenced: []int{},
		},
		{
			name:       "syntax error",
			expression: "_0 +",
			wantErr:    true,
		},
		{
			name:       "unknown column",
			expression: "_3 + 1",
			wantErr:    true,
		},
		{
			name:       "unknown null param",
			expression: "_0 > 1 ? _0 : nothing",
			wantErr:    true,
		},
		{
			name:       "type mismatch",
			expression: "_1 * 2",
			wantErr:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.Compile(applier.CompileRequest{
				Name:        "test",
				Expression:  tt.expression,
				NullParams:  tt.nullParams,
				ColumnTypes: testColumnTypes,
			})
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, applier.IsCompileError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.referenced, p.ReferencedColumns())
			assert.NoError(t, p.Close())
		})
	}
}

func TestCompiler_CompileNullableColumns(t *testing.T) {
	c := newTestCompiler(t)
	columnTypes := []v1alpha1.FieldType{v1alpha1.FieldTypeInt64, v1alpha1.FieldTypeAny}

	p, err := c.Compile(applier.CompileRequest{Name: "test", Expression: "_1 > 10 ? _0 + _1 : nil", ColumnTypes: columnTypes})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, p.ReferencedColumns())
	s, err := p.NewStream(context.Background())
	require.NoError(t, err)
	v, err := s.Submit(map[string]interface{}{"_0": int64(1), "_1": int64(20)}, nil).Resolve(context.Background())
	assert.NoError(t, err)
	assert.EqualValues(t, 21, v)
	assert.NoError(t, s.Close())
	assert.NoError(t, p.Close())

	_, err = c.Compile(applier.CompileRequest{Name: "test", Expression: "_1 > limit", ColumnTypes: columnTypes})
	assert.True(t, applier.IsCompileError(err))
	_, err = c.Compile(applier.CompileRequest{Name: "test", Expression: "_1 + _5", ColumnTypes: columnTypes})
	assert.True(t, applier.IsCompileError(err))
}

func TestCompiler_CompileInvalidTimezone(t *testing.T) {
	c := newTestCompiler(t)
	_, err := c.Compile(applier.CompileRequest{Expression: "1", DefaultTimezone: "Mars/Olympus"})
	assert.True(t, applier.IsCompileError(err))
}

func TestCompiler_NullParamConflict(t *testing.T) {
	c := newTestCompiler(t)
	_, err := c.Compile(applier.CompileRequest{
		Expression: "json",
		NullParams: []v1alpha1.NullParam{{Name: "json", Type: v1alpha1.FieldTypeString}},
	})
	assert.True(t, applier.IsCompileError(err))
}

func TestCompiler_Cache(t *testing.T) {
	c := newTestCompiler(t, WithCompileCacheSize(1))
	req := applier.CompileRequest{Expression: "_0 + 1", ColumnTypes: testColumnTypes}
	p1, err := c.Compile(req)
	require.NoError(t, err)
	p2, err := c.Compile(req)
	require.NoError(t, err)
	assert.Same(t, p1.(*program).compiled, p2.(*program).compiled)

	// a different column type is a different program
	p3, err := c.Compile(applier.CompileRequest{Expression: "_0 + 1", ColumnTypes: []v1alpha1.FieldType{v1alpha1.FieldTypeFloat64}})
	require.NoError(t, err)
	assert.NotSame(t, p1.(*program).compiled, p3.(*program).compiled)

	// evicted
	p4, err := c.Compile(req)
	require.NoError(t, err)
	assert.NotSame(t, p1.(*program).compiled, p4.(*program).compiled)
}

func TestColumnIndex(t *testing.T) {
	i, ok := columnIndex("_12", 13)
	assert.True(t, ok)
	assert.Equal(t, 12, i)
	_, ok = columnIndex("_12", 12)
	assert.False(t, ok)
	_, ok = columnIndex("_012", 13)
	assert.False(t, ok)
	_, ok = columnIndex("_x", 13)
	assert.False(t, ok)
	_, ok = columnIndex("x1", 13)
	assert.False(t, ok)
}
