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

package applier

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompileError(t *testing.T) {
	cause := errors.New("unknown name _9")
	err := fmt.Errorf("setup, %w", &CompileError{Expression: "_9 + 1", Err: cause})
	assert.True(t, IsCompileError(err))
	assert.False(t, IsEvaluationError(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `failed to compile expression "_9 + 1", unknown name _9`)
}

func TestEvaluationError(t *testing.T) {
	err := &EvaluationError{Expression: "_0 / _1", Err: ErrCancelled}
	assert.True(t, IsEvaluationError(err))
	assert.False(t, IsCompileError(err))
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Equal(t, `failed to evaluate expression "_0 / _1", evaluation is cancelled`, err.Error())
}

func TestColumnName(t *testing.T) {
	assert.Equal(t, "_0", ColumnName(0))
	assert.Equal(t, "_12", ColumnName(12))
}
