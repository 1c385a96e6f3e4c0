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
)

var (
	// ErrStreamClosed is returned by futures of a stream closed before they were evaluated.
	ErrStreamClosed = errors.New("evaluation stream is closed")
	// ErrCancelled is returned by futures cancelled before they were evaluated.
	ErrCancelled = errors.New("evaluation is cancelled")
)

// CompileError is returned when an expression fails to compile.
type CompileError struct {
	Expression string
	Err        error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile expression %q, %v", e.Expression, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// EvaluationError is returned when evaluating an expression fails.
type EvaluationError struct {
	Expression string
	Err        error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate expression %q, %v", e.Expression, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	return e.Err
}

// IsCompileError returns true if the error, or any error it wraps, is a CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

// IsEvaluationError returns true if the error, or any error it wraps, is an EvaluationError.
func IsEvaluationError(err error) bool {
	var ee *EvaluationError
	return errors.As(err, &ee)
}
