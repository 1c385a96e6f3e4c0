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

// Package applier defines the contract between a calc step and the expression engine evaluating it.
// An expression is compiled once into a Program, a Program opens Streams and every Submit on a Stream
// returns a Future which eventually resolves to the value of the expression, or fails.
package applier

import (
	"context"
	"strconv"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
)

// ColumnName returns the identifier of the i-th input column in an expression.
func ColumnName(i int) string {
	return v1alpha1.ColumnPrefix + strconv.Itoa(i)
}

// CompileRequest carries everything needed to compile an expression.
type CompileRequest struct {
	// Name labels the metrics and logs of the program.
	Name       string
	Expression string
	// NullParams are named parameters bound to a typed null.
	NullParams []v1alpha1.NullParam
	// ColumnTypes are the types of the input columns, column i is addressable as _i.
	ColumnTypes []v1alpha1.FieldType
	// DefaultTimezone is used for timestamps that carry no zone information.
	DefaultTimezone string
}

// Compiler compiles expressions. Implementations return a CompileError when the expression
// does not compile against the column types.
type Compiler interface {
	Compile(req CompileRequest) (Program, error)
}

// CompileFunc utility function used to create a Compiler implementation
type CompileFunc func(req CompileRequest) (Program, error)

func (f CompileFunc) Compile(req CompileRequest) (Program, error) {
	return f(req)
}

// Program is a compiled expression.
type Program interface {
	// ReferencedColumns returns the sorted indices of the input columns the expression reads.
	ReferencedColumns() []int
	// NewStream opens an evaluation stream. The stream stops when ctx is done.
	NewStream(ctx context.Context) (Stream, error)
	// Close releases the program. It is called once.
	Close() error
}

// Stream accepts evaluation requests.
type Stream interface {
	// Submit queues an evaluation of the program against the given column values, keyed by
	// column identifier, and parameters. It never blocks.
	Submit(columns map[string]interface{}, params map[string]interface{}) Future
	// Flush starts every submitted evaluation which has not been issued yet.
	Flush()
	// Close stops the stream, evaluations which have not started fail with ErrStreamClosed.
	Close() error
}

// Future is the handle of an evaluation in progress.
type Future interface {
	// IsReady returns true if the evaluation finished, Resolve will not block.
	IsReady() bool
	// Resolve waits for the evaluation and returns its value. A nil value is a null result.
	Resolve(ctx context.Context) (interface{}, error)
	// Cancel abandons the evaluation. An evaluation which has not started fails with ErrCancelled.
	Cancel()
}
