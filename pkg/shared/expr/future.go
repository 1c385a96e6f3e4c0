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

	"go.uber.org/atomic"

	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/metrics"
)

const (
	stateQueued int32 = iota
	stateRunning
	stateDone
)

// future is the result of one evaluation submitted to a stream.
type future struct {
	stream  *stream
	columns map[string]interface{}
	params  map[string]interface{}
	// issued is guarded by the mutex of the stream.
	issued bool
	state  atomic.Int32
	done   chan struct{}
	value  interface{}
	err    error
}

var _ applier.Future = (*future)(nil)

func newFuture(s *stream, columns map[string]interface{}, params map[string]interface{}) *future {
	return &future{
		stream:  s,
		columns: columns,
		params:  params,
		done:    make(chan struct{}),
	}
}

func (f *future) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Resolve waits for the evaluation. An evaluation which is not issued yet gets its batch issued
// first, so resolving never waits on a partially filled batch.
func (f *future) Resolve(ctx context.Context) (interface{}, error) {
	if !f.IsReady() {
		f.stream.issue(f)
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *future) Cancel() {
	if f.state.CompareAndSwap(stateQueued, stateDone) {
		metrics.EvaluationErrorCount.WithLabelValues(f.stream.program.name, "cancelled").Inc()
		f.err = applier.ErrCancelled
		close(f.done)
	}
}

// start moves a queued future to running, it returns false if the future is already done.
func (f *future) start() bool {
	return f.state.CompareAndSwap(stateQueued, stateRunning)
}

func (f *future) complete(value interface{}, err error) {
	f.value, f.err = value, err
	f.state.Store(stateDone)
	close(f.done)
}

// fail completes a future which never started.
func (f *future) fail(err error) {
	if f.state.CompareAndSwap(stateQueued, stateDone) {
		f.err = err
		close(f.done)
	}
}
