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

// Package testutils provides a controllable expression engine for tests of calc steps.
package testutils

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/numaproj/numacalc/pkg/calc/applier"
)

// Future is a future completed by the test.
type Future struct {
	once      sync.Once
	done      chan struct{}
	value     interface{}
	err       error
	lazy      bool
	cancelled atomic.Bool
	// onResolve is called when Resolve has to wait.
	onResolve func()
}

var _ applier.Future = (*Future)(nil)

// NewFuture returns a future which is ready once Complete is called.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Ready returns a future which is already resolved to value.
func Ready(value interface{}) *Future {
	f := NewFuture()
	f.Complete(value, nil)
	return f
}

// Failed returns a future which is already failed with err.
func Failed(err error) *Future {
	f := NewFuture()
	f.Complete(nil, err)
	return f
}

// Lazy returns a future which is not ready, waiting on it resolves it to value right away.
func Lazy(value interface{}) *Future {
	f := NewFuture()
	f.value = value
	f.lazy = true
	return f
}

// Complete resolves the future, only the first call has an effect.
func (f *Future) Complete(value interface{}, err error) {
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
	})
}

func (f *Future) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

func (f *Future) Resolve(ctx context.Context) (interface{}, error) {
	if !f.IsReady() {
		if f.onResolve != nil {
			f.onResolve()
		}
		if f.lazy {
			f.Complete(f.value, nil)
		}
	}
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *Future) Cancel() {
	f.cancelled.Store(true)
	f.Complete(nil, applier.ErrCancelled)
}

// Cancelled returns true if Cancel was called.
func (f *Future) Cancelled() bool {
	return f.cancelled.Load()
}

// Stream is an evaluation stream handing out programmed futures.
type Stream struct {
	mu sync.Mutex
	// futures are handed out by Submit in order.
	futures []*Future
	// eval computes the value of a submission once the programmed futures are used up.
	eval     func(columns map[string]interface{}) (interface{}, error)
	submits  []map[string]interface{}
	events   []string
	flushes  int
	closed   bool
	closeErr error
}

var _ applier.Stream = (*Stream)(nil)

// NewStream returns a stream evaluating submissions with eval. A nil eval resolves every
// submission to the value of column _0.
func NewStream(eval func(columns map[string]interface{}) (interface{}, error)) *Stream {
	if eval == nil {
		eval = func(columns map[string]interface{}) (interface{}, error) {
			return columns["_0"], nil
		}
	}
	return &Stream{eval: eval}
}

// Push programs the futures returned by the next submissions.
func (s *Stream) Push(futures ...*Future) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.futures = append(s.futures, futures...)
}

// SetCloseError sets the error returned by Close.
func (s *Stream) SetCloseError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeErr = err
}

func (s *Stream) Submit(columns map[string]interface{}, _ map[string]interface{}) applier.Future {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.submits)
	s.submits = append(s.submits, columns)
	s.events = append(s.events, fmt.Sprintf("submit:%d", n))
	var f *Future
	if s.closed {
		f = Failed(applier.ErrStreamClosed)
	} else if len(s.futures) > 0 {
		f = s.futures[0]
		s.futures = s.futures[1:]
	} else {
		v, err := s.eval(columns)
		f = NewFuture()
		f.Complete(v, err)
	}
	f.onResolve = func() { s.record(fmt.Sprintf("wait:%d", n)) }
	return f
}

func (s *Stream) record(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *Stream) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	s.events = append(s.events, "flush")
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.closeErr
}

// Submits returns the column values of every submission.
func (s *Stream) Submits() []map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]interface{}(nil), s.submits...)
}

// Events returns the submissions, flushes and waits in the order they happened.
func (s *Stream) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

// Flushes returns the number of flushes.
func (s *Stream) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

// Closed returns true if the stream is closed.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Program is a compiled expression opening a single Stream.
type Program struct {
	Stream     *Stream
	Referenced []int
	closed     atomic.Int32
}

var _ applier.Program = (*Program)(nil)

func (p *Program) ReferencedColumns() []int {
	return p.Referenced
}

func (p *Program) NewStream(context.Context) (applier.Stream, error) {
	return p.Stream, nil
}

func (p *Program) Close() error {
	p.closed.Inc()
	return nil
}

// CloseCount returns the number of times Close was called.
func (p *Program) CloseCount() int {
	return int(p.closed.Load())
}

// Compiler returns a compiler handing out p, or failing with a CompileError when err is not nil.
func Compiler(p *Program, err error) applier.Compiler {
	return applier.CompileFunc(func(req applier.CompileRequest) (applier.Program, error) {
		if err != nil {
			return nil, &applier.CompileError{Expression: req.Expression, Err: err}
		}
		return p, nil
	})
}
