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
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/metrics"
)

// stream collects submitted evaluations and issues them in batches of streamBatchSize. The
// evaluations of an issued batch run concurrently, bounded by the concurrency of the program.
type stream struct {
	program *program
	ctx     context.Context
	cancel  context.CancelFunc
	sem     *semaphore.Weighted
	wg      sync.WaitGroup

	mu sync.Mutex
	// pending are the submitted futures which are not issued yet.
	pending []*future
	closed  bool
}

var _ applier.Stream = (*stream)(nil)

func (s *stream) Submit(columns map[string]interface{}, params map[string]interface{}) applier.Future {
	f := newFuture(s, columns, params)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		f.fail(applier.ErrStreamClosed)
		return f
	}
	s.pending = append(s.pending, f)
	if len(s.pending) >= s.program.streamBatchSize {
		s.issueLocked()
	}
	return f
}

func (s *stream) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issueLocked()
}

// issue issues the batch holding f, if f is not issued yet.
func (s *stream) issue(f *future) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !f.issued {
		s.issueLocked()
	}
}

func (s *stream) issueLocked() {
	if s.closed || len(s.pending) == 0 {
		return
	}
	batch := s.pending
	s.pending = make([]*future, 0, s.program.streamBatchSize)
	for _, f := range batch {
		f.issued = true
	}
	s.wg.Add(1)
	go s.run(batch)
}

func (s *stream) run(batch []*future) {
	defer s.wg.Done()
	for i, f := range batch {
		if err := s.sem.Acquire(s.ctx, 1); err != nil {
			for _, rest := range batch[i:] {
				rest.fail(applier.ErrStreamClosed)
			}
			return
		}
		s.wg.Add(1)
		go func(f *future) {
			defer s.wg.Done()
			defer s.sem.Release(1)
			s.evaluate(f)
		}(f)
	}
}

func (s *stream) evaluate(f *future) {
	if s.ctx.Err() != nil {
		f.fail(applier.ErrStreamClosed)
		return
	}
	if !f.start() {
		return
	}
	gauge := metrics.InflightEvaluations.WithLabelValues(s.program.name)
	gauge.Inc()
	defer gauge.Dec()
	f.complete(s.program.evaluate(f.columns, f.params))
}

// Close stops the stream. Evaluations which have not started fail with ErrStreamClosed,
// running ones are waited for.
func (s *stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	unissued := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, f := range unissued {
		f.fail(applier.ErrStreamClosed)
	}
	s.cancel()
	s.wg.Wait()
	s.program.log.Debugw("Closed evaluation stream", zap.Int("unissued", len(unissued)))
	return nil
}
