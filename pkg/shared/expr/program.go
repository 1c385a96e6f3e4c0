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
	"errors"
	"time"

	"github.com/antonmedv/expr"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/metrics"
)

var errProgramClosed = errors.New("program is closed")

// program is a compiled expression bound to the stream settings of its compiler.
type program struct {
	name            string
	expression      string
	compiled        *compiled
	concurrency     int
	streamBatchSize int
	closed          atomic.Bool
	log             *zap.SugaredLogger
}

var _ applier.Program = (*program)(nil)

func (p *program) ReferencedColumns() []int {
	result := make([]int, len(p.compiled.referenced))
	copy(result, p.compiled.referenced)
	return result
}

func (p *program) NewStream(ctx context.Context) (applier.Stream, error) {
	if p.closed.Load() {
		return nil, errProgramClosed
	}
	cctx, cancel := context.WithCancel(ctx)
	p.log.Debugw("Opened evaluation stream", zap.Int("concurrency", p.concurrency), zap.Int("streamBatchSize", p.streamBatchSize))
	return &stream{
		program: p,
		ctx:     cctx,
		cancel:  cancel,
		sem:     semaphore.NewWeighted(int64(p.concurrency)),
		pending: make([]*future, 0, p.streamBatchSize),
	}, nil
}

func (p *program) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return errProgramClosed
	}
	p.log.Debug("Closed program")
	return nil
}

// evaluate runs the program against the given columns and parameters.
func (p *program) evaluate(columns map[string]interface{}, params map[string]interface{}) (interface{}, error) {
	env := make(map[string]interface{}, len(p.compiled.base)+len(columns)+len(params))
	for k, v := range p.compiled.base {
		env[k] = v
	}
	for k, v := range params {
		env[k] = v
	}
	for k, v := range columns {
		env[k] = v
	}
	start := time.Now()
	result, err := expr.Run(p.compiled.program, env)
	metrics.EvaluationTime.WithLabelValues(p.name).Observe(float64(time.Since(start).Microseconds()))
	metrics.EvaluationCount.WithLabelValues(p.name).Inc()
	if err != nil {
		metrics.EvaluationErrorCount.WithLabelValues(p.name, "evaluation").Inc()
		return nil, &applier.EvaluationError{Expression: p.expression, Err: err}
	}
	return result, nil
}
