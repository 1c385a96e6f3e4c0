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

// Package runner hosts calc evaluators: it reads records from a source, assigns them to windows,
// routes every partition to a shard, and runs each shard's evaluator in batches. The outputs of a
// batch reach the sink only after the batch finished, a failed batch is retried as a whole.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/calc"
	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/metrics"
	"github.com/numaproj/numacalc/pkg/window"
	"github.com/numaproj/numacalc/pkg/window/strategy"
)

// Runner runs a calc step over a source.
type Runner struct {
	spec     v1alpha1.CalcSpec
	compiler applier.Compiler
	source   Source
	sink     Sink
	windower window.Windower
	opts     *options
	running  *atomic.Bool
	log      *zap.SugaredLogger
}

// NewRunner returns a Runner of the spec. Defaults are expected to be applied to the spec.
func NewRunner(spec v1alpha1.CalcSpec, compiler applier.Compiler, source Source, sink Sink, inputOpts ...Option) (*Runner, error) {
	opts := DefaultOptions()
	for _, o := range inputOpts {
		if err := o(opts); err != nil {
			return nil, err
		}
	}
	windower, err := strategy.New(spec.Window)
	if err != nil {
		return nil, err
	}
	if spec.Runner.BatchSize < 1 || spec.Runner.Shards < 1 {
		return nil, fmt.Errorf("runner batchSize and shards should be at least 1")
	}
	return &Runner{
		spec:     spec,
		compiler: compiler,
		source:   source,
		sink:     sink,
		windower: windower,
		opts:     opts,
		running:  atomic.NewBool(false),
		log:      opts.logger.With("calc", spec.Name),
	}, nil
}

// IsHealthy returns an error when the runner is not running.
func (r *Runner) IsHealthy(context.Context) error {
	if !r.running.Load() {
		return errors.New("calc runner is not running")
	}
	return nil
}

// Run processes the source until it is exhausted, a batch keeps failing, or ctx is done.
// Every evaluator is torn down before Run returns.
func (r *Runner) Run(ctx context.Context) (err error) {
	workers := make([]*shardWorker, r.spec.Runner.Shards)
	for i := range workers {
		w := newShardWorker(r.spec.Name, i, r.sink, r.spec.Runner.BatchSize, r.opts)
		calcOpts := append([]calc.Option{calc.WithLogger(w.log)}, r.opts.calcOpts...)
		if w.evaluator, err = calc.NewEvaluator(r.spec, r.compiler, w, calcOpts...); err != nil {
			return err
		}
		workers[i] = w
	}
	defer func() {
		for _, w := range workers {
			if tdErr := w.evaluator.Teardown(context.Background()); tdErr != nil {
				err = multierr.Append(err, fmt.Errorf("failed to tear down shard %d, %w", w.index, tdErr))
			}
		}
	}()
	for _, w := range workers {
		if err := w.evaluator.Setup(ctx); err != nil {
			return fmt.Errorf("failed to set up shard %d, %w", w.index, err)
		}
	}

	r.running.Store(true)
	defer r.running.Store(false)
	r.log.Infow("Start running calc", zap.Int("shards", len(workers)), zap.Int("batchSize", r.spec.Runner.BatchSize), zap.String("window", string(r.windower.Type())))

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range workers {
		w := w
		g.Go(func() error {
			return w.run(gctx)
		})
	}
	g.Go(func() error {
		defer func() {
			for _, w := range workers {
				close(w.in)
			}
		}()
		return r.read(gctx, workers)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	r.log.Info("Source is exhausted, calc is done")
	return nil
}

// read routes every record of the source to the shards of its partitions.
func (r *Runner) read(ctx context.Context, workers []*shardWorker) error {
	for {
		rec, err := r.source.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			metrics.ReadErrorCount.WithLabelValues(r.spec.Name).Inc()
			return err
		}
		metrics.ReadCount.WithLabelValues(r.spec.Name).Inc()
		for _, id := range r.windower.AssignWindows(rec.EventTime) {
			id = id.WithSlot(rec.Key)
			w := workers[shardFor(id, len(workers))]
			select {
			case w.in <- item{row: rec.Row, eventTime: rec.EventTime, id: id}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
