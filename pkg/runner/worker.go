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

package runner

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/numaproj/numacalc/pkg/calc"
	"github.com/numaproj/numacalc/pkg/metrics"
	"github.com/numaproj/numacalc/pkg/row"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

// item is a record assigned to one partition.
type item struct {
	row       row.Row
	eventTime time.Time
	id        partition.ID
}

// shardWorker owns one evaluator and processes the records routed to its shard in batches.
type shardWorker struct {
	name      string
	index     int
	shard     string
	evaluator *calc.Evaluator
	sink      Sink
	batchSize int
	opts      *options
	in        chan item
	// outputs buffers the emissions of the current batch attempt until the batch is committed.
	outputs []Output
	log     *zap.SugaredLogger
}

// Emit buffers an output row of the current batch.
func (w *shardWorker) Emit(_ context.Context, id partition.ID, timestamp time.Time, r row.Row) error {
	w.outputs = append(w.outputs, Output{EventTime: timestamp, Window: id, Row: r})
	return nil
}

func (w *shardWorker) run(ctx context.Context) error {
	batch := make([]item, 0, w.batchSize)
	ticker := time.NewTicker(w.opts.batchTimeout)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case it, ok := <-w.in:
			if !ok {
				if len(batch) > 0 {
					return w.processBatch(ctx, batch)
				}
				return nil
			}
			batch = append(batch, it)
			if len(batch) >= w.batchSize {
				if err := w.processBatch(ctx, batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				if err := w.processBatch(ctx, batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		}
	}
}

// processBatch runs a batch until it succeeds, retrying the whole batch with backoff. The outputs of
// a batch are written to the sink only once the batch finished.
func (w *shardWorker) processBatch(ctx context.Context, batch []item) error {
	batchID := uuid.NewString()
	log := w.log.With("batchID", batchID)
	var lastErr error
	attempts := 0
	success := false
	ctxClosedErr := wait.ExponentialBackoffWithContext(ctx, w.opts.retryBackoff, func(ctx context.Context) (done bool, err error) {
		attempts++
		if lastErr = w.tryBatch(ctx, batch); lastErr != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			var ioe *InvalidOutputError
			if errors.As(lastErr, &ioe) {
				return false, lastErr
			}
			metrics.RetriedBatchCount.WithLabelValues(w.name, w.shard).Inc()
			log.Warnw("Batch failed, retrying", zap.Int("attempt", attempts), zap.Error(lastErr))
			return false, nil
		}
		success = true
		return true, nil
	})
	if success {
		return nil
	}
	if lastErr == nil {
		lastErr = ctxClosedErr
	}
	log.Errorw("Batch failed", zap.Int("attempts", attempts), zap.Error(lastErr))
	return fmt.Errorf("batch %s of shard %d failed after %d attempts, %w", batchID, w.index, attempts, lastErr)
}

func (w *shardWorker) tryBatch(ctx context.Context, batch []item) error {
	w.outputs = w.outputs[:0]
	if err := w.evaluator.StartBatch(ctx); err != nil {
		return err
	}
	for _, it := range batch {
		if err := w.evaluator.Process(ctx, it.row, it.eventTime, it.id); err != nil {
			return err
		}
	}
	if err := w.evaluator.FinishBatch(ctx); err != nil {
		return err
	}
	if err := w.sink.Write(ctx, w.outputs); err != nil {
		return err
	}
	metrics.WriteCount.WithLabelValues(w.name, w.shard).Add(float64(len(w.outputs)))
	metrics.CommittedBatchCount.WithLabelValues(w.name, w.shard).Inc()
	w.log.Debugw("Committed a batch", zap.Int("records", len(batch)), zap.Int("outputs", len(w.outputs)))
	return nil
}

func newShardWorker(name string, index int, sink Sink, batchSize int, opts *options) *shardWorker {
	return &shardWorker{
		name:      name,
		index:     index,
		shard:     strconv.Itoa(index),
		sink:      sink,
		batchSize: batchSize,
		opts:      opts,
		in:        make(chan item, batchSize),
		log:       opts.logger.With("shard", index),
	}
}
