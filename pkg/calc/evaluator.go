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

// Package calc implements the calc step: a compiled scalar expression applied asynchronously to every
// record of a stream.
//
// Records are processed one at a time by a single goroutine. Each record is submitted to the
// expression engine, unless it equals the previous record in which case the previous evaluation is
// reused, and the returned future is queued in the pending queue of the record's partition. Results
// are emitted in the order the records arrived within a partition, whatever the order in which the
// evaluations finish. A null result drops the record.
//
// The lifecycle of an Evaluator is
//
//	Uninitialized -Setup-> Ready -StartBatch-> BatchActive -FinishBatch-> Draining -Teardown-> Closed
//
// with StartBatch allowed again from Draining. FinishBatch drains every partition, so no state survives
// a batch. A failed batch is abandoned by starting a new one.
package calc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/calc/dedup"
	"github.com/numaproj/numacalc/pkg/calc/pending"
	"github.com/numaproj/numacalc/pkg/metrics"
	"github.com/numaproj/numacalc/pkg/row"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

var errNullResult = errors.New("expression evaluated to null")

// Emitter receives the output rows of a calc step. Within a partition rows are emitted in the order
// their records were processed.
type Emitter interface {
	Emit(ctx context.Context, id partition.ID, timestamp time.Time, r row.Row) error
}

// EmitterFunc utility function used to create an Emitter implementation
type EmitterFunc func(ctx context.Context, id partition.ID, timestamp time.Time, r row.Row) error

func (f EmitterFunc) Emit(ctx context.Context, id partition.ID, timestamp time.Time, r row.Row) error {
	return f(ctx, id, timestamp, r)
}

// Evaluator applies the expression of a calc spec to records. It is not safe for concurrent use,
// every worker owns its own Evaluator.
type Evaluator struct {
	name     string
	spec     v1alpha1.CalcSpec
	compiler applier.Compiler
	emitter  Emitter
	opts     *options

	state  State
	failed bool

	program    applier.Program
	stream     applier.Stream
	referenced []int
	nullParams map[string]interface{}
	loc        *time.Location

	cache   *dedup.Cache
	pending *pending.Manager

	abandoned  int
	batchStart time.Time
	log        *zap.SugaredLogger
}

// NewEvaluator returns an Evaluator of the given spec. Expressions are compiled by compiler and output
// rows are handed to emitter.
func NewEvaluator(spec v1alpha1.CalcSpec, compiler applier.Compiler, emitter Emitter, inputOpts ...Option) (*Evaluator, error) {
	opts := DefaultOptions()
	for _, o := range inputOpts {
		if err := o(opts); err != nil {
			return nil, err
		}
	}
	maxPending := spec.GetMaxPending()
	if opts.maxPending > 0 {
		maxPending = opts.maxPending
	}
	name := spec.Name
	if name == "" {
		name = "calc"
	}
	return &Evaluator{
		name:     name,
		spec:     spec,
		compiler: compiler,
		emitter:  emitter,
		opts:     opts,
		state:    StateUninitialized,
		cache:    dedup.NewCache(),
		pending:  pending.NewManager(maxPending),
		log:      opts.logger.With("calc", name),
	}, nil
}

// State returns the lifecycle state.
func (e *Evaluator) State() State {
	return e.state
}

// Failed returns true if the current batch failed.
func (e *Evaluator) Failed() bool {
	return e.failed
}

// ReferencedColumns returns the indices of the input columns the expression reads.
func (e *Evaluator) ReferencedColumns() []int {
	return e.referenced
}

// Pending returns the number of pending evaluations of a partition.
func (e *Evaluator) Pending(id partition.ID) int {
	return e.pending.Len(id)
}

// Abandoned returns the number of pending evaluations cancelled because their batch was abandoned.
func (e *Evaluator) Abandoned() int {
	return e.abandoned
}

// Setup compiles the expression and opens the evaluation stream. A CompileError leaves the evaluator
// unusable, Teardown is still expected.
func (e *Evaluator) Setup(ctx context.Context) error {
	if e.state != StateUninitialized {
		return &InvalidStateError{Operation: "setup", State: e.state}
	}
	loc, err := e.spec.GetLocation()
	if err != nil {
		return err
	}
	fields := e.spec.InputSchema.Fields
	columnTypes := make([]v1alpha1.FieldType, len(fields))
	for i, f := range fields {
		// a nullable column may hold nil, the type checker must accept it as any value
		if f.Nullable {
			columnTypes[i] = v1alpha1.FieldTypeAny
		} else {
			columnTypes[i] = f.Type
		}
	}
	program, err := e.compiler.Compile(applier.CompileRequest{
		Name:            e.name,
		Expression:      e.spec.Expression,
		NullParams:      e.spec.NullParams,
		ColumnTypes:     columnTypes,
		DefaultTimezone: e.spec.DefaultTimezone,
	})
	if err != nil {
		e.log.Errorw("Failed to compile the expression", zap.String("expression", e.spec.Expression), zap.Error(err))
		return err
	}
	referenced := program.ReferencedColumns()
	for _, i := range referenced {
		if i < 0 || i >= len(fields) {
			_ = program.Close()
			return &applier.CompileError{Expression: e.spec.Expression, Err: fmt.Errorf("column %d is not in the input schema", i)}
		}
	}
	stream, err := program.NewStream(ctx)
	if err != nil {
		_ = program.Close()
		return fmt.Errorf("failed to open the evaluation stream, %w", err)
	}
	nullParams := make(map[string]interface{}, len(e.spec.NullParams))
	for _, p := range e.spec.NullParams {
		nullParams[p.Name] = nil
	}

	e.program = program
	e.stream = stream
	e.referenced = referenced
	e.nullParams = nullParams
	e.loc = loc
	e.state = StateReady
	e.log.Infow("Calc evaluator is ready", zap.String("expression", e.spec.Expression), zap.Ints("referencedColumns", referenced), zap.Strings("nullParams", e.spec.NullParamNames()), zap.Int("maxPending", e.pending.MaxPending()))
	return nil
}

// StartBatch starts a batch. The dedup cache is reset, and the pending evaluations left by a failed
// batch are abandoned.
func (e *Evaluator) StartBatch(ctx context.Context) error {
	switch {
	case e.state == StateReady, e.state == StateDraining:
	case e.state == StateBatchActive && e.failed:
	default:
		return &InvalidStateError{Operation: "start a batch", State: e.state}
	}
	e.abandon()
	e.cache.Reset()
	e.state = StateBatchActive
	e.failed = false
	e.batchStart = time.Now()
	e.log.Debug("Started a batch")
	return nil
}

// Process evaluates a record. Every result which is ready, in order, is emitted before it returns;
// when the partition holds more than max pending evaluations, the oldest ones are waited on.
func (e *Evaluator) Process(ctx context.Context, r row.Row, timestamp time.Time, id partition.ID) error {
	if e.state != StateBatchActive || e.failed {
		return &InvalidStateError{Operation: "process a record", State: e.state, Failed: e.failed}
	}
	if len(r) != e.spec.InputSchema.FieldCount() {
		return e.fail(row.SchemaValidationError{Message: fmt.Sprintf("record has %d values, input schema has %d fields", len(r), e.spec.InputSchema.FieldCount())})
	}
	metrics.ProcessedCount.WithLabelValues(e.name).Inc()

	f, ok := e.cache.Check(r)
	if ok {
		metrics.DedupHitCount.WithLabelValues(e.name).Inc()
	} else {
		columns := make(map[string]interface{}, len(e.referenced))
		for _, i := range e.referenced {
			columns[applier.ColumnName(i)] = r[i]
		}
		f = e.stream.Submit(columns, e.nullParams)
		metrics.SubmitCount.WithLabelValues(e.name).Inc()
		e.cache.Update(r, f)
	}
	e.pending.Enqueue(id, timestamp, f)

	forced, err := e.pending.DrainReady(ctx, id, e.emitFunc(ctx))
	if forced > 0 {
		metrics.ForcedDrainCount.WithLabelValues(e.name).Add(float64(forced))
		e.log.Debugw("Waited on pending evaluations", zap.String("partitionID", id.String()), zap.Int("forced", forced))
	}
	if err != nil {
		return e.fail(err)
	}
	metrics.PendingDepth.WithLabelValues(e.name).Observe(float64(e.pending.Len(id)))
	return nil
}

// FinishBatch flushes the evaluation stream and drains every partition. When it returns without error
// every pending evaluation was emitted.
func (e *Evaluator) FinishBatch(ctx context.Context) error {
	if e.state != StateBatchActive || e.failed {
		return &InvalidStateError{Operation: "finish a batch", State: e.state, Failed: e.failed}
	}
	e.stream.Flush()
	emit := e.emitFunc(ctx)
	for _, id := range e.pending.Partitions() {
		if err := e.pending.DrainAll(ctx, id, emit); err != nil {
			return e.fail(err)
		}
	}
	e.state = StateDraining
	metrics.BatchProcessingTime.WithLabelValues(e.name).Observe(float64(time.Since(e.batchStart).Microseconds()))
	e.log.Debugw("Finished a batch", zap.Duration("duration", time.Since(e.batchStart)))
	return nil
}

// Teardown abandons any pending evaluation, then closes the stream and the program. It runs once per
// evaluator, whether Setup succeeded or not.
func (e *Evaluator) Teardown(ctx context.Context) error {
	if e.state == StateClosed {
		return &InvalidStateError{Operation: "tear down", State: e.state}
	}
	e.abandon()
	e.cache.Reset()
	var err error
	if e.stream != nil {
		err = multierr.Append(err, e.stream.Close())
	}
	if e.program != nil {
		err = multierr.Append(err, e.program.Close())
	}
	e.state = StateClosed
	if err != nil {
		e.log.Errorw("Failed to tear down the calc evaluator", zap.Error(err))
		return err
	}
	e.log.Info("Calc evaluator is closed")
	return nil
}

// abandon drops the pending evaluations left by a failed batch, cancelling them if configured.
func (e *Evaluator) abandon() {
	if e.pending.Total() == 0 {
		return
	}
	n := e.pending.Clear(e.opts.cancelOnAbandon)
	if e.opts.cancelOnAbandon {
		e.abandoned += n
		metrics.AbandonedCount.WithLabelValues(e.name).Add(float64(n))
	}
	e.log.Infow("Abandoned pending evaluations", zap.Int("count", n), zap.Bool("cancelled", e.opts.cancelOnAbandon))
}

func (e *Evaluator) fail(err error) error {
	e.failed = true
	metrics.BatchErrorCount.WithLabelValues(e.name, errorReason(err)).Inc()
	e.log.Errorw("Batch failed", zap.Error(err))
	return err
}

func (e *Evaluator) emitFunc(ctx context.Context) pending.EmitFunc {
	return func(id partition.ID, timestamp time.Time, value interface{}) error {
		if value == nil {
			if e.opts.nullPolicy == NullPolicyError {
				return &applier.EvaluationError{Expression: e.spec.Expression, Err: errNullResult}
			}
			metrics.DroppedCount.WithLabelValues(e.name).Inc()
			return nil
		}
		out, err := row.FromResult(value, e.spec.OutputSchema, e.spec.VerifyRowValues, e.loc)
		if err != nil {
			return err
		}
		if err := e.emitter.Emit(ctx, id, timestamp, out); err != nil {
			return err
		}
		metrics.EmittedCount.WithLabelValues(e.name).Inc()
		return nil
	}
}

func errorReason(err error) string {
	var sve row.SchemaValidationError
	switch {
	case applier.IsEvaluationError(err):
		return "evaluation"
	case errors.As(err, &sve):
		return "schema"
	case errors.Is(err, applier.ErrCancelled), errors.Is(err, applier.ErrStreamClosed):
		return "cancelled"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "context"
	default:
		return "emit"
	}
}
