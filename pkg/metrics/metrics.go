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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	LabelVersion   = "version"
	LabelPlatform  = "platform"
	LabelComponent = "component"
	LabelCalc      = "calc"
	LabelShard     = "shard"
	LabelReason    = "reason"
)

var (
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A metric with a constant value '1', labeled by numacalc binary version, platform, and other information",
	}, []string{LabelComponent, LabelVersion, LabelPlatform})
)

// Calc evaluator metrics
var (
	// ProcessedCount is used to indicate the number of records processed
	ProcessedCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "calc",
		Name:      "processed_total",
		Help:      "Total number of records processed",
	}, []string{LabelCalc})

	// DedupHitCount is used to indicate the number of records which reused the evaluation of the previous record
	DedupHitCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "calc",
		Name:      "dedup_hit_total",
		Help:      "Total number of records served by the dedup cache",
	}, []string{LabelCalc})

	// SubmitCount is used to indicate the number of evaluations submitted to the engine
	SubmitCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "calc",
		Name:      "submit_total",
		Help:      "Total number of evaluations submitted to the expression engine",
	}, []string{LabelCalc})

	// ForcedDrainCount is used to indicate the number of times a partition waited on its oldest evaluation
	ForcedDrainCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "calc",
		Name:      "forced_drain_total",
		Help:      "Total number of blocking waits on the oldest pending evaluation of a full partition",
	}, []string{LabelCalc})

	// EmittedCount is used to indicate the number of rows emitted
	EmittedCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "calc",
		Name:      "emitted_total",
		Help:      "Total number of rows emitted",
	}, []string{LabelCalc})

	// DroppedCount is used to indicate the number of rows dropped because the expression evaluated to null
	DroppedCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "calc",
		Name:      "dropped_total",
		Help:      "Total number of null results dropped",
	}, []string{LabelCalc})

	// AbandonedCount is used to indicate the number of pending evaluations cancelled when a batch was abandoned
	AbandonedCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "calc",
		Name:      "abandoned_total",
		Help:      "Total number of pending evaluations abandoned",
	}, []string{LabelCalc})

	// BatchErrorCount is used to indicate the number of failed batches
	BatchErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "calc",
		Name:      "batch_error_total",
		Help:      "Total number of failed batches",
	}, []string{LabelCalc, LabelReason})

	// BatchProcessingTime is a histogram to Observe batch processing times from start to finish
	BatchProcessingTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "calc",
		Name:      "batch_processing_time",
		Help:      "Processing times of a batch (100 microseconds to 15 minutes)",
		Buckets:   prometheus.ExponentialBucketsRange(100, 60000000*15, 60),
	}, []string{LabelCalc})

	// PendingDepth is a histogram to Observe the depth of a partition queue after every record
	PendingDepth = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "calc",
		Name:      "pending_depth",
		Help:      "Number of pending evaluations of a partition after a record is processed",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{LabelCalc})
)

// Expression engine metrics
var (
	// EvaluationCount is used to indicate the number of evaluations run by the engine
	EvaluationCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "engine",
		Name:      "evaluation_total",
		Help:      "Total number of expression evaluations",
	}, []string{LabelCalc})

	// EvaluationErrorCount is used to indicate the number of failed evaluations
	EvaluationErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "engine",
		Name:      "evaluation_error_total",
		Help:      "Total number of failed expression evaluations",
	}, []string{LabelCalc, LabelReason})

	// EvaluationTime is a histogram to Observe the evaluation time of a single expression
	EvaluationTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Subsystem: "engine",
		Name:      "evaluation_time",
		Help:      "Evaluation times of an expression (1 microsecond to 1 minute)",
		Buckets:   prometheus.ExponentialBucketsRange(1, 60000000, 40),
	}, []string{LabelCalc})

	// InflightEvaluations is used to indicate the number of evaluations issued but not finished
	InflightEvaluations = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Subsystem: "engine",
		Name:      "inflight_evaluations",
		Help:      "Number of issued evaluations which have not finished",
	}, []string{LabelCalc})

	// CompileCacheHitCount is used to indicate the number of compilations served by the program cache
	CompileCacheHitCount = promauto.NewCounter(prometheus.CounterOpts{
		Subsystem: "engine",
		Name:      "compile_cache_hit_total",
		Help:      "Total number of compilations served from the program cache",
	})
)

// Runner metrics
var (
	// ReadCount is used to indicate the number of records read from the source
	ReadCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "runner",
		Name:      "read_total",
		Help:      "Total number of records read",
	}, []string{LabelCalc})

	// ReadErrorCount is used to indicate the number of records which could not be decoded
	ReadErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "runner",
		Name:      "read_error_total",
		Help:      "Total number of read errors",
	}, []string{LabelCalc})

	// WriteCount is used to indicate the number of rows written to the sink
	WriteCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "runner",
		Name:      "write_total",
		Help:      "Total number of rows written",
	}, []string{LabelCalc, LabelShard})

	// CommittedBatchCount is used to indicate the number of batches committed to the sink
	CommittedBatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "runner",
		Name:      "committed_batch_total",
		Help:      "Total number of committed batches",
	}, []string{LabelCalc, LabelShard})

	// RetriedBatchCount is used to indicate the number of batch retries
	RetriedBatchCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Subsystem: "runner",
		Name:      "retried_batch_total",
		Help:      "Total number of batch retries",
	}, []string{LabelCalc, LabelShard})
)
