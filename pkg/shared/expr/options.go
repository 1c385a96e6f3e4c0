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
	"fmt"

	"go.uber.org/zap"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/shared/logging"
)

// options for the expression engine
type options struct {
	// concurrency is the number of evaluations running at the same time per stream
	concurrency int
	// streamBatchSize is the number of submitted evaluations issued together
	streamBatchSize int
	// compileCacheSize is the number of compiled programs kept in memory
	compileCacheSize int
	// logger is used to pass the logger variable
	logger *zap.SugaredLogger
}

type Option func(*options) error

func DefaultOptions() *options {
	return &options{
		concurrency:      v1alpha1.DefaultEngineConcurrency,
		streamBatchSize:  v1alpha1.DefaultEngineStreamBatchSize,
		compileCacheSize: v1alpha1.DefaultEngineCompileCacheSize,
		logger:           logging.NewLogger(),
	}
}

// WithConcurrency sets the number of evaluations running at the same time per stream
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("concurrency should be at least 1, got %d", n)
		}
		o.concurrency = n
		return nil
	}
}

// WithStreamBatchSize sets the number of submitted evaluations issued together
func WithStreamBatchSize(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("stream batch size should be at least 1, got %d", n)
		}
		o.streamBatchSize = n
		return nil
	}
}

// WithCompileCacheSize sets the number of compiled programs kept in memory
func WithCompileCacheSize(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("compile cache size should be at least 1, got %d", n)
		}
		o.compileCacheSize = n
		return nil
	}
}

// WithEngineSpec applies the engine section of a calc spec, unset fields keep their defaults
func WithEngineSpec(spec v1alpha1.EngineSpec) Option {
	return func(o *options) error {
		if spec.Concurrency > 0 {
			o.concurrency = spec.Concurrency
		}
		if spec.StreamBatchSize > 0 {
			o.streamBatchSize = spec.StreamBatchSize
		}
		if spec.CompileCacheSize > 0 {
			o.compileCacheSize = spec.CompileCacheSize
		}
		return nil
	}
}

// WithLogger is used to return logger information
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}
