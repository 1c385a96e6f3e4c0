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
	"fmt"
	"time"

	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/calc"
	"github.com/numaproj/numacalc/pkg/shared/logging"
	"github.com/numaproj/numacalc/pkg/shared/util"
)

const defaultBatchTimeout = time.Second

// options for the runner
type options struct {
	// batchTimeout is how long a partially filled batch waits for more records
	batchTimeout time.Duration
	// retryBackoff is the backoff of failed batches
	retryBackoff wait.Backoff
	// calcOpts are passed to every evaluator
	calcOpts []calc.Option
	// logger is used to pass the logger variable
	logger *zap.SugaredLogger
}

type Option func(*options) error

func DefaultOptions() *options {
	batchTimeout := util.LookupEnvDurationOr(v1alpha1.EnvBatchTimeout, defaultBatchTimeout)
	if batchTimeout <= 0 {
		batchTimeout = defaultBatchTimeout
	}
	return &options{
		batchTimeout: batchTimeout,
		retryBackoff: util.BatchRetryBackoff,
		logger:       logging.NewLogger(),
	}
}

// WithBatchTimeout sets how long a partially filled batch waits for more records
func WithBatchTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("batch timeout should be positive, got %v", d)
		}
		o.batchTimeout = d
		return nil
	}
}

// WithRetryBackoff sets the backoff of failed batches
func WithRetryBackoff(b wait.Backoff) Option {
	return func(o *options) error {
		o.retryBackoff = b
		return nil
	}
}

// WithCalcOptions sets the options of the evaluators
func WithCalcOptions(opts ...calc.Option) Option {
	return func(o *options) error {
		o.calcOpts = append(o.calcOpts, opts...)
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
