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

package calc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/numaproj/numacalc/pkg/shared/logging"
)

// options for the evaluator
type options struct {
	// maxPending overrides the max pending evaluations per partition of the spec when positive
	maxPending int
	// cancelOnAbandon cancels the pending evaluations of an abandoned batch
	cancelOnAbandon bool
	// nullPolicy decides what happens to null results
	nullPolicy NullPolicy
	// logger is used to pass the logger variable
	logger *zap.SugaredLogger
}

type Option func(*options) error

func DefaultOptions() *options {
	return &options{
		cancelOnAbandon: true,
		nullPolicy:      NullPolicyDrop,
		logger:          logging.NewLogger(),
	}
}

// WithMaxPending sets the max pending evaluations per partition
func WithMaxPending(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("max pending should be at least 1, got %d", n)
		}
		o.maxPending = n
		return nil
	}
}

// WithCancelOnAbandon sets whether the pending evaluations of an abandoned batch are cancelled
func WithCancelOnAbandon(b bool) Option {
	return func(o *options) error {
		o.cancelOnAbandon = b
		return nil
	}
}

// WithNullPolicy sets what happens to null results
func WithNullPolicy(p NullPolicy) Option {
	return func(o *options) error {
		switch p {
		case NullPolicyDrop, NullPolicyError:
			o.nullPolicy = p
			return nil
		default:
			return fmt.Errorf("unsupported null policy %v", p)
		}
	}
}

// WithLogger is used to return logger information
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) error {
		o.logger = l
		return nil
	}
}
