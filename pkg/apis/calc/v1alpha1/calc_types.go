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

package v1alpha1

import (
	"fmt"
	"time"

	"github.com/imdario/mergo"
)

// CalcSpec describes a calc step: an expression applied to every record of a stream.
type CalcSpec struct {
	// Name of the calc step, used as metrics label and logger name.
	Name string `json:"name"`
	// Expression is evaluated once per record. A null result drops the record.
	Expression string `json:"expression"`
	// NullParams are named parameters bound to a typed null, the expression may refer to them by name.
	// +optional
	NullParams []NullParam `json:"nullParams,omitempty"`
	// InputSchema is the schema of incoming records.
	InputSchema Schema `json:"inputSchema"`
	// OutputSchema is the schema of emitted records.
	OutputSchema Schema `json:"outputSchema"`
	// DefaultTimezone is used for timestamps that carry no zone information.
	// +optional
	DefaultTimezone string `json:"defaultTimezone,omitempty"`
	// VerifyRowValues enables validating emitted values against the output schema.
	// +optional
	VerifyRowValues bool `json:"verifyRowValues,omitempty"`
	// MaxPending is the number of evaluations a partition may buffer before the oldest one is waited on.
	// +optional
	MaxPending int `json:"maxPending,omitempty"`
	// +optional
	Engine EngineSpec `json:"engine,omitempty"`
	// +optional
	Window WindowSpec `json:"window,omitempty"`
	// +optional
	Runner RunnerSpec `json:"runner,omitempty"`
}

// NullParam is a named parameter whose value is always a null of the given type.
type NullParam struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// EngineSpec configures the expression engine.
type EngineSpec struct {
	// Concurrency is the number of evaluations running at the same time per stream.
	Concurrency int `json:"concurrency,omitempty"`
	// StreamBatchSize is the number of submitted evaluations issued together.
	StreamBatchSize int `json:"streamBatchSize,omitempty"`
	// CompileCacheSize is the number of compiled programs cached across instances.
	CompileCacheSize int `json:"compileCacheSize,omitempty"`
}

// WindowType is the windowing strategy used to assign partitions to records.
type WindowType string

const (
	WindowTypeGlobal  WindowType = "global"
	WindowTypeFixed   WindowType = "fixed"
	WindowTypeSliding WindowType = "sliding"
)

// WindowSpec configures how records are grouped into partitions.
type WindowSpec struct {
	Type WindowType `json:"type,omitempty"`
	// Length is the length of fixed and sliding windows.
	Length time.Duration `json:"length,omitempty"`
	// Slide is the period of sliding windows.
	Slide time.Duration `json:"slide,omitempty"`
}

// RunnerSpec configures the host runtime.
type RunnerSpec struct {
	// BatchSize is the number of records processed between two batch boundaries.
	BatchSize int `json:"batchSize,omitempty"`
	// Shards is the number of evaluator instances running concurrently.
	Shards int `json:"shards,omitempty"`
	// EventTimeField names an input field holding the event time of the record.
	// The envelope event time is used when empty.
	// +optional
	EventTimeField string `json:"eventTimeField,omitempty"`
}

// DefaultCalcSpec returns a spec with all the defaults populated.
func DefaultCalcSpec() CalcSpec {
	return CalcSpec{
		DefaultTimezone: DefaultTimezone,
		VerifyRowValues: DefaultVerifyRowValues,
		MaxPending:      DefaultMaxPending,
		Engine: EngineSpec{
			Concurrency:      DefaultEngineConcurrency,
			StreamBatchSize:  DefaultEngineStreamBatchSize,
			CompileCacheSize: DefaultEngineCompileCacheSize,
		},
		Window: WindowSpec{
			Type:   DefaultWindowType,
			Length: DefaultWindowLength,
		},
		Runner: RunnerSpec{
			BatchSize: DefaultRunnerBatchSize,
			Shards:    DefaultRunnerShards,
		},
	}
}

// ApplyDefaults fills every unset field with its default value.
func (cs *CalcSpec) ApplyDefaults() error {
	if err := mergo.Merge(cs, DefaultCalcSpec()); err != nil {
		return fmt.Errorf("failed to apply defaults, %w", err)
	}
	return nil
}

// GetMaxPending returns the max pending evaluations per partition.
func (cs CalcSpec) GetMaxPending() int {
	if cs.MaxPending <= 0 {
		return DefaultMaxPending
	}
	return cs.MaxPending
}

// GetLocation returns the location of the default timezone.
func (cs CalcSpec) GetLocation() (*time.Location, error) {
	tz := cs.DefaultTimezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q, %w", tz, err)
	}
	return loc, nil
}

// NullParamNames returns the names of the null parameters.
func (cs CalcSpec) NullParamNames() []string {
	names := make([]string, 0, len(cs.NullParams))
	for _, p := range cs.NullParams {
		names = append(names, p.Name)
	}
	return names
}
