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
	"regexp"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Validate checks the spec is complete and consistent. Defaults are expected to be applied already.
func (cs *CalcSpec) Validate() error {
	if cs.Expression == "" {
		return fmt.Errorf("expression is required")
	}
	if err := cs.InputSchema.validate(); err != nil {
		return fmt.Errorf("invalid input schema, %w", err)
	}
	if err := cs.OutputSchema.validate(); err != nil {
		return fmt.Errorf("invalid output schema, %w", err)
	}
	seen := make(map[string]struct{}, len(cs.NullParams))
	for _, p := range cs.NullParams {
		if !identifierRegex.MatchString(p.Name) {
			return fmt.Errorf("invalid null param name %q", p.Name)
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("duplicate null param name %q", p.Name)
		}
		seen[p.Name] = struct{}{}
		if !p.Type.IsValid() {
			return fmt.Errorf("null param %q has an unsupported type %q", p.Name, p.Type)
		}
	}
	if cs.MaxPending < 1 {
		return fmt.Errorf("maxPending should be at least 1, got %d", cs.MaxPending)
	}
	if _, err := cs.GetLocation(); err != nil {
		return err
	}
	if cs.Engine.Concurrency < 1 {
		return fmt.Errorf("engine concurrency should be at least 1, got %d", cs.Engine.Concurrency)
	}
	if cs.Engine.StreamBatchSize < 1 {
		return fmt.Errorf("engine streamBatchSize should be at least 1, got %d", cs.Engine.StreamBatchSize)
	}
	if err := cs.Window.validate(); err != nil {
		return fmt.Errorf("invalid window, %w", err)
	}
	if cs.Runner.BatchSize < 1 {
		return fmt.Errorf("runner batchSize should be at least 1, got %d", cs.Runner.BatchSize)
	}
	if cs.Runner.Shards < 1 {
		return fmt.Errorf("runner shards should be at least 1, got %d", cs.Runner.Shards)
	}
	if f := cs.Runner.EventTimeField; f != "" && cs.InputSchema.IndexOf(f) < 0 {
		return fmt.Errorf("event time field %q is not in the input schema", f)
	}
	return nil
}

func (ws WindowSpec) validate() error {
	switch ws.Type {
	case WindowTypeGlobal:
		return nil
	case WindowTypeFixed:
		if ws.Length <= 0 {
			return fmt.Errorf("length should be positive for fixed windows")
		}
	case WindowTypeSliding:
		if ws.Length <= 0 || ws.Slide <= 0 {
			return fmt.Errorf("length and slide should be positive for sliding windows")
		}
		if ws.Slide > ws.Length {
			return fmt.Errorf("slide %v should not be longer than length %v", ws.Slide, ws.Length)
		}
	default:
		return fmt.Errorf("unsupported window type %q", ws.Type)
	}
	return nil
}
