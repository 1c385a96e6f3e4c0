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
)

// State is the lifecycle state of an Evaluator.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateBatchActive
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateReady:
		return "Ready"
	case StateBatchActive:
		return "BatchActive"
	case StateDraining:
		return "Draining"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// InvalidStateError is returned when a lifecycle operation is called in a state which does not allow it.
type InvalidStateError struct {
	Operation string
	State     State
	// Failed is true when the current batch failed and has to be restarted.
	Failed bool
}

func (e *InvalidStateError) Error() string {
	if e.Failed {
		return fmt.Sprintf("cannot %s, the current batch failed, start a new batch", e.Operation)
	}
	return fmt.Sprintf("cannot %s in state %s", e.Operation, e.State)
}

// NullPolicy decides what happens to a null result.
type NullPolicy int

const (
	// NullPolicyDrop drops the record, a null result means the record is filtered out.
	NullPolicyDrop NullPolicy = iota
	// NullPolicyError fails the batch with an EvaluationError.
	NullPolicyError
)

func (p NullPolicy) String() string {
	switch p {
	case NullPolicyDrop:
		return "drop"
	case NullPolicyError:
		return "error"
	default:
		return fmt.Sprintf("NullPolicy(%d)", int(p))
	}
}
