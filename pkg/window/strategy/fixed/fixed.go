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

// Package fixed assigns records to fixed windows, also known as tumbling windows: consecutive,
// non-overlapping windows of the same length aligned on the epoch.
package fixed

import (
	"time"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/window"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

// Fixed assigns exactly one window per record.
type Fixed struct {
	Length time.Duration
}

var _ window.Windower = (*Fixed)(nil)

func NewFixed(length time.Duration) *Fixed {
	return &Fixed{Length: length}
}

// AssignWindows returns the window [start, start+length) holding the event time. A record on a
// boundary starts the next window.
func (f *Fixed) AssignWindows(eventTime time.Time) []partition.ID {
	start := eventTime.Truncate(f.Length)
	return []partition.ID{{Start: start, End: start.Add(f.Length)}}
}

func (f *Fixed) Type() v1alpha1.WindowType {
	return v1alpha1.WindowTypeFixed
}
