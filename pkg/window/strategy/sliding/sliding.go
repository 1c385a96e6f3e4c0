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

// Package sliding assigns records to sliding windows: windows of a fixed length starting every slide,
// so a record belongs to length/slide windows when the slide divides the length.
package sliding

import (
	"time"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/window"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

// Sliding assigns overlapping windows.
type Sliding struct {
	Length time.Duration
	// Slide is the period between the starts of two successive windows.
	Slide time.Duration
}

var _ window.Windower = (*Sliding)(nil)

func NewSliding(length time.Duration, slide time.Duration) *Sliding {
	return &Sliding{
		Length: length,
		Slide:  slide,
	}
}

// AssignWindows returns every window containing the event time, earliest first. Window starts are
// multiples of the slide. Windows are [start, end), a record on a boundary goes to the later window.
func (s *Sliding) AssignWindows(eventTime time.Time) []partition.ID {
	slide := s.Slide.Milliseconds()
	latest := time.UnixMilli(eventTime.UnixMilli() / slide * slide)
	if !latest.Add(s.Length).After(eventTime) {
		return nil
	}
	earliest := latest
	for earliest.Add(s.Length - s.Slide).After(eventTime) {
		earliest = earliest.Add(-s.Slide)
	}
	windows := make([]partition.ID, 0, int(s.Length/s.Slide)+1)
	for start := earliest; !start.After(latest); start = start.Add(s.Slide) {
		windows = append(windows, partition.ID{Start: start, End: start.Add(s.Length)})
	}
	return windows
}

func (s *Sliding) Type() v1alpha1.WindowType {
	return v1alpha1.WindowTypeSliding
}
