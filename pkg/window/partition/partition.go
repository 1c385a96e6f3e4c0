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

// Package partition is a tuple containing (start, end) time and an optional slot.
// A partition is the unit within which the output order of a calc step matches its input order.
package partition

import (
	"fmt"
	"time"
)

// ID uniquely identifies a partition.
type ID struct {
	Start time.Time
	End   time.Time
	// Slot is the record key, records of different keys in the same window belong to different partitions.
	Slot string
}

// GlobalID is the partition of records that are not windowed and carry no key.
var GlobalID = ID{Start: time.UnixMilli(0).UTC(), End: time.UnixMilli(0).UTC()}

func (p ID) String() string {
	return fmt.Sprintf("%v-%v-%s", p.Start.UnixMilli(), p.End.UnixMilli(), p.Slot)
}

// WithSlot returns a copy of the ID assigned to the given slot.
func (p ID) WithSlot(slot string) ID {
	p.Slot = slot
	return p
}
