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

package window

import (
	"time"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

// Windower assigns windows to elements based on their event time.
type Windower interface {
	// AssignWindows returns the windows the event time belongs to. It never returns an empty list.
	AssignWindows(eventTime time.Time) []partition.ID
	// Type returns the window strategy.
	Type() v1alpha1.WindowType
}
