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

// Package window implements windowing constructs. In the world of data processing on an unbounded stream, Windowing
// is a concept of grouping data using temporal boundaries. We use event-time to discover temporal boundaries on an
// unbounded, infinite stream.
//
// For a calc step a window only scopes ordering: records are evaluated one at a time, and within a window (and key)
// the results are emitted in the order the records arrived. Windows are assigned by a Windower from the event time
// of a record and are identified by a partition.ID.
//
// Supported strategies are Fixed windows, Sliding windows (an element may belong to more than one window) and the
// Global window which holds every element.
package window
