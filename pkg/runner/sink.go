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
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/numaproj/numacalc/pkg/row"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

// Output is a row emitted by a calc step, with the event time of its record and its partition.
type Output struct {
	EventTime time.Time
	Window    partition.ID
	Row       row.Row
}

// Sink receives the outputs of committed batches.
type Sink interface {
	Write(ctx context.Context, outputs []Output) error
}

type jsonWindow struct {
	Start int64  `json:"start"`
	End   int64  `json:"end"`
	Key   string `json:"key,omitempty"`
}

type jsonOutput struct {
	EventTime time.Time     `json:"eventTime"`
	Window    jsonWindow    `json:"window"`
	Row       []interface{} `json:"row"`
}

// InvalidOutputError is returned by a Sink for outputs it can never write. A batch failing with it is
// not retried.
type InvalidOutputError struct {
	Err error
}

func (e *InvalidOutputError) Error() string {
	return fmt.Sprintf("invalid output, %v", e.Err)
}

func (e *InvalidOutputError) Unwrap() error {
	return e.Err
}

// jsonSink writes JSON-lines outputs. Shards write concurrently, a write is never interleaved with another.
type jsonSink struct {
	sync.Mutex
	w io.Writer
}

// NewJSONSink returns a Sink writing one JSON object per output to w. The outputs of a Write are
// encoded first and written in a single call, none of them is written if one fails to encode.
func NewJSONSink(w io.Writer) Sink {
	return &jsonSink{w: w}
}

func (s *jsonSink) Write(_ context.Context, outputs []Output) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	for i, o := range outputs {
		jo := jsonOutput{
			EventTime: o.EventTime,
			Window: jsonWindow{
				Start: o.Window.Start.UnixMilli(),
				End:   o.Window.End.UnixMilli(),
				Key:   o.Window.Slot,
			},
			Row: o.Row,
		}
		if err := encoder.Encode(jo); err != nil {
			return &InvalidOutputError{Err: fmt.Errorf("failed to encode output %d, %w", i, err)}
		}
	}
	s.Lock()
	defer s.Unlock()
	if _, err := s.w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write outputs, %w", err)
	}
	return nil
}
