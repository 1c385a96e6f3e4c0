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
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goccy/go-json"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/row"
)

// Record is an input record with its event time and key.
type Record struct {
	EventTime time.Time
	// Key splits the records of a window into independent partitions, it may be empty.
	Key string
	Row row.Row
}

// Source produces input records.
type Source interface {
	// Next returns the next record, or io.EOF when the source is exhausted.
	Next(ctx context.Context) (*Record, error)
}

// jsonRecord is the JSON-lines representation of an input record.
type jsonRecord struct {
	EventTime interface{}            `json:"eventTime"`
	Key       string                 `json:"key"`
	Row       map[string]interface{} `json:"row"`
}

// jsonSource reads JSON-lines records, e.g. {"eventTime": "2022-04-28T10:00:00Z", "key": "k1", "row": {"id": 1}}.
type jsonSource struct {
	decoder        *json.Decoder
	schema         v1alpha1.Schema
	eventTimeIndex int
	loc            *time.Location
	read           int
}

// NewJSONSource returns a Source decoding JSON records from r. The fields of a row are ordered and
// coerced by the input schema of the spec. The event time is read from the event time field of the
// spec when set, from the envelope otherwise.
func NewJSONSource(r io.Reader, spec v1alpha1.CalcSpec) (Source, error) {
	loc, err := spec.GetLocation()
	if err != nil {
		return nil, err
	}
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	eventTimeIndex := -1
	if spec.Runner.EventTimeField != "" {
		if eventTimeIndex = spec.InputSchema.IndexOf(spec.Runner.EventTimeField); eventTimeIndex < 0 {
			return nil, fmt.Errorf("event time field %q is not in the input schema", spec.Runner.EventTimeField)
		}
	}
	return &jsonSource{
		decoder:        decoder,
		schema:         spec.InputSchema,
		eventTimeIndex: eventTimeIndex,
		loc:            loc,
	}, nil
}

func (s *jsonSource) Next(ctx context.Context) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var jr jsonRecord
	if err := s.decoder.Decode(&jr); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode record %d, %w", s.read+1, err)
	}
	s.read++
	r, err := row.FromMap(jr.Row, s.schema, s.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid record %d, %w", s.read, err)
	}
	var eventTime interface{} = jr.EventTime
	if s.eventTimeIndex >= 0 {
		eventTime = r[s.eventTimeIndex]
	}
	et, err := parseEventTime(eventTime, s.loc)
	if err != nil {
		return nil, fmt.Errorf("invalid event time of record %d, %w", s.read, err)
	}
	return &Record{EventTime: et, Key: jr.Key, Row: r}, nil
}

// parseEventTime accepts a timestamp, a date string, or epoch milliseconds. A record without an
// event time is stamped with the processing time.
func parseEventTime(v interface{}, loc *time.Location) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Now(), nil
	case time.Time:
		return x, nil
	case string:
		return dateparse.ParseIn(x, loc)
	case json.Number:
		ms, err := x.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.UnixMilli(ms), nil
	case int64:
		return time.UnixMilli(x), nil
	case float64:
		return time.UnixMilli(int64(x)), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported event time of type %T", v)
	}
}
