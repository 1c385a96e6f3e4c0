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

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_CounterVec(t *testing.T) {
	c := ProcessedCount.WithLabelValues("counter-test")
	c.Inc()
	c.Add(2)
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	assert.Equal(t, float64(3), m.GetCounter().GetValue())
}

func Test_LabelledCounters(t *testing.T) {
	BatchErrorCount.WithLabelValues("label-test", "evaluation").Inc()
	BatchErrorCount.WithLabelValues("label-test", "schema").Inc()
	BatchErrorCount.WithLabelValues("label-test", "evaluation").Inc()
	m := &dto.Metric{}
	require.NoError(t, BatchErrorCount.WithLabelValues("label-test", "evaluation").Write(m))
	assert.Equal(t, float64(2), m.GetCounter().GetValue())
	labels := map[string]string{}
	for _, l := range m.GetLabel() {
		labels[l.GetName()] = l.GetValue()
	}
	assert.Equal(t, map[string]string{LabelCalc: "label-test", LabelReason: "evaluation"}, labels)
}

func Test_Histogram(t *testing.T) {
	PendingDepth.WithLabelValues("histogram-test").Observe(3)
	PendingDepth.WithLabelValues("histogram-test").Observe(40)
	m := &dto.Metric{}
	require.NoError(t, PendingDepth.WithLabelValues("histogram-test").(prometheus.Metric).Write(m))
	assert.Equal(t, uint64(2), m.GetHistogram().GetSampleCount())
	assert.Equal(t, float64(43), m.GetHistogram().GetSampleSum())
}

func Test_Gauge(t *testing.T) {
	g := InflightEvaluations.WithLabelValues("gauge-test")
	g.Inc()
	g.Inc()
	g.Dec()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	assert.Equal(t, float64(1), m.GetGauge().GetValue())
}
