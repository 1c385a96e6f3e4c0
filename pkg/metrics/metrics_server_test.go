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
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/shared/logging"
)

func Test_NewMetricsServer(t *testing.T) {
	ms := NewMetricsServer()
	assert.Equal(t, v1alpha1.MetricsPort, ms.port)
	assert.Empty(t, ms.healthChecks)
	ms = NewMetricsServer(WithPort(19090), nil, WithHealthCheck(func(context.Context) error { return nil }))
	assert.Equal(t, 19090, ms.port)
	assert.Len(t, ms.healthChecks, 1)
}

func Test_MetricsServer_HealthCheckDisabled(t *testing.T) {
	t.Setenv(v1alpha1.EnvHealthCheckDisabled, "true")
	ms := NewMetricsServer(WithHealthCheck(func(context.Context) error { return errors.New("unhealthy") }))
	assert.Empty(t, ms.healthChecks)
}

func Test_MetricsServer_Endpoints(t *testing.T) {
	healthy := true
	ms := NewMetricsServer(WithHealthCheck(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		if !healthy {
			return errors.New("calc runner is not running")
		}
		return nil
	}))
	BuildInfo.WithLabelValues("test", "v0.0.1", "linux/amd64").Set(1)
	server := httptest.NewServer(ms.handler(zap.NewNop().Sugar()))
	defer server.Close()

	e := httpexpect.Default(t, server.URL)
	e.GET("/livez").Expect().Status(204)
	e.GET("/readyz").Expect().Status(204)
	e.GET("/metrics").Expect().Status(200).Body().Contains("build_info")
	e.GET("/debug/pprof/").Expect().Status(404)

	healthy = false
	e.GET("/readyz").Expect().Status(503).Body().IsEqual("calc runner is not running")
	e.GET("/livez").Expect().Status(204)
}

func Test_MetricsServer_PProf(t *testing.T) {
	t.Setenv(v1alpha1.EnvPPROF, "true")
	server := httptest.NewServer(NewMetricsServer().handler(zap.NewNop().Sugar()))
	defer server.Close()
	httpexpect.Default(t, server.URL).GET("/debug/pprof/").Expect().Status(200)
}

func Test_MetricsServer_Start(t *testing.T) {
	ctx := logging.WithLogger(context.Background(), zap.NewNop().Sugar())
	shutdown, err := NewMetricsServer(WithPort(0)).Start(ctx)
	require.NoError(t, err)
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, shutdown(sctx))
}
