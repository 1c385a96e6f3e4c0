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
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/shared/logging"
	"github.com/numaproj/numacalc/pkg/shared/util"
)

// HealthCheck returns an error when the checked component is not ready.
type HealthCheck func(ctx context.Context) error

// metricsServer serves the Prometheus metrics of the process along with its liveness and readiness probes.
type metricsServer struct {
	port         int
	healthChecks []HealthCheck
	// checkTimeout bounds the time spent in the health checks of a readiness probe.
	checkTimeout time.Duration
}

type Option func(*metricsServer)

// WithPort sets the port of the server, 0 picks a free port.
func WithPort(port int) Option {
	return func(m *metricsServer) {
		m.port = port
	}
}

// WithHealthCheck adds a check run by the readiness probe.
func WithHealthCheck(check HealthCheck) Option {
	return func(m *metricsServer) {
		m.healthChecks = append(m.healthChecks, check)
	}
}

// NewMetricsServer returns a metrics server. Health checks are dropped when they are disabled by the environment.
func NewMetricsServer(opts ...Option) *metricsServer {
	m := &metricsServer{
		port:         v1alpha1.MetricsPort,
		checkTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	if util.LookupEnvBoolOr(v1alpha1.EnvHealthCheckDisabled, false) {
		m.healthChecks = nil
	}
	return m
}

func (ms *metricsServer) readyz(log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), ms.checkTimeout)
		defer cancel()
		for _, check := range ms.healthChecks {
			if err := check(ctx); err != nil {
				log.Warnw("Readiness check failed", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (ms *metricsServer) handler(log *zap.SugaredLogger) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/readyz", ms.readyz(log))
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	if util.LookupEnvBoolOr(v1alpha1.EnvDebug, false) || util.LookupEnvBoolOr(v1alpha1.EnvPPROF, false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	} else {
		log.Debug("Not enabling pprof debug endpoints")
	}
	return mux
}

// Start binds the port and serves in the background. It returns the function shutting the server down.
func (ms *metricsServer) Start(ctx context.Context) (func(ctx context.Context) error, error) {
	log := logging.FromContext(ctx)
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", ms.port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d, %w", ms.port, err)
	}
	httpServer := &http.Server{
		Handler:           ms.handler(log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Infow("Starting metrics HTTP server", zap.String("address", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("Metrics HTTP server stopped", zap.Error(err))
		}
		log.Info("Metrics server shutdown")
	}()
	return httpServer.Shutdown, nil
}
