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

package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/numaproj/numacalc"
	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/config"
	"github.com/numaproj/numacalc/pkg/metrics"
	"github.com/numaproj/numacalc/pkg/runner"
	"github.com/numaproj/numacalc/pkg/shared/expr"
	"github.com/numaproj/numacalc/pkg/shared/logging"
	"github.com/numaproj/numacalc/pkg/shared/util"
)

func NewRunCommand() *cobra.Command {
	var (
		configFile  string
		input       string
		output      string
		metricsPort int
	)

	command := &cobra.Command{
		Use:   "run",
		Short: "Run a calc step over a JSON-lines record stream",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configFile == "" {
				return fmt.Errorf("a calc spec file is required, set --config or %s", v1alpha1.EnvConfigFile)
			}
			spec, err := config.LoadCalcSpec(configFile)
			if err != nil {
				return err
			}
			in, closeIn, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer closeIn()
			out, closeOut, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			defer closeOut()

			log := logging.NewLogger().Named("calc").With("calc", spec.Name)
			version := numacalc.GetVersion()
			log.Infow("Starting calc runner", "version", version)
			metrics.BuildInfo.WithLabelValues("runner", version.Version, version.Platform).Set(1)
			ctx := logging.WithLogger(signals.SetupSignalHandler(), log)

			compiler, err := expr.NewCompiler(expr.WithEngineSpec(spec.Engine), expr.WithLogger(log))
			if err != nil {
				return err
			}
			source, err := runner.NewJSONSource(in, *spec)
			if err != nil {
				return err
			}
			r, err := runner.NewRunner(*spec, compiler, source, runner.NewJSONSink(out), runner.WithLogger(log))
			if err != nil {
				return err
			}

			if metricsPort > 0 {
				ms := metrics.NewMetricsServer(metrics.WithPort(metricsPort), metrics.WithHealthCheck(r.IsHealthy))
				shutdown, err := ms.Start(ctx)
				if err != nil {
					return fmt.Errorf("failed to start metrics server, %w", err)
				}
				defer func() {
					sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					if err := shutdown(sctx); err != nil {
						log.Errorw("Failed to shut down metrics server", zap.Error(err))
					}
				}()
			}
			return r.Run(ctx)
		},
	}
	command.Flags().StringVarP(&configFile, "config", "c", util.LookupEnvStringOr(v1alpha1.EnvConfigFile, ""), "Calc spec file, YAML or JSON")
	command.Flags().StringVarP(&input, "input", "i", "-", "JSON-lines input file, '-' for stdin")
	command.Flags().StringVarP(&output, "output", "o", "-", "JSON-lines output file, '-' for stdout")
	command.Flags().IntVar(&metricsPort, "metrics-port", util.LookupEnvIntOr(v1alpha1.EnvMetricsPort, v1alpha1.MetricsPort), "Port of the metrics server, 0 to disable it")
	return command
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" || path == "" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open input, %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "-" || path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output, %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
