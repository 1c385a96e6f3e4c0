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

package v1alpha1

import "time"

const (
	// Environment variables
	EnvDebug               = "NUMACALC_DEBUG"
	EnvPPROF               = "NUMACALC_PPROF"
	EnvConfigPrefix        = "NUMACALC"
	EnvHealthCheckDisabled = "NUMACALC_HEALTH_CHECK_DISABLED"
	EnvConfigFile          = "NUMACALC_CONFIG_FILE"
	EnvMetricsPort         = "NUMACALC_METRICS_PORT"
	EnvBatchTimeout        = "NUMACALC_BATCH_TIMEOUT"

	// ColumnPrefix is the identifier prefix of input columns in an expression, column i is "_i".
	ColumnPrefix = "_"

	// Default evaluator options
	DefaultMaxPending      = 32    // Default max pending evaluations per partition before a forced drain
	DefaultTimezone        = "UTC" // Default timezone used to interpret timestamps without a zone
	DefaultVerifyRowValues = false

	// Default engine options
	DefaultEngineConcurrency      = 8   // Default number of evaluations running at once per stream
	DefaultEngineStreamBatchSize  = 16  // Default number of submitted evaluations issued together
	DefaultEngineCompileCacheSize = 128 // Default number of compiled programs kept in memory

	// Default runner options
	DefaultRunnerBatchSize = 500 // Default number of records per batch
	DefaultRunnerShards    = 1   // Default number of evaluator instances

	// Default window options
	DefaultWindowType   = WindowTypeGlobal
	DefaultWindowLength = time.Duration(0)

	// MetricsPort is the default port of the metrics server.
	MetricsPort = 9090
)
