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

// Package config loads calc specs from YAML or JSON files.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
)

// envKeys are the spec keys which can be overridden by environment variables, e.g.
// NUMACALC_MAXPENDING or NUMACALC_RUNNER_BATCHSIZE.
var envKeys = []string{
	"name",
	"expression",
	"defaultTimezone",
	"verifyRowValues",
	"maxPending",
	"engine.concurrency",
	"engine.streamBatchSize",
	"engine.compileCacheSize",
	"window.type",
	"window.length",
	"window.slide",
	"runner.batchSize",
	"runner.shards",
	"runner.eventTimeField",
}

// LoadCalcSpec reads the calc spec at path, applies environment overrides and defaults, and validates it.
func LoadCalcSpec(path string) (*v1alpha1.CalcSpec, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix(v1alpha1.EnvConfigPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("failed to bind env for %q, %w", k, err)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to load calc spec file %q, %w", path, err)
	}
	spec := &v1alpha1.CalcSpec{}
	if err := v.Unmarshal(spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calc spec, %w", err)
	}
	if err := spec.ApplyDefaults(); err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid calc spec, %w", err)
	}
	return spec, nil
}
