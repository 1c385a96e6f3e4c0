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

package util

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLookupEnvStringOr(t *testing.T) {
	assert.Equal(t, "hello", LookupEnvStringOr("fake_env", "hello"))
	t.Setenv("NUMACALC_TEST_STR", "world")
	assert.Equal(t, "world", LookupEnvStringOr("NUMACALC_TEST_STR", "hello"))
}

func TestLookupEnvIntOr(t *testing.T) {
	assert.Equal(t, 3, LookupEnvIntOr("fake_int_env", 3))
	t.Setenv("NUMACALC_TEST_INT", "7")
	assert.Equal(t, 7, LookupEnvIntOr("NUMACALC_TEST_INT", 3))
	t.Setenv("NUMACALC_TEST_INT", "seven")
	assert.Panics(t, func() { LookupEnvIntOr("NUMACALC_TEST_INT", 3) })
}

func TestLookupEnvBoolOr(t *testing.T) {
	_ = os.Unsetenv("fake_bool_env")
	assert.True(t, LookupEnvBoolOr("fake_bool_env", true))
	t.Setenv("NUMACALC_TEST_BOOL", "false")
	assert.False(t, LookupEnvBoolOr("NUMACALC_TEST_BOOL", true))
	t.Setenv("NUMACALC_TEST_BOOL", "nope")
	assert.Panics(t, func() { LookupEnvBoolOr("NUMACALC_TEST_BOOL", true) })
}

func TestLookupEnvDurationOr(t *testing.T) {
	assert.Equal(t, time.Second, LookupEnvDurationOr("fake_duration_env", time.Second))
	t.Setenv("NUMACALC_TEST_DURATION", "250ms")
	assert.Equal(t, 250*time.Millisecond, LookupEnvDurationOr("NUMACALC_TEST_DURATION", time.Second))
}
