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

package global

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/numaproj/numacalc/pkg/window/partition"
)

func TestGlobal_AssignWindows(t *testing.T) {
	g := NewGlobal()
	for _, et := range []time.Time{time.Unix(0, 0), time.Unix(600, 0), time.Now()} {
		got := g.AssignWindows(et)
		assert.Equal(t, []partition.ID{partition.GlobalID}, got)
	}
}
