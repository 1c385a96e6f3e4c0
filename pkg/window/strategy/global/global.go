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

// Package global implements the Global window. Every element, whatever its event time, belongs to one
// unbounded window.
package global

import (
	"time"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/window"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

// Global implements the global window.
type Global struct{}

var _ window.Windower = (*Global)(nil)

func NewGlobal() *Global {
	return &Global{}
}

// AssignWindows always returns the global partition.
func (g *Global) AssignWindows(time.Time) []partition.ID {
	return []partition.ID{partition.GlobalID}
}

func (g *Global) Type() v1alpha1.WindowType {
	return v1alpha1.WindowTypeGlobal
}
