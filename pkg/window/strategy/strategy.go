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

// Package strategy builds a window.Windower from a window spec.
package strategy

import (
	"fmt"

	"github.com/numaproj/numacalc/pkg/apis/calc/v1alpha1"
	"github.com/numaproj/numacalc/pkg/window"
	"github.com/numaproj/numacalc/pkg/window/strategy/fixed"
	"github.com/numaproj/numacalc/pkg/window/strategy/global"
	"github.com/numaproj/numacalc/pkg/window/strategy/sliding"
)

// New returns the windower for the given window spec.
func New(spec v1alpha1.WindowSpec) (window.Windower, error) {
	switch spec.Type {
	case v1alpha1.WindowTypeGlobal, "":
		return global.NewGlobal(), nil
	case v1alpha1.WindowTypeFixed:
		if spec.Length <= 0 {
			return nil, fmt.Errorf("length should be positive for fixed windows")
		}
		return fixed.NewFixed(spec.Length), nil
	case v1alpha1.WindowTypeSliding:
		if spec.Length <= 0 || spec.Slide <= 0 {
			return nil, fmt.Errorf("length and slide should be positive for sliding windows")
		}
		if spec.Slide > spec.Length {
			return nil, fmt.Errorf("slide %v should not be longer than length %v", spec.Slide, spec.Length)
		}
		return sliding.NewSliding(spec.Length, spec.Slide), nil
	default:
		return nil, fmt.Errorf("unsupported window type %q", spec.Type)
	}
}
