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

// Package dedup remembers the last record a calc step evaluated, so a run of identical
// consecutive records is evaluated once.
package dedup

import (
	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/row"
)

// Cache is a single slot cache of the last record and the future of its evaluation.
// It is not safe for concurrent use.
type Cache struct {
	last   row.Row
	future applier.Future
}

func NewCache() *Cache {
	return &Cache{}
}

// Check returns the future of the previous record if it is equal to r.
func (c *Cache) Check(r row.Row) (applier.Future, bool) {
	if c.future == nil || !c.last.Equal(r) {
		return nil, false
	}
	return c.future, true
}

// Update replaces the cached record and future.
func (c *Cache) Update(r row.Row, f applier.Future) {
	c.last = r
	c.future = f
}

// Reset empties the cache.
func (c *Cache) Reset() {
	c.last = nil
	c.future = nil
}
