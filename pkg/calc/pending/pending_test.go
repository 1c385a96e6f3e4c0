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

package pending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/calc/applier/testutils"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

var (
	p1 = partition.ID{Start: time.UnixMilli(60000), End: time.UnixMilli(120000)}
	p2 = partition.ID{Start: time.UnixMilli(120000), End: time.UnixMilli(180000)}
)

type collector struct {
	values []interface{}
	ids    []partition.ID
	times  []time.Time
}

func (c *collector) emit(id partition.ID, ts time.Time, value interface{}) error {
	c.ids = append(c.ids, id)
	c.times = append(c.times, ts)
	c.values = append(c.values, value)
	return nil
}

func TestManager_DrainReadyKeepsOrder(t *testing.T) {
	ctx := context.Background()
	m := NewManager(32)
	c := &collector{}

	f1, f2, f3 := testutils.NewFuture(), testutils.NewFuture(), testutils.NewFuture()
	m.Enqueue(p1, time.UnixMilli(1), f1)
	m.Enqueue(p1, time.UnixMilli(2), f2)
	m.Enqueue(p1, time.UnixMilli(3), f3)

	// the later evaluations finish first
	f3.Complete("c", nil)
	f2.Complete("b", nil)
	forced, err := m.DrainReady(ctx, p1, c.emit)
	require.NoError(t, err)
	assert.Equal(t, 0, forced)
	assert.Empty(t, c.values)
	assert.Equal(t, 3, m.Len(p1))

	f1.Complete("a", nil)
	forced, err = m.DrainReady(ctx, p1, c.emit)
	require.NoError(t, err)
	assert.Equal(t, 0, forced)
	assert.Equal(t, []interface{}{"a", "b", "c"}, c.values)
	assert.Equal(t, []time.Time{time.UnixMilli(1), time.UnixMilli(2), time.UnixMilli(3)}, c.times)
	assert.Equal(t, 0, m.Len(p1))
	assert.Empty(t, m.Partitions())
}

func TestManager_ForcedDrain(t *testing.T) {
	ctx := context.Background()
	m := NewManager(2)
	c := &collector{}

	m.Enqueue(p1, time.UnixMilli(1), testutils.Lazy(int64(10)))
	m.Enqueue(p1, time.UnixMilli(2), testutils.NewFuture())
	forced, err := m.DrainReady(ctx, p1, c.emit)
	require.NoError(t, err)
	assert.Equal(t, 0, forced)
	assert.Equal(t, 2, m.Len(p1))

	m.Enqueue(p1, time.UnixMilli(3), testutils.Ready(nil))
	forced, err = m.DrainReady(ctx, p1, c.emit)
	require.NoError(t, err)
	assert.Equal(t, 1, forced)
	assert.Equal(t, []interface{}{int64(10)}, c.values)
	assert.Equal(t, 2, m.Len(p1))
}

func TestManager_BoundedDepth(t *testing.T) {
	ctx := context.Background()
	m := NewManager(4)
	c := &collector{}
	for i := 0; i < 100; i++ {
		m.Enqueue(p1, time.UnixMilli(int64(i)), testutils.Lazy(i))
		_, err := m.DrainReady(ctx, p1, c.emit)
		require.NoError(t, err)
		assert.LessOrEqual(t, m.Len(p1), 4)
	}
	require.NoError(t, m.DrainAll(ctx, p1, c.emit))
	assert.Len(t, c.values, 100)
	for i, v := range c.values {
		assert.Equal(t, i, v)
	}
}

func TestManager_PartitionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := NewManager(32)
	c := &collector{}

	slow := testutils.NewFuture()
	m.Enqueue(p1, time.UnixMilli(1), slow)
	m.Enqueue(p2, time.UnixMilli(2), testutils.Ready("p2"))

	_, err := m.DrainReady(ctx, p1, c.emit)
	require.NoError(t, err)
	_, err = m.DrainReady(ctx, p2, c.emit)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"p2"}, c.values)
	assert.Equal(t, []partition.ID{p2}, c.ids)
	assert.Equal(t, []partition.ID{p1}, m.Partitions())
	assert.Equal(t, 1, m.Total())
}

func TestManager_DrainEveryPartition(t *testing.T) {
	ctx := context.Background()
	m := NewManager(32)
	c := &collector{}

	f := testutils.NewFuture()
	m.Enqueue(p2, time.UnixMilli(1), f)
	m.Enqueue(p1, time.UnixMilli(2), testutils.Ready("p1-a"))
	m.Enqueue(p2, time.UnixMilli(3), testutils.Ready("p2-b"))
	m.Enqueue(p1, time.UnixMilli(4), testutils.Ready("p1-b"))
	assert.Equal(t, []partition.ID{p2, p1}, m.Partitions())

	go func() {
		time.Sleep(10 * time.Millisecond)
		f.Complete("p2-a", nil)
	}()
	for _, id := range m.Partitions() {
		require.NoError(t, m.DrainAll(ctx, id, c.emit))
	}
	assert.Equal(t, []interface{}{"p2-a", "p2-b", "p1-a", "p1-b"}, c.values)
	assert.Equal(t, 0, m.Total())
	assert.Empty(t, m.Partitions())
}

func TestManager_ResolveError(t *testing.T) {
	ctx := context.Background()
	m := NewManager(32)
	c := &collector{}
	cause := &applier.EvaluationError{Expression: "x", Err: errors.New("boom")}

	m.Enqueue(p1, time.UnixMilli(1), testutils.Ready("a"))
	m.Enqueue(p1, time.UnixMilli(2), testutils.Failed(cause))
	m.Enqueue(p1, time.UnixMilli(3), testutils.Ready("c"))
	_, err := m.DrainReady(ctx, p1, c.emit)
	assert.Same(t, cause, err)
	assert.Equal(t, []interface{}{"a"}, c.values)
	assert.Equal(t, 1, m.Len(p1))
}

func TestManager_EmitError(t *testing.T) {
	ctx := context.Background()
	m := NewManager(32)
	m.Enqueue(p1, time.UnixMilli(1), testutils.Ready("a"))
	err := m.DrainAll(ctx, p1, func(partition.ID, time.Time, interface{}) error {
		return errors.New("sink is full")
	})
	assert.EqualError(t, err, "sink is full")
}

func TestManager_Clear(t *testing.T) {
	m := NewManager(32)
	f1, f2 := testutils.NewFuture(), testutils.NewFuture()
	m.Enqueue(p1, time.UnixMilli(1), f1)
	m.Enqueue(p2, time.UnixMilli(2), f2)

	assert.Equal(t, 2, m.Clear(false))
	assert.False(t, f1.Cancelled())
	assert.Equal(t, 0, m.Total())

	m.Enqueue(p1, time.UnixMilli(1), f1)
	m.Enqueue(p1, time.UnixMilli(2), f2)
	assert.Equal(t, 2, m.Clear(true))
	assert.True(t, f1.Cancelled())
	assert.True(t, f2.Cancelled())
	assert.Empty(t, m.Partitions())
}

func TestNewManager(t *testing.T) {
	assert.Equal(t, 1, NewManager(0).MaxPending())
	assert.Equal(t, 32, NewManager(32).MaxPending())
}
