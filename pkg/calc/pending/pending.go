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

// Package pending buffers the evaluations of a calc step per partition until they can be emitted
// in the order their records arrived.
//
// Entries leave a partition queue from the front only. The front entry leaves as soon as its
// evaluation is ready, or, when the queue holds more than maxPending entries, by waiting on it.
// A slow evaluation at the front therefore holds back the ready ones behind it, but never lets
// the queue grow past maxPending+1 entries.
package pending

import (
	"container/list"
	"context"
	"time"

	"github.com/numaproj/numacalc/pkg/calc/applier"
	"github.com/numaproj/numacalc/pkg/window/partition"
)

// Entry is an evaluation waiting to be emitted.
type Entry struct {
	Timestamp time.Time
	Future    applier.Future
}

// EmitFunc receives the resolved value of an entry. Returning an error stops the drain.
type EmitFunc func(id partition.ID, timestamp time.Time, value interface{}) error

type queue struct {
	id      partition.ID
	entries *list.List
	// elem is the position of the queue in the partition list of the manager.
	elem *list.Element
}

// Manager holds one FIFO queue per partition. It is not safe for concurrent use.
type Manager struct {
	maxPending int
	queues     map[string]*queue
	// partitions keeps the queues in the order they were created.
	partitions *list.List
}

// NewManager returns a Manager forcing a drain when a queue holds more than maxPending entries.
func NewManager(maxPending int) *Manager {
	if maxPending < 1 {
		maxPending = 1
	}
	return &Manager{
		maxPending: maxPending,
		queues:     make(map[string]*queue),
		partitions: list.New(),
	}
}

// MaxPending returns the depth bound of the queues.
func (m *Manager) MaxPending() int {
	return m.maxPending
}

// Enqueue appends an entry to the queue of the partition, creating the queue if absent.
func (m *Manager) Enqueue(id partition.ID, timestamp time.Time, f applier.Future) {
	key := id.String()
	q, ok := m.queues[key]
	if !ok {
		q = &queue{id: id, entries: list.New()}
		q.elem = m.partitions.PushBack(q)
		m.queues[key] = q
	}
	q.entries.PushBack(&Entry{Timestamp: timestamp, Future: f})
}

// DrainReady emits the front entries of the partition queue while they are ready, or while the
// queue is longer than maxPending. It returns the number of entries it had to wait on.
func (m *Manager) DrainReady(ctx context.Context, id partition.ID, emit EmitFunc) (int, error) {
	q, ok := m.queues[id.String()]
	if !ok {
		return 0, nil
	}
	forced := 0
	for q.entries.Len() > 0 {
		front := q.entries.Front().Value.(*Entry)
		ready := front.Future.IsReady()
		if !ready && q.entries.Len() <= m.maxPending {
			break
		}
		if !ready {
			forced++
		}
		if err := m.pop(ctx, q, emit); err != nil {
			return forced, err
		}
	}
	m.removeIfEmpty(q)
	return forced, nil
}

// DrainAll emits every entry of the partition queue in order, waiting on each of them.
func (m *Manager) DrainAll(ctx context.Context, id partition.ID, emit EmitFunc) error {
	q, ok := m.queues[id.String()]
	if !ok {
		return nil
	}
	return m.drainQueue(ctx, q, emit)
}

func (m *Manager) drainQueue(ctx context.Context, q *queue, emit EmitFunc) error {
	for q.entries.Len() > 0 {
		if err := m.pop(ctx, q, emit); err != nil {
			return err
		}
	}
	m.removeIfEmpty(q)
	return nil
}

// pop removes the front entry, resolves it and emits its value.
func (m *Manager) pop(ctx context.Context, q *queue, emit EmitFunc) error {
	entry := q.entries.Remove(q.entries.Front()).(*Entry)
	value, err := entry.Future.Resolve(ctx)
	if err != nil {
		return err
	}
	return emit(q.id, entry.Timestamp, value)
}

func (m *Manager) removeIfEmpty(q *queue) {
	if q.entries.Len() > 0 {
		return
	}
	m.partitions.Remove(q.elem)
	delete(m.queues, q.id.String())
}

// Len returns the number of entries of the partition queue.
func (m *Manager) Len(id partition.ID) int {
	if q, ok := m.queues[id.String()]; ok {
		return q.entries.Len()
	}
	return 0
}

// Total returns the number of entries across all the partitions.
func (m *Manager) Total() int {
	total := 0
	for _, q := range m.queues {
		total += q.entries.Len()
	}
	return total
}

// Partitions returns the partitions with pending entries, in the order they were first seen.
func (m *Manager) Partitions() []partition.ID {
	ids := make([]partition.ID, 0, m.partitions.Len())
	for e := m.partitions.Front(); e != nil; e = e.Next() {
		ids = append(ids, e.Value.(*queue).id)
	}
	return ids
}

// Clear drops every queue and returns the number of entries dropped. When cancel is true the
// futures of the dropped entries are cancelled.
func (m *Manager) Clear(cancel bool) int {
	dropped := 0
	for e := m.partitions.Front(); e != nil; e = e.Next() {
		q := e.Value.(*queue)
		for qe := q.entries.Front(); qe != nil; qe = qe.Next() {
			if cancel {
				qe.Value.(*Entry).Future.Cancel()
			}
			dropped++
		}
	}
	m.queues = make(map[string]*queue)
	m.partitions.Init()
	return dropped
}
