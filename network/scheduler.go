// Copyright (C) 2019-2026, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/quorumnode/utils/timer/mockable"
)

// Scheduler enqueues deferred tasks on a shared pool. It backs
// Network.Schedule: elections use it to fire T_max timeouts and the
// decision kernel uses it to schedule an election's post-DONE purge.
// Ordering between tasks scheduled for the same instant is unspecified.
type Scheduler interface {
	// Schedule runs task after delay elapses. The returned handle cancels
	// the task if it has not yet fired; Cancel on an already-fired or
	// already-canceled handle is a no-op.
	Schedule(delay time.Duration, task func()) Handle

	// Pending returns the number of tasks not yet fired or canceled.
	Pending() int

	// TaskIDs returns the ids of every pending task, ascending. Intended
	// for tests and diagnostics, not the hot path.
	TaskIDs() []uint64

	// Close cancels every pending task. Tasks already in flight still
	// run to completion.
	Close()
}

// Handle cancels a scheduled task.
type Handle interface {
	Cancel()
}

// scheduledTask is both the container/heap element (ordered by fire time,
// for Pending()) and the btree element (ordered by id, for TaskIDs()).
// Cancel reaches a task through its handle's pointer, not through either
// index.
type scheduledTask struct {
	id      uint64
	fireAt  time.Time
	task    func()
	timer   *time.Timer
	index   int // heap.Interface bookkeeping
	fired   bool
	skipRun bool
}

type taskHeap []*scheduledTask

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	return h[i].fireAt.Before(h[j].fireAt)
}
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *taskHeap) Push(x interface{}) {
	item := x.(*scheduledTask)
	item.index = len(*h)
	*h = append(*h, item)
}
func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}

func idLess(a, b *scheduledTask) bool { return a.id < b.id }

type scheduler struct {
	lock sync.Mutex

	clock *mockable.Clock

	byFireTime taskHeap
	byID       *btree.BTreeG[*scheduledTask]
	nextID     uint64

	closed bool

	pendingGauge prometheus.Gauge
}

// NewScheduler returns a Scheduler that reports the number of
// currently-pending tasks through a "scheduled_tasks" gauge, mirroring
// the numPolls-style bookkeeping gauges used elsewhere for in-flight
// counts.
func NewScheduler(namespace string, registerer prometheus.Registerer) Scheduler {
	pendingGauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduled_tasks",
		Help:      "Number of tasks currently scheduled but not yet fired",
	})
	_ = registerer.Register(pendingGauge)

	return &scheduler{
		clock:        &mockable.Clock{},
		byID:         btree.NewG(2, idLess),
		pendingGauge: pendingGauge,
	}
}

func (s *scheduler) Schedule(delay time.Duration, task func()) Handle {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return &noopHandle{}
	}

	s.nextID++
	t := &scheduledTask{
		id:     s.nextID,
		fireAt: s.clock.Time().Add(delay),
		task:   task,
	}
	heap.Push(&s.byFireTime, t)
	s.byID.ReplaceOrInsert(t)
	s.pendingGauge.Inc()

	t.timer = time.AfterFunc(delay, func() { s.fire(t) })
	return &taskHandle{scheduler: s, task: t}
}

func (s *scheduler) fire(t *scheduledTask) {
	s.lock.Lock()
	if t.fired || t.skipRun {
		s.lock.Unlock()
		return
	}
	t.fired = true
	s.removeLocked(t)
	s.lock.Unlock()

	t.task()
}

// removeLocked removes t from both indexes. s.lock must be held.
func (s *scheduler) removeLocked(t *scheduledTask) {
	if t.index >= 0 && t.index < len(s.byFireTime) && s.byFireTime[t.index] == t {
		heap.Remove(&s.byFireTime, t.index)
	}
	s.byID.Delete(t)
	s.pendingGauge.Dec()
}

func (s *scheduler) Pending() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	return len(s.byFireTime)
}

func (s *scheduler) TaskIDs() []uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()

	ids := make([]uint64, 0, s.byID.Len())
	s.byID.Ascend(func(t *scheduledTask) bool {
		ids = append(ids, t.id)
		return true
	})
	return ids
}

func (s *scheduler) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for s.byFireTime.Len() > 0 {
		t := s.byFireTime[0]
		t.skipRun = true
		if t.timer != nil {
			t.timer.Stop()
		}
		s.removeLocked(t)
	}
}

type taskHandle struct {
	scheduler *scheduler
	task      *scheduledTask
}

func (h *taskHandle) Cancel() {
	s := h.scheduler
	s.lock.Lock()
	defer s.lock.Unlock()

	if h.task.fired || h.task.skipRun {
		return
	}
	h.task.skipRun = true
	if h.task.timer != nil {
		h.task.timer.Stop()
	}
	s.removeLocked(h.task)
}

type noopHandle struct{}

func (*noopHandle) Cancel() {}
