// Package scheduler drives the metronome and the demo sequencer from a single
// cancellable delayed-task queue.
//
// Nothing here starts goroutines or timers. The owner asks Queue.Next when the
// earliest task is due and calls Queue.RunDue once that instant has passed, so
// every callback runs on the owner's goroutine.
package scheduler

import (
	"container/heap"
	"time"
)

// Handle identifies a scheduled task. The zero Handle is never issued.
type Handle uint64

type task struct {
	at     time.Time
	seq    uint64
	handle Handle
	fn     func()
	index  int
}

type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	t := x.(*task)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

// Queue is a min-heap of tasks ordered by due time, then by insertion order.
// It is not safe for concurrent use.
type Queue struct {
	tasks   taskHeap
	handles map[Handle]*task
	last    Handle
	seq     uint64
}

func NewQueue() *Queue {
	return &Queue{handles: make(map[Handle]*task)}
}

// Schedule registers fn to run at or after at.
func (q *Queue) Schedule(at time.Time, fn func()) Handle {
	q.last++
	q.seq++
	t := &task{at: at, seq: q.seq, handle: q.last, fn: fn}
	heap.Push(&q.tasks, t)
	q.handles[t.handle] = t
	return t.handle
}

// Cancel removes a pending task. It reports false when the task already ran or
// was cancelled before.
func (q *Queue) Cancel(h Handle) bool {
	t, ok := q.handles[h]
	if !ok {
		return false
	}
	delete(q.handles, h)
	heap.Remove(&q.tasks, t.index)
	return true
}

// Next returns the due time of the earliest pending task.
func (q *Queue) Next() (time.Time, bool) {
	if len(q.tasks) == 0 {
		return time.Time{}, false
	}
	return q.tasks[0].at, true
}

// RunDue runs every task due at or before now, including tasks scheduled by the
// callbacks themselves, and returns how many ran.
func (q *Queue) RunDue(now time.Time) int {
	n := 0
	for len(q.tasks) > 0 && !q.tasks[0].at.After(now) {
		t := heap.Pop(&q.tasks).(*task)
		delete(q.handles, t.handle)
		t.fn()
		n++
	}
	return n
}

// Len returns the number of pending tasks.
func (q *Queue) Len() int { return len(q.tasks) }
