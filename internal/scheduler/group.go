package scheduler

import "time"

// Group tracks the tasks of one run (one metronome start, one demo playback) so
// that they can be revoked together. Revoke also bumps the generation, which
// turns any callback that escaped cancellation into a no-op.
type Group struct {
	q       *Queue
	gen     uint64
	pending map[Handle]struct{}
}

func NewGroup(q *Queue) *Group {
	return &Group{q: q, pending: make(map[Handle]struct{})}
}

// After schedules fn at instant at as part of the current generation.
func (g *Group) After(at time.Time, fn func()) Handle {
	gen := g.gen
	var h Handle
	h = g.q.Schedule(at, func() {
		delete(g.pending, h)
		if gen != g.gen {
			return
		}
		fn()
	})
	g.pending[h] = struct{}{}
	return h
}

// Revoke cancels every pending task of the current generation and starts a new
// one. It returns the number of tasks cancelled.
func (g *Group) Revoke() int {
	n := 0
	for h := range g.pending {
		if g.q.Cancel(h) {
			n++
		}
		delete(g.pending, h)
	}
	g.gen++
	return n
}

// Generation identifies the current run.
func (g *Group) Generation() uint64 { return g.gen }

// Pending returns how many tasks of the current generation are still queued.
func (g *Group) Pending() int { return len(g.pending) }
