// Package clock estimates tempo from incoming MIDI timing clock pulses.
package clock

import (
	"math"
	"time"
)

// PPQ is the number of timing clock pulses per quarter note.
const PPQ = 24

// DefaultMaxGap is the pulse silence after which the next pulse only re-establishes a baseline.
const DefaultMaxGap = time.Second

// Tracker averages inter-pulse deltas over one quarter note and reports a
// BPM estimate when it moves by more than one BPM. It is owned by a single
// input stream and is not safe for concurrent use.
type Tracker struct {
	maxGap time.Duration

	last    time.Time
	started bool
	count   int
	sumMs   float64

	lastBPM int
	emitted bool
}

// NewTracker returns a Tracker. maxGap <= 0 selects DefaultMaxGap.
func NewTracker(maxGap time.Duration) *Tracker {
	if maxGap <= 0 {
		maxGap = DefaultMaxGap
	}
	return &Tracker{maxGap: maxGap}
}

// OnPulse records a clock pulse received at now. It returns a new estimate and
// true at most once per quarter note, and only when the estimate differs from
// the last one returned by more than 1 BPM.
func (t *Tracker) OnPulse(now time.Time) (int, bool) {
	if !t.started {
		t.baseline(now)
		return 0, false
	}

	delta := now.Sub(t.last)
	if delta > t.maxGap {
		t.baseline(now)
		return 0, false
	}
	t.last = now
	t.count++
	t.sumMs += float64(delta) / float64(time.Millisecond)

	if t.count < PPQ {
		return 0, false
	}

	sum := t.sumMs
	t.count = 0
	t.sumMs = 0
	if sum <= 0 {
		return 0, false
	}

	avg := sum / PPQ
	bpm := int(math.Round(60000 / (PPQ * avg)))
	if t.emitted && abs(bpm-t.lastBPM) <= 1 {
		return 0, false
	}
	t.lastBPM = bpm
	t.emitted = true
	return bpm, true
}

// Reset drops the baseline and partial average. The last emitted value is kept
// so a resumed clock at the same tempo is not reported again.
func (t *Tracker) Reset() {
	t.started = false
	t.count = 0
	t.sumMs = 0
}

// LastBPM returns the last emitted estimate.
func (t *Tracker) LastBPM() (int, bool) {
	return t.lastBPM, t.emitted
}

func (t *Tracker) baseline(now time.Time) {
	t.last = now
	t.started = true
	t.count = 0
	t.sumMs = 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
