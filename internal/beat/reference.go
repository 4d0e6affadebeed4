// Package beat maps wall-clock instants onto a metronome's beat grid.
package beat

import (
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// DefaultTolerance is the half-width of a beat window.
const DefaultTolerance = 150 * time.Millisecond

// Reference is an immutable beat grid anchored at the instant a metronome started.
// A tempo change produces a new Reference.
type Reference struct {
	start       time.Time
	bpm         float64
	beatMs      float64
	toleranceMs float64
}

// New builds a Reference. bpm must be positive and finite.
func New(start time.Time, bpm float64, tolerance time.Duration) (*Reference, error) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInvalidTempo, bpm)
	}
	if tolerance < 0 {
		tolerance = 0
	}
	return &Reference{
		start:       start,
		bpm:         bpm,
		beatMs:      60000 / bpm,
		toleranceMs: Ms(tolerance),
	}, nil
}

func (r *Reference) Start() time.Time { return r.start }

func (r *Reference) BPM() float64 { return r.bpm }

// BeatMs is the beat duration in milliseconds.
func (r *Reference) BeatMs() float64 { return r.beatMs }

// BeatDuration is the beat duration rounded to the nearest nanosecond.
func (r *Reference) BeatDuration() time.Duration { return FromMs(r.beatMs) }

// ToleranceMs is the window half-width in milliseconds.
func (r *Reference) ToleranceMs() float64 { return r.toleranceMs }

// RelativeMs returns the milliseconds elapsed between the start and t, negative before the start.
func (r *Reference) RelativeMs(t time.Time) float64 {
	return Ms(t.Sub(r.start))
}

// Position locates t on the grid. BeatFraction is always in [0, 1).
func (r *Reference) Position(t time.Time) contracts.BeatPosition {
	rel := r.RelativeMs(t)
	b := rel / r.beatMs
	idx := math.Floor(b)
	return contracts.BeatPosition{
		Beat:         b,
		BeatIndex:    int(idx),
		BeatFraction: b - idx,
		PositionMs:   rel,
	}
}

// ExpectedBeatTime returns the offset of beat i from the start, in milliseconds.
func (r *Reference) ExpectedBeatTime(i float64) float64 {
	return i * r.beatMs
}

// BeatInstant returns the wall-clock instant of beat i.
func (r *Reference) BeatInstant(i float64) time.Time {
	return r.start.Add(FromMs(r.ExpectedBeatTime(i)))
}

// Ms converts a duration to fractional milliseconds.
func Ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// FromMs converts fractional milliseconds to a duration.
func FromMs(ms float64) time.Duration {
	return time.Duration(math.Round(ms * float64(time.Millisecond)))
}

// Holder publishes the active Reference. Readers see either a complete
// Reference or nil; writers replace it wholesale.
type Holder struct {
	ref atomic.Pointer[Reference]
}

func (h *Holder) Publish(r *Reference) { h.ref.Store(r) }

func (h *Holder) Load() *Reference { return h.ref.Load() }

func (h *Holder) Clear() { h.ref.Store(nil) }
