// Package lesson precomputes where each lesson step falls on the beat grid.
package lesson

import (
	"fmt"
	"math"
	"time"

	"github.com/leandrodaf/beatcoach/internal/beat"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// Map is the immutable beat layout of a lesson. Progress through the lesson is
// tracked by the caller; a restarted lesson gets a new Map.
type Map struct {
	bpm   float64
	steps []contracts.StepBeat
}

// Build lays steps out back to back. Step i starts at the sum of the durations of
// the steps before it. Windows are widened on both sides by the tolerance
// expressed in beats.
func Build(steps []contracts.Step, bpm float64, tolerance time.Duration) (*Map, error) {
	if bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInvalidTempo, bpm)
	}
	tolBeats := beat.Ms(tolerance) / (60000 / bpm)

	m := &Map{bpm: bpm, steps: make([]contracts.StepBeat, len(steps))}
	var cursor float64
	for i, s := range steps {
		d := s.Beats()
		m.steps[i] = contracts.StepBeat{
			StepIndex:     i,
			ExpectedBeat:  cursor,
			WindowStart:   cursor - tolBeats,
			WindowEnd:     cursor + d + tolBeats,
			DurationBeats: d,
			Text:          s.Text,
		}
		cursor += d
	}
	return m, nil
}

// Len returns the number of steps.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.steps)
}

// BPM returns the tempo the map was built for.
func (m *Map) BPM() float64 { return m.bpm }

// Step returns the layout of step i.
func (m *Map) Step(i int) (contracts.StepBeat, bool) {
	if m == nil || i < 0 || i >= len(m.steps) {
		return contracts.StepBeat{}, false
	}
	return m.steps[i], true
}

// ExpectedBeat returns the beat step i should be played on, or nil when i is out of range.
func (m *Map) ExpectedBeat(i int) *float64 {
	s, ok := m.Step(i)
	if !ok {
		return nil
	}
	b := s.ExpectedBeat
	return &b
}

// TotalBeats is the length of the whole lesson in beats.
func (m *Map) TotalBeats() float64 {
	if m.Len() == 0 {
		return 0
	}
	last := m.steps[len(m.steps)-1]
	return last.ExpectedBeat + last.DurationBeats
}
