package lesson

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

func TestBuildExpectedBeats(t *testing.T) {
	steps := []contracts.Step{{Duration: 1}, {Duration: 2}, {Duration: 1}}
	m, err := Build(steps, 60, 150*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0, 1, 3}
	if m.Len() != len(want) {
		t.Fatalf("Len() = %d want %d", m.Len(), len(want))
	}
	for i, w := range want {
		s, _ := m.Step(i)
		if s.ExpectedBeat != w {
			t.Errorf("Step(%d).ExpectedBeat = %v want %v", i, s.ExpectedBeat, w)
		}
	}
	if m.TotalBeats() != 4 {
		t.Errorf("TotalBeats() = %v want 4", m.TotalBeats())
	}
}

func TestBuildDefaultsToOneBeat(t *testing.T) {
	m, _ := Build(make([]contracts.Step, 3), 120, 0)
	for i := 0; i < 3; i++ {
		if got := *m.ExpectedBeat(i); got != float64(i) {
			t.Errorf("ExpectedBeat(%d) = %v want %d", i, got, i)
		}
	}
	if m.ExpectedBeat(3) != nil || m.ExpectedBeat(-1) != nil {
		t.Error("ExpectedBeat out of range should be nil")
	}
}

func TestBuildWindowsInBeats(t *testing.T) {
	// 120 BPM: 150ms is 0.3 beats.
	m, _ := Build([]contracts.Step{{Duration: 1}, {Duration: 2}}, 120, 150*time.Millisecond)
	s, _ := m.Step(1)
	if math.Abs(s.WindowStart-0.7) > 1e-9 || math.Abs(s.WindowEnd-3.3) > 1e-9 {
		t.Errorf("Step(1) window = [%v, %v] want [0.7, 3.3]", s.WindowStart, s.WindowEnd)
	}
	if s.DurationBeats != 2 {
		t.Errorf("Step(1).DurationBeats = %v want 2", s.DurationBeats)
	}
}

func TestBuildRejectsBadTempo(t *testing.T) {
	if _, err := Build(nil, 0, 0); !errors.Is(err, contracts.ErrInvalidTempo) {
		t.Errorf("Build(bpm=0) err = %v want ErrInvalidTempo", err)
	}
}
