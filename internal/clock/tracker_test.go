package clock

import (
	"testing"
	"time"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// pulses feeds n pulses spaced by step, starting at start, and returns every estimate.
func pulses(tr *Tracker, start time.Time, step time.Duration, n int) (time.Time, []int) {
	var got []int
	at := start
	for i := 0; i < n; i++ {
		if bpm, ok := tr.OnPulse(at); ok {
			got = append(got, bpm)
		}
		at = at.Add(step)
	}
	return at, got
}

func TestTrackerDetects120(t *testing.T) {
	tr := NewTracker(0)
	_, got := pulses(tr, t0, 20833*time.Microsecond, PPQ+1)
	if len(got) != 1 || got[0] != 120 {
		t.Errorf("estimates = %v want [120]", got)
	}
}

func TestTrackerBaselineOnly(t *testing.T) {
	tr := NewTracker(0)
	_, got := pulses(tr, t0, 20833*time.Microsecond, PPQ)
	if len(got) != 0 {
		t.Errorf("estimates after %d pulses = %v want none", PPQ, got)
	}
}

func TestTrackerDebounce(t *testing.T) {
	tr := NewTracker(0)
	step := time.Minute / (120 * PPQ)
	at, got := pulses(tr, t0, step, PPQ*4+1)
	if len(got) != 1 || got[0] != 120 {
		t.Fatalf("steady estimates = %v want [120]", got)
	}

	// 121 BPM is within the 1 BPM dead band.
	step = time.Minute / (121 * PPQ)
	at, got = pulses(tr, at, step, PPQ*2)
	if len(got) != 0 {
		t.Errorf("estimates at 121 = %v want none", got)
	}

	step = time.Minute / (90 * PPQ)
	_, got = pulses(tr, at, step, PPQ*2)
	// The first average still contains one 121 BPM delta, so it may land on 91;
	// the pure 90 BPM averages after it fall inside the dead band.
	if len(got) != 1 || got[0] < 90 || got[0] > 91 {
		t.Errorf("estimates at 90 = %v want one estimate of 90 or 91", got)
	}
}

func TestTrackerGapRebaselines(t *testing.T) {
	tr := NewTracker(500 * time.Millisecond)
	step := 20833 * time.Microsecond
	at, _ := pulses(tr, t0, step, 10)
	at = at.Add(2 * time.Second)
	_, got := pulses(tr, at, step, PPQ)
	if len(got) != 0 {
		t.Errorf("estimates after gap = %v want none (baseline only)", got)
	}
	if bpm, ok := tr.OnPulse(at.Add(PPQ * step)); !ok || bpm != 120 {
		t.Errorf("OnPulse after gap = %d, %v want 120, true", bpm, ok)
	}
}

func TestTrackerZeroDelta(t *testing.T) {
	tr := NewTracker(0)
	_, got := pulses(tr, t0, 0, PPQ+1)
	if len(got) != 0 {
		t.Errorf("estimates with zero delta = %v want none", got)
	}
}

func TestTrackerReset(t *testing.T) {
	tr := NewTracker(0)
	step := 20833 * time.Microsecond
	at, _ := pulses(tr, t0, step, 12)
	tr.Reset()
	_, got := pulses(tr, at, step, PPQ)
	if len(got) != 0 {
		t.Errorf("estimates after reset = %v want none", got)
	}
}
