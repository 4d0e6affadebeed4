package beat

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewRejectsBadTempo(t *testing.T) {
	for _, bpm := range []float64{0, -60, math.NaN(), math.Inf(1)} {
		if _, err := New(t0, bpm, DefaultTolerance); !errors.Is(err, contracts.ErrInvalidTempo) {
			t.Errorf("New(bpm=%v) err = %v want ErrInvalidTempo", bpm, err)
		}
	}
}

func TestPosition(t *testing.T) {
	ref, err := New(t0, 120, DefaultTolerance)
	if err != nil {
		t.Fatal(err)
	}
	if ref.BeatMs() != 500 {
		t.Fatalf("BeatMs() = %v want 500", ref.BeatMs())
	}
	cases := []struct {
		at       time.Duration
		index    int
		fraction float64
	}{
		{0, 0, 0},
		{250 * time.Millisecond, 0, 0.5},
		{1250 * time.Millisecond, 2, 0.5},
		{-125 * time.Millisecond, -1, 0.75},
	}
	for _, c := range cases {
		got := ref.Position(t0.Add(c.at))
		if got.BeatIndex != c.index || math.Abs(got.BeatFraction-c.fraction) > 1e-9 {
			t.Errorf("Position(%v) = %+v want index %d fraction %v", c.at, got, c.index, c.fraction)
		}
	}
}

func TestExpectedBeatTime(t *testing.T) {
	ref, _ := New(t0, 90, DefaultTolerance)
	if got, want := ref.ExpectedBeatTime(3), 2000.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("ExpectedBeatTime(3) = %v want %v", got, want)
	}
	if got, want := ref.BeatInstant(3), t0.Add(2*time.Second); !got.Equal(want) {
		t.Errorf("BeatInstant(3) = %v want %v", got, want)
	}
}

func TestHolderPublish(t *testing.T) {
	var h Holder
	if h.Load() != nil {
		t.Fatal("zero Holder not empty")
	}
	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(bpm float64) {
			defer wg.Done()
			ref, _ := New(t0, bpm, DefaultTolerance)
			h.Publish(ref)
			if got := h.Load(); got == nil || got.BeatMs() != 60000/got.BPM() {
				t.Errorf("Load() = %+v, inconsistent reference", got)
			}
		}(float64(i * 30))
	}
	wg.Wait()
	h.Clear()
	if h.Load() != nil {
		t.Error("Clear did not remove the reference")
	}
}
