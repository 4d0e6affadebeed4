package timing

import (
	"reflect"
	"testing"
	"time"

	"github.com/leandrodaf/beatcoach/internal/beat"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func ms(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

func f(v float64) *float64 { return &v }

func ref60(t *testing.T) *beat.Reference {
	t.Helper()
	ref, err := beat.New(t0, 60, 150*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	return ref
}

func TestClassify(t *testing.T) {
	ref := ref60(t)
	cases := []struct {
		at       int
		expected *float64
		status   contracts.TimingStatus
		severity contracts.Severity
		dev      float64
	}{
		{0, f(0), contracts.OnTime, contracts.SeverityOk, 0},
		{150, f(0), contracts.OnTime, contracts.SeverityOk, 150},
		{-150, f(0), contracts.OnTime, contracts.SeverityOk, -150},
		{200, f(0), contracts.Late, contracts.SeverityWarning, 200},
		{-200, f(0), contracts.Early, contracts.SeverityWarning, -200},
		{1450, f(0), contracts.BetweenBeats, contracts.SeverityError, 1450},
		// a full beat late lands in the next beat's window
		{1000, f(0), contracts.Late, contracts.SeverityError, 1000},
		{1000, f(2), contracts.Early, contracts.SeverityError, -1000},
		{500, f(0), contracts.BetweenBeats, contracts.SeverityError, 500},
		{450, f(0), contracts.Late, contracts.SeverityWarning, 450},
		// free play snaps to the nearest beat
		{2100, nil, contracts.OnTime, contracts.SeverityOk, 100},
		{2700, nil, contracts.Early, contracts.SeverityWarning, -300},
		{2500, nil, contracts.BetweenBeats, contracts.SeverityError, -500},
	}
	var c Classifier
	for _, tc := range cases {
		got := c.Classify(ms(tc.at), ref, tc.expected)
		if got.Status != tc.status || got.Severity != tc.severity || got.DeviationMs != tc.dev {
			t.Errorf("Classify(t=%d, expected=%v) = %s/%s dev %v want %s/%s dev %v",
				tc.at, deref(tc.expected), got.Status, got.Severity, got.DeviationMs, tc.status, tc.severity, tc.dev)
		}
	}
}

func TestClassifyWindow(t *testing.T) {
	got := Classifier{}.Classify(ms(2040), ref60(t), f(2))
	if got.WindowStart != 1850 || got.WindowEnd != 2150 || got.NoteRelativeTime != 2040 || got.ToleranceMs != 150 {
		t.Errorf("window = %+v", got)
	}
	if got.ExpectedBeat == nil || *got.ExpectedBeat != 2 {
		t.Errorf("ExpectedBeat = %v want 2", deref(got.ExpectedBeat))
	}
}

func TestClassifyFractionalBeat(t *testing.T) {
	got := Classifier{}.Classify(ms(1520), ref60(t), f(1.5))
	if got.Status != contracts.OnTime || got.DeviationMs != 20 {
		t.Errorf("Classify(1520, 1.5) = %s dev %v want on-time dev 20", got.Status, got.DeviationMs)
	}
}

func TestClassifyHardErrorThreshold(t *testing.T) {
	c := Classifier{HardError: 50 * time.Millisecond}
	if got := c.Classify(ms(250), ref60(t), f(0)); got.Status != contracts.BetweenBeats {
		t.Errorf("Classify(250) with 50ms hard error = %s want between-beats", got.Status)
	}
}

func TestClassifyNoReference(t *testing.T) {
	got := Classifier{}.Classify(ms(200), nil, f(0))
	want := contracts.TimingVerdict{Status: contracts.Unknown, Severity: contracts.SeverityUnknown}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Classify(nil ref) = %+v want %+v", got, want)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	ref := ref60(t)
	var c Classifier
	for _, at := range []int{-700, 0, 333, 1450, 4999} {
		a := c.Classify(ms(at), ref, nil)
		b := c.Classify(ms(at), ref, nil)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("Classify(%d) not idempotent: %+v vs %+v", at, a, b)
		}
	}
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
