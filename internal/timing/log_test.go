package timing

import (
	"testing"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

func TestLog(t *testing.T) {
	var l Log
	l.Append(Entry{Note: 60, Verdict: contracts.TimingVerdict{Status: contracts.OnTime}})
	l.Append(Entry{Note: 62, StepIndex: 1, Verdict: contracts.TimingVerdict{Status: contracts.Late}})
	l.Append(Entry{Note: 64, StepIndex: 2, Verdict: contracts.TimingVerdict{Status: contracts.OnTime}})

	entries := l.Entries()
	if len(entries) != 3 || entries[1].Note != 62 {
		t.Fatalf("Entries() = %+v", entries)
	}
	entries[0].Note = 0
	if l.Entries()[0].Note != 60 {
		t.Error("Entries() exposes internal storage")
	}
	sum := l.Summary()
	if sum[contracts.OnTime] != 2 || sum[contracts.Late] != 1 {
		t.Errorf("Summary() = %v", sum)
	}
	l.Reset()
	if l.Len() != 0 {
		t.Errorf("Len() after Reset = %d", l.Len())
	}
}
