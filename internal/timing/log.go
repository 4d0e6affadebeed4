package timing

import (
	"sync"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// Entry is one classified note-on.
type Entry = contracts.TimingEntry

// Log is an append-only history of verdicts, cleared when a metronome run starts.
// It is safe for concurrent use.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

func (l *Log) Append(e Entry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// Entries returns a copy of the history in insertion order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Log) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// Summary counts entries per status.
func (l *Log) Summary() map[contracts.TimingStatus]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[contracts.TimingStatus]int)
	for _, e := range l.entries {
		out[e.Verdict.Status]++
	}
	return out
}
