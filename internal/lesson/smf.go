package lesson

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultTempo is used when a file carries no tempo meta event.
const DefaultTempo = 120.0

// LoadSMF reads a Standard MIDI File and returns its steps and initial tempo.
func LoadSMF(path string) ([]contracts.Step, float64, error) {
	sm, err := smf.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	return fromSMF(sm)
}

// ReadSMF is LoadSMF for an already opened stream.
func ReadSMF(r io.Reader) ([]contracts.Step, float64, error) {
	sm, err := smf.ReadFrom(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read smf: %w", err)
	}
	return fromSMF(sm)
}

// fromSMF groups note starts that share a tick into one step, across all tracks.
// A step lasts until the next step starts; the last one lasts until the last
// event of the file, or one beat when nothing follows it.
func fromSMF(sm *smf.SMF) ([]contracts.Step, float64, error) {
	ticks, ok := sm.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return nil, 0, fmt.Errorf("unsupported time format %v, expected metric ticks", sm.TimeFormat)
	}

	tempo := DefaultTempo
	var tempoSeen bool
	starts := map[int64][]uint8{}
	var end int64

	for _, track := range sm.Tracks {
		var abs int64
		for _, ev := range track {
			abs += int64(ev.Delta)
			var bpm float64
			if !tempoSeen && ev.Message.GetMetaTempo(&bpm) && bpm > 0 {
				tempo, tempoSeen = roundTempo(bpm), true
			}
			var ch, key, vel uint8
			if ev.Message.GetNoteStart(&ch, &key, &vel) {
				starts[abs] = append(starts[abs], key)
			}
			if abs > end {
				end = abs
			}
		}
	}
	if len(starts) == 0 {
		return nil, 0, fmt.Errorf("no notes found")
	}

	order := make([]int64, 0, len(starts))
	for tick := range starts {
		order = append(order, tick)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	steps := make([]contracts.Step, len(order))
	for i, tick := range order {
		next := end
		if i+1 < len(order) {
			next = order[i+1]
		}
		duration := float64(next-tick) / float64(ticks)
		if duration <= 0 {
			duration = 1
		}
		notes := starts[tick]
		sort.Slice(notes, func(a, b int) bool { return notes[a] < notes[b] })
		steps[i] = contracts.Step{Index: i, Notes: notes, Duration: duration}
	}
	return steps, tempo, nil
}

// roundTempo trims the error of the microseconds-per-quarter encoding so whole
// tempos import exactly.
func roundTempo(bpm float64) float64 {
	return math.Round(bpm*1000) / 1000
}
