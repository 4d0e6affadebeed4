package scheduler

import (
	"time"

	"github.com/leandrodaf/beatcoach/internal/beat"
)

// DefaultClickLength is how long a click note sounds.
const DefaultClickLength = 50 * time.Millisecond

// MetronomeConfig configures a Metronome.
type MetronomeConfig struct {
	Tolerance   time.Duration // Window half-width carried by each Reference.
	ClickLength time.Duration
	OnBeat      func(index int) // Called on every pulse, the first one included.
}

// Metronome pulses at a fixed tempo. Pulse k is due at start + k beats, so
// late callbacks do not accumulate drift.
type Metronome struct {
	cfg      MetronomeConfig
	inst     Instrument
	group    *Group
	ref      *beat.Reference
	clicking bool
}

func NewMetronome(q *Queue, inst Instrument, cfg MetronomeConfig) *Metronome {
	if cfg.ClickLength <= 0 {
		cfg.ClickLength = DefaultClickLength
	}
	if inst == nil {
		inst = Silent{}
	}
	return &Metronome{cfg: cfg, inst: inst, group: NewGroup(q)}
}

// Start stops any current run, then starts a new one at now and fires the
// first pulse immediately. The returned Reference describes the new grid.
func (m *Metronome) Start(now time.Time, bpm float64) (*beat.Reference, error) {
	ref, err := beat.New(now, bpm, m.cfg.Tolerance)
	if err != nil {
		return nil, err
	}
	m.Stop()
	m.ref = ref
	m.pulse(0)
	return ref, nil
}

// Stop cancels every pending pulse and click of the current run. It is
// idempotent and reports whether a run was active.
func (m *Metronome) Stop() bool {
	if m.ref == nil {
		return false
	}
	m.group.Revoke()
	if m.clicking {
		m.clicking = false
		m.inst.ClickOff()
	}
	m.ref = nil
	return true
}

// UpdateTempo restarts a running metronome at the new tempo. A stopped
// metronome stays stopped and nil is returned.
func (m *Metronome) UpdateTempo(now time.Time, bpm float64) (*beat.Reference, error) {
	if m.ref == nil {
		_, err := beat.New(now, bpm, m.cfg.Tolerance)
		return nil, err
	}
	return m.Start(now, bpm)
}

func (m *Metronome) Running() bool { return m.ref != nil }

// Reference returns the grid of the current run, or nil when stopped.
func (m *Metronome) Reference() *beat.Reference { return m.ref }

func (m *Metronome) pulse(k int) {
	at := m.ref.BeatInstant(float64(k))
	m.clicking = true
	m.inst.ClickOn()
	m.group.After(at.Add(m.cfg.ClickLength), func() {
		m.clicking = false
		m.inst.ClickOff()
	})
	if m.cfg.OnBeat != nil {
		m.cfg.OnBeat(k)
	}
	m.group.After(m.ref.BeatInstant(float64(k+1)), func() { m.pulse(k + 1) })
}
