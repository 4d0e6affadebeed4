package scheduler

import (
	"math"
	"time"

	"github.com/leandrodaf/beatcoach/internal/beat"
	"github.com/leandrodaf/beatcoach/internal/lesson"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// DefaultArticulation is the fraction of a step during which its notes sound.
const DefaultArticulation = 0.9

// DemoPhase is the state of a Demo.
type DemoPhase int

const (
	DemoIdle DemoPhase = iota
	DemoPlaying
	DemoFinished
)

func (p DemoPhase) String() string {
	switch p {
	case DemoPlaying:
		return "playing"
	case DemoFinished:
		return "finished"
	}
	return "idle"
}

// DemoConfig configures a Demo.
type DemoConfig struct {
	Articulation float64
	Velocity     uint8
	ClickLength  time.Duration
	OnStep       func(stepIndex int) // Receives contracts.Step.Index.
	OnClick      func(n int)         // n counts clicks from zero within one Play.
	OnFinished   func()
}

// Demo plays a list of steps one after the other: each step sounds its notes,
// clicks once per beat, then hands over to the next step.
type Demo struct {
	cfg   DemoConfig
	inst  Instrument
	group *Group

	steps    []contracts.Step
	layout   *lesson.Map
	ref      *beat.Reference
	phase    DemoPhase
	current  int
	sounding map[uint8]int
	clicking bool
	clicks   int
}

func NewDemo(q *Queue, inst Instrument, cfg DemoConfig) *Demo {
	if cfg.Articulation <= 0 || cfg.Articulation > 1 {
		cfg.Articulation = DefaultArticulation
	}
	if cfg.Velocity == 0 {
		cfg.Velocity = 100
	}
	if cfg.ClickLength <= 0 {
		cfg.ClickLength = DefaultClickLength
	}
	if inst == nil {
		inst = Silent{}
	}
	return &Demo{cfg: cfg, inst: inst, group: NewGroup(q), sounding: make(map[uint8]int)}
}

// Play stops any current playback and starts steps at now. The first step
// begins synchronously.
func (d *Demo) Play(now time.Time, tempo float64, steps []contracts.Step) error {
	layout, err := lesson.Build(steps, tempo, 0)
	if err != nil {
		return err
	}
	ref, err := beat.New(now, tempo, 0)
	if err != nil {
		return err
	}
	d.Stop()
	d.steps = append([]contracts.Step(nil), steps...)
	d.layout, d.ref = layout, ref
	d.clicks = 0
	d.startStep(0)
	return nil
}

// Stop cancels all pending notes, clicks and step changes and silences what is
// sounding. It is idempotent and reports whether playback was active.
func (d *Demo) Stop() bool {
	d.group.Revoke()
	for note := range d.sounding {
		d.inst.NoteOff(note)
		delete(d.sounding, note)
	}
	if d.clicking {
		d.clicking = false
		d.inst.ClickOff()
	}
	was := d.phase == DemoPlaying
	if was {
		d.phase = DemoIdle
	}
	return was
}

// State returns the phase and, while playing, the position of the current step.
func (d *Demo) State() (DemoPhase, int) {
	return d.phase, d.current
}

func (d *Demo) startStep(i int) {
	if i >= d.layout.Len() {
		d.phase = DemoFinished
		if d.cfg.OnFinished != nil {
			d.cfg.OnFinished()
		}
		return
	}
	d.phase, d.current = DemoPlaying, i
	sb, _ := d.layout.Step(i)
	step := d.steps[i]

	if d.cfg.OnStep != nil {
		d.cfg.OnStep(step.Index)
	}

	off := d.ref.BeatInstant(sb.ExpectedBeat + sb.DurationBeats*d.cfg.Articulation)
	for _, note := range step.Notes {
		d.sounding[note]++
		d.inst.NoteOn(note, d.cfg.Velocity)
		d.group.After(off, func() { d.release(note) })
	}

	clicks := int(math.Ceil(sb.DurationBeats))
	d.click(d.ref.BeatInstant(sb.ExpectedBeat))
	for k := 1; k < clicks; k++ {
		at := d.ref.BeatInstant(sb.ExpectedBeat + float64(k))
		d.group.After(at, func() { d.click(at) })
	}

	d.group.After(d.ref.BeatInstant(sb.ExpectedBeat+sb.DurationBeats), func() { d.startStep(i + 1) })
}

func (d *Demo) click(at time.Time) {
	d.clicking = true
	d.inst.ClickOn()
	d.group.After(at.Add(d.cfg.ClickLength), func() {
		d.clicking = false
		d.inst.ClickOff()
	})
	if d.cfg.OnClick != nil {
		d.cfg.OnClick(d.clicks)
	}
	d.clicks++
}

func (d *Demo) release(note uint8) {
	if d.sounding[note] <= 1 {
		delete(d.sounding, note)
	} else {
		d.sounding[note]--
	}
	d.inst.NoteOff(note)
}
