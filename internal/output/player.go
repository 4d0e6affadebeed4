// Package output sends metronome clicks, countdown beeps and demo notes to a
// MIDI output port.
package output

import (
	"sync"
	"time"

	"github.com/leandrodaf/beatcoach/internal/logger"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"go.uber.org/multierr"
)

// DefaultReopenInterval limits how often a missing output is reopened.
const DefaultReopenInterval = 5 * time.Second

// DefaultClick is the click used by a YDP-style digital piano: the click voice on
// the last channel, so it never collides with what the learner plays.
var DefaultClick = contracts.ClickConfig{
	Channel:         15,
	Program:         6,
	Note:            84,
	Velocity:        100,
	Length:          50 * time.Millisecond,
	BeepNote:        96,
	BeepVelocity:    120,
	BeepLength:      100 * time.Millisecond,
	NoteVelocity:    100,
	DefaultNoteHold: 500 * time.Millisecond,
}

// Player writes short messages to an output port. With no port, every call is a
// no-op that returns contracts.ErrNoTransport and, at most once per reopen
// interval, tries to open the port again.
// It implements scheduler.Instrument.
type Player struct {
	mu       sync.Mutex
	out      contracts.OutputMIDI
	reopen   func() (contracts.OutputMIDI, error)
	interval time.Duration
	last     time.Time
	warned   bool

	click  contracts.ClickConfig
	logger contracts.Logger
	now    func() time.Time
}

// Config configures a Player.
type Config struct {
	Output         contracts.OutputMIDI
	Reopen         func() (contracts.OutputMIDI, error)
	ReopenInterval time.Duration
	Click          contracts.ClickConfig
	Logger         contracts.Logger
	Now            func() time.Time
}

func NewPlayer(cfg Config) *Player {
	if cfg.ReopenInterval <= 0 {
		cfg.ReopenInterval = DefaultReopenInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNopLogger()
	}
	return &Player{
		out:      cfg.Output,
		reopen:   cfg.Reopen,
		interval: cfg.ReopenInterval,
		click:    cfg.Click,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
}

// Click returns the sounds the player was configured with.
func (p *Player) Click() contracts.ClickConfig { return p.click }

// ClickOn selects the click voice and starts the click note.
func (p *Player) ClickOn() {
	ch := p.click.Channel & 0x0F
	_ = p.Send(byte(contracts.ProgramChange)|ch, p.click.Program&0x7F)
	_ = p.Send(byte(contracts.NoteOn)|ch, p.click.Note&0x7F, p.click.Velocity&0x7F)
}

func (p *Player) ClickOff() {
	_ = p.Send(byte(contracts.NoteOff)|p.click.Channel&0x0F, p.click.Note&0x7F, 0)
}

// StartBeep starts the countdown beep with the click voice.
func (p *Player) StartBeep() error {
	ch := p.click.Channel & 0x0F
	if err := p.Send(byte(contracts.ProgramChange)|ch, p.click.Program&0x7F); err != nil {
		return err
	}
	return p.Send(byte(contracts.NoteOn)|ch, p.click.BeepNote&0x7F, p.click.BeepVelocity&0x7F)
}

func (p *Player) BeepOn() { _ = p.StartBeep() }

func (p *Player) BeepOff() {
	_ = p.Send(byte(contracts.NoteOff)|p.click.Channel&0x0F, p.click.BeepNote&0x7F, 0)
}

// StartNote plays a note on the first channel.
func (p *Player) StartNote(note, velocity uint8) error {
	return p.Send(byte(contracts.NoteOn), note&0x7F, velocity&0x7F)
}

func (p *Player) NoteOn(note, velocity uint8) { _ = p.StartNote(note, velocity) }

func (p *Player) NoteOff(note uint8) {
	_ = p.Send(byte(contracts.NoteOff), note&0x7F, 0)
}

// Send writes one message. A write error drops the port so that the next call
// goes through the reopen path.
func (p *Player) Send(msg ...byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out == nil && !p.tryReopen() {
		return contracts.ErrNoTransport
	}
	if err := p.out.Send(msg); err != nil {
		p.log().Warn("MIDI output write failed, dropping port",
			p.log().Field().Binary("message", msg), p.log().Field().Error("error", err))
		err = multierr.Combine(contracts.ErrNoTransport, err, p.out.Close())
		p.out = nil
		p.last = p.now()
		return err
	}
	return nil
}

// Available reports whether an output port is open.
func (p *Player) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out != nil
}

// Close closes the port. The Player stays usable and will try to reopen.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out == nil {
		return nil
	}
	err := p.out.Close()
	p.out = nil
	return err
}

func (p *Player) tryReopen() bool {
	now := p.now()
	if p.reopen == nil || (!p.last.IsZero() && now.Sub(p.last) < p.interval) {
		p.warnOnce()
		return false
	}
	p.last = now
	out, err := p.reopen()
	if err != nil || out == nil {
		p.warnOnce()
		if err != nil {
			p.log().Debug("reopening MIDI output failed", p.log().Field().Error("error", err))
		}
		return false
	}
	p.out = out
	p.warned = false
	p.log().Info("MIDI output reopened")
	return true
}

func (p *Player) warnOnce() {
	if p.warned {
		return
	}
	p.warned = true
	p.log().Warn("no MIDI output available, sound disabled")
}

func (p *Player) log() contracts.Logger { return p.logger }
