// Package session owns the state of one practice session and runs it on a
// single goroutine: raw MIDI input, control commands and scheduled callbacks
// are all handled one at a time by Run.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/beatcoach/internal/beat"
	"github.com/leandrodaf/beatcoach/internal/clock"
	"github.com/leandrodaf/beatcoach/internal/lesson"
	"github.com/leandrodaf/beatcoach/internal/logger"
	"github.com/leandrodaf/beatcoach/internal/output"
	"github.com/leandrodaf/beatcoach/internal/scheduler"
	"github.com/leandrodaf/beatcoach/internal/timing"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

const (
	defaultInputBuffer  = 256
	defaultReportBuffer = 64
)

// ErrAlreadyRunning is returned by a second concurrent call to Run.
var ErrAlreadyRunning = errors.New("session already running")

var _ contracts.PracticeSession = (*Session)(nil)

type command struct {
	fn    func(now time.Time) error
	reply chan error
}

// Session implements contracts.PracticeSession.
type Session struct {
	logger contracts.Logger
	opts   contracts.SessionOptions
	now    func() time.Time

	input    chan contracts.RawMessage
	commands chan command
	done     chan struct{}
	running  atomic.Bool

	subMu  sync.Mutex
	subs   []chan contracts.Report
	closed bool

	ref beat.Holder
	log timing.Log

	// Owned by the Run goroutine.
	queue      *scheduler.Queue
	metronome  *scheduler.Metronome
	demo       *scheduler.Demo
	oneshots   *scheduler.Group
	player     *output.Player
	tracker    *clock.Tracker
	classifier timing.Classifier
	lesson     *lesson.Map
	steps      []contracts.Step
	step       int
}

// New builds a session. Options are expected to carry defaults already; only
// values that would otherwise break the session are filled in here.
func New(opts contracts.SessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = logger.NewNopLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.InputBuffer <= 0 {
		opts.InputBuffer = defaultInputBuffer
	}
	if opts.ReportBuffer <= 0 {
		opts.ReportBuffer = defaultReportBuffer
	}

	s := &Session{
		logger:     opts.Logger,
		opts:       opts,
		now:        opts.Now,
		input:      make(chan contracts.RawMessage, opts.InputBuffer),
		commands:   make(chan command),
		done:       make(chan struct{}),
		queue:      scheduler.NewQueue(),
		tracker:    clock.NewTracker(opts.MaxClockGap),
		classifier: timing.Classifier{HardError: opts.HardErrorThreshold},
	}
	s.player = output.NewPlayer(output.Config{
		Output:         opts.Output,
		Reopen:         opts.ReopenOutput,
		ReopenInterval: opts.ReopenInterval,
		Click:          opts.Click,
		Logger:         opts.Logger,
		Now:            opts.Now,
	})
	s.metronome = scheduler.NewMetronome(s.queue, s.player, scheduler.MetronomeConfig{
		Tolerance:   opts.Tolerance,
		ClickLength: opts.Click.Length,
		OnBeat:      func(i int) { s.emit(contracts.BeatReport{BeatIndex: i}) },
	})
	s.demo = scheduler.NewDemo(s.queue, s.player, scheduler.DemoConfig{
		Articulation: opts.DemoArticulation,
		Velocity:     opts.Click.NoteVelocity,
		ClickLength:  opts.Click.Length,
		OnStep:       func(i int) { s.emit(contracts.DemoStepReport{StepIndex: i}) },
		OnClick:      func(n int) { s.emit(contracts.BeatReport{BeatIndex: n}) },
		OnFinished: func() {
			s.logger.Info("demo finished")
			s.emit(contracts.DemoFinishedReport{})
		},
	})
	s.oneshots = scheduler.NewGroup(s.queue)
	return s
}

// Input returns the channel transports write raw messages to.
func (s *Session) Input() chan contracts.RawMessage { return s.input }

// Subscribe returns a channel receiving every report emitted from now on. A
// subscriber that falls behind loses reports rather than stalling the session.
// The channel is closed when Run returns.
func (s *Session) Subscribe() <-chan contracts.Report {
	ch := make(chan contracts.Report, s.opts.ReportBuffer)
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed {
		close(ch)
		return ch
	}
	s.subs = append(s.subs, ch)
	return ch
}

func (s *Session) emit(r contracts.Report) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- r:
		default:
			s.logger.Warn("report buffer full; dropping report", s.logger.Field().String("event", r.Event()))
		}
	}
}

// Run processes input, commands and timers until ctx is done. Control methods
// block until Run picks them up and fail with contracts.ErrSessionClosed after
// it returns.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	s.logger.Info("practice session started")

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	input := s.input
	for {
		var wake <-chan time.Time
		if next, ok := s.queue.Next(); ok {
			timer.Reset(max(next.Sub(s.now()), 0))
			wake = timer.C
		} else {
			timer.Stop()
		}

		select {
		case <-ctx.Done():
			return s.shutdown()
		case msg, ok := <-input:
			if !ok {
				s.logger.Info("input channel closed")
				input = nil
				continue
			}
			s.handleRaw(msg)
		case cmd := <-s.commands:
			cmd.reply <- cmd.fn(s.now())
		case <-wake:
			s.queue.RunDue(s.now())
		}
	}
}

func (s *Session) shutdown() error {
	close(s.done)
	s.metronome.Stop()
	s.demo.Stop()
	s.oneshots.Revoke()
	s.ref.Clear()
	err := s.player.Close()

	s.subMu.Lock()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
	s.closed = true
	s.subMu.Unlock()

	s.logger.Info("practice session stopped")
	return err
}

// exec runs fn on the session goroutine and waits for its result.
func (s *Session) exec(fn func(now time.Time) error) error {
	reply := make(chan error, 1)
	select {
	case s.commands <- command{fn: fn, reply: reply}:
	case <-s.done:
		return contracts.ErrSessionClosed
	}
	select {
	case err := <-reply:
		return err
	case <-s.done:
		return contracts.ErrSessionClosed
	}
}

// BeatPosition locates the current instant on the active beat grid. It does
// not go through the session goroutine.
func (s *Session) BeatPosition() (contracts.BeatPosition, bool) {
	ref := s.ref.Load()
	if ref == nil {
		return contracts.BeatPosition{}, false
	}
	return ref.Position(s.now()), true
}

// TimingLog returns every verdict since the metronome last started.
func (s *Session) TimingLog() []contracts.TimingEntry {
	return s.log.Entries()
}
