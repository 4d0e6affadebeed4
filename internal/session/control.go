package session

import (
	"fmt"
	"time"

	"github.com/leandrodaf/beatcoach/internal/beat"
	"github.com/leandrodaf/beatcoach/internal/lesson"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// StartMetronome starts clicking at bpm from now, replacing any current run, and
// clears the timing log.
func (s *Session) StartMetronome(bpm float64) error {
	return s.exec(func(now time.Time) error { return s.startMetronome(now, bpm) })
}

// StopMetronome stops clicking. Notes played afterwards are classified Unknown.
func (s *Session) StopMetronome() error {
	return s.exec(func(time.Time) error {
		s.stopMetronome()
		return nil
	})
}

// UpdateTempo restarts a running metronome at bpm and clears the timing log.
// It only validates bpm when the metronome is stopped.
func (s *Session) UpdateTempo(bpm float64) error {
	return s.exec(func(now time.Time) error { return s.updateTempo(now, bpm) })
}

// LoadLesson lays out steps and rewinds to the first one.
func (s *Session) LoadLesson(steps []contracts.Step, tempo float64) error {
	return s.exec(func(time.Time) error { return s.loadLesson(steps, tempo) })
}

// AdvanceStep sets the step the learner is expected to play next. Past the end of
// the lesson, notes are judged against the nearest beat.
func (s *Session) AdvanceStep(index int) error {
	return s.exec(func(time.Time) error { return s.advanceStep(index) })
}

// PlayDemo stops the metronome and plays steps at tempo.
func (s *Session) PlayDemo(tempo float64, steps []contracts.Step) error {
	return s.exec(func(now time.Time) error { return s.playDemo(now, tempo, steps) })
}

func (s *Session) StopDemo() error {
	return s.exec(func(time.Time) error {
		s.stopDemo()
		return nil
	})
}

// PlayNote sounds note for hold, or for the configured default when hold is zero.
func (s *Session) PlayNote(note uint8, hold time.Duration) error {
	return s.exec(func(now time.Time) error { return s.playNote(now, note, hold) })
}

// CountdownBeep plays one countdown beep. count is the number being counted down.
func (s *Session) CountdownBeep(count int) error {
	return s.exec(func(now time.Time) error { return s.countdownBeep(now, count) })
}

func (s *Session) startMetronome(now time.Time, bpm float64) error {
	ref, err := s.metronome.Start(now, bpm)
	if err != nil {
		return err
	}
	s.ref.Publish(ref)
	s.log.Reset()
	s.logger.Info("metronome started",
		s.logger.Field().Float64("bpm", bpm),
		s.logger.Field().Float64("beat_ms", ref.BeatMs()))
	return nil
}

func (s *Session) stopMetronome() {
	if s.metronome.Stop() {
		s.logger.Info("metronome stopped")
	}
	s.ref.Clear()
}

func (s *Session) updateTempo(now time.Time, bpm float64) error {
	ref, err := s.metronome.UpdateTempo(now, bpm)
	if err != nil || ref == nil {
		return err
	}
	s.ref.Publish(ref)
	s.log.Reset()
	if s.steps != nil {
		if err := s.relayout(bpm); err != nil {
			return err
		}
	}
	s.logger.Info("metronome tempo changed", s.logger.Field().Float64("bpm", bpm))
	return nil
}

func (s *Session) loadLesson(steps []contracts.Step, tempo float64) error {
	s.steps = append([]contracts.Step(nil), steps...)
	if err := s.relayout(tempo); err != nil {
		s.steps = nil
		return err
	}
	s.step = 0
	s.logger.Info("lesson loaded",
		s.logger.Field().Int("steps", len(steps)),
		s.logger.Field().Float64("tempo", tempo),
		s.logger.Field().Float64("beats", s.lesson.TotalBeats()))
	return nil
}

func (s *Session) relayout(bpm float64) error {
	m, err := lesson.Build(s.steps, bpm, s.opts.Tolerance)
	if err != nil {
		return err
	}
	s.lesson = m
	return nil
}

func (s *Session) advanceStep(index int) error {
	if index < 0 {
		return fmt.Errorf("step index %d is negative", index)
	}
	s.step = index
	s.logger.Debug("lesson step advanced", s.logger.Field().Int("step", index))
	return nil
}

func (s *Session) playDemo(now time.Time, tempo float64, steps []contracts.Step) error {
	if _, err := beat.New(now, tempo, 0); err != nil {
		return err
	}
	s.stopMetronome()
	if err := s.demo.Play(now, tempo, steps); err != nil {
		return err
	}
	s.logger.Info("demo started",
		s.logger.Field().Float64("tempo", tempo),
		s.logger.Field().Int("steps", len(steps)))
	return nil
}

func (s *Session) stopDemo() {
	if s.demo.Stop() {
		s.logger.Info("demo stopped")
	}
}

func (s *Session) playNote(now time.Time, note uint8, hold time.Duration) error {
	if note > 127 {
		return fmt.Errorf("note %d out of range", note)
	}
	if hold <= 0 {
		hold = s.opts.Click.DefaultNoteHold
	}
	if err := s.player.StartNote(note, s.opts.Click.NoteVelocity); err != nil {
		s.logger.Debug("note not played", s.logger.Field().Error("error", err))
		return nil
	}
	s.oneshots.After(now.Add(hold), func() { s.player.NoteOff(note) })
	return nil
}

func (s *Session) countdownBeep(now time.Time, count int) error {
	s.logger.Debug("countdown", s.logger.Field().Int("count", count))
	if err := s.player.StartBeep(); err != nil {
		s.logger.Debug("countdown beep not played", s.logger.Field().Error("error", err))
		return nil
	}
	s.oneshots.After(now.Add(s.opts.Click.BeepLength), s.player.BeepOff)
	return nil
}
