package contracts

import (
	"context"
	"time"
)

// PracticeSession is the control surface driven by the lesson source.
type PracticeSession interface {
	Run(ctx context.Context) error
	Input() chan RawMessage
	Subscribe() <-chan Report

	StartMetronome(bpm float64) error
	StopMetronome() error
	UpdateTempo(bpm float64) error
	LoadLesson(steps []Step, tempo float64) error
	AdvanceStep(index int) error
	PlayDemo(tempo float64, steps []Step) error
	StopDemo() error
	PlayNote(note uint8, hold time.Duration) error
	CountdownBeep(count int) error

	BeatPosition() (BeatPosition, bool)
	TimingLog() []TimingEntry
}
