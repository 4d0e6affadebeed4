package contracts

import "time"

// Report is an event emitted to the presentation layer and the scoring service.
type Report interface {
	// Event returns the wire name of the report.
	Event() string
}

// NoteOnReport is emitted for every note-on together with its timing verdict.
type NoteOnReport struct {
	MIDI      uint8     `json:"midi"`
	Velocity  uint8     `json:"velocity"`
	Timestamp time.Time `json:"timestamp"`
	StepIndex int       `json:"step_index"`
	TimingVerdict
}

func (NoteOnReport) Event() string { return "midi_note_on" }

// NoteOffReport is emitted for every note-off, including note-on with velocity zero.
type NoteOffReport struct {
	MIDI uint8 `json:"midi"`
}

func (NoteOffReport) Event() string { return "midi_note_off" }

// BPMReport carries a debounced tempo detected from incoming clock pulses.
type BPMReport struct {
	BPM int `json:"bpm"`
}

func (BPMReport) Event() string { return "bpm_detected" }

// DemoStepReport is emitted when the demo sequencer starts a step.
type DemoStepReport struct {
	StepIndex int `json:"step_index"`
}

func (DemoStepReport) Event() string { return "demo_step_update" }

// DemoFinishedReport is emitted once after the last demo step has elapsed.
type DemoFinishedReport struct{}

func (DemoFinishedReport) Event() string { return "demo_finished" }

// BeatReport is emitted on every metronome pulse.
type BeatReport struct {
	BeatIndex int `json:"beat_index"`
}

func (BeatReport) Event() string { return "metronome_beat" }
