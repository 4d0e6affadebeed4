package scheduler

// Instrument makes the sounds requested by the metronome and the demo sequencer.
// Implementations must not block.
type Instrument interface {
	ClickOn()
	ClickOff()
	NoteOn(note, velocity uint8)
	NoteOff(note uint8)
}

// Silent is an Instrument that does nothing.
type Silent struct{}

func (Silent) ClickOn()          {}
func (Silent) ClickOff()         {}
func (Silent) NoteOn(_, _ uint8) {}
func (Silent) NoteOff(_ uint8)   {}
