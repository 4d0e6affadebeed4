package contracts

// Step is one entry of a lesson plan or demo sequence.
type Step struct {
	Index    int     `json:"step_index"`     // Identifier echoed in demo_step_update.
	Text     string  `json:"text,omitempty"` // Caption shown by the presentation layer.
	Notes    []uint8 `json:"notes"`          // MIDI notes played together for this step.
	Duration float64 `json:"duration_beats"` // Length in beats; zero means one beat.
}

// Beats returns the step length in beats, applying the one-beat default.
func (s Step) Beats() float64 {
	if s.Duration <= 0 {
		return 1
	}
	return s.Duration
}

// StepBeat is the precomputed position of a lesson step on the beat grid.
// Window bounds are in beats and include the tolerance.
type StepBeat struct {
	StepIndex     int     `json:"step_index"`
	ExpectedBeat  float64 `json:"expected_beat"`
	WindowStart   float64 `json:"window_start"`
	WindowEnd     float64 `json:"window_end"`
	DurationBeats float64 `json:"duration_beats"`
	Text          string  `json:"text,omitempty"`
}
