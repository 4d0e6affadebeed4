package contracts

import "time"

// TimingStatus is the outcome of classifying one note-on against the beat grid.
type TimingStatus string

const (
	OnTime       TimingStatus = "on-time"
	Early        TimingStatus = "early"
	Late         TimingStatus = "late"
	BetweenBeats TimingStatus = "between-beats"
	Unknown      TimingStatus = "unknown"
)

// Severity grades a TimingStatus.
type Severity string

const (
	SeverityOk      Severity = "ok"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
	SeverityUnknown Severity = "unknown"
)

// TimingVerdict is the result of a classification. Times are milliseconds relative
// to the metronome start.
type TimingVerdict struct {
	Status           TimingStatus `json:"timing_status"`
	DeviationMs      float64      `json:"timing_deviation_ms"`
	Severity         Severity     `json:"timing_severity"`
	ExpectedBeat     *float64     `json:"expected_beat"`
	WindowStart      float64      `json:"window_start"`
	WindowEnd        float64      `json:"window_end"`
	NoteRelativeTime float64      `json:"note_relative_time"`
	ToleranceMs      float64      `json:"tolerance_ms"`
}

// BeatPosition locates an instant on the beat grid.
type BeatPosition struct {
	Beat         float64 `json:"beat"`
	BeatIndex    int     `json:"beat_index"`
	BeatFraction float64 `json:"beat_fraction"`
	PositionMs   float64 `json:"position_ms"`
}

// TimingEntry is one classified note-on kept in a session's timing log.
type TimingEntry struct {
	Note      uint8         `json:"midi"`
	Timestamp time.Time     `json:"timestamp"`
	StepIndex int           `json:"step_index"`
	Verdict   TimingVerdict `json:"verdict"`
}
