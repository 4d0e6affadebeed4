// Package timing judges note-on instants against a beat grid.
package timing

import (
	"math"
	"time"

	"github.com/leandrodaf/beatcoach/internal/beat"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// DefaultHardError is how far outside its window a note may land and still be
// reported as a near miss of that beat.
const DefaultHardError = 300 * time.Millisecond

// Classifier holds the thresholds used by Classify. The zero value uses DefaultHardError.
type Classifier struct {
	HardError time.Duration
}

// Classify grades a note played at instant at.
//
// The note is compared with the window of the expected beat, or of the nearest
// beat when expected is nil. A note outside that window is early or late with a
// warning while the miss stays within HardError. A bigger miss is still early or
// late, as an error, when the note lands inside the window of the neighbouring
// beat on that side; otherwise it sits in the dead zone between windows and is
// reported as between beats.
//
// A nil ref yields an Unknown verdict.
func (c Classifier) Classify(at time.Time, ref *beat.Reference, expected *float64) contracts.TimingVerdict {
	if ref == nil {
		return contracts.TimingVerdict{Status: contracts.Unknown, Severity: contracts.SeverityUnknown}
	}

	bd := ref.BeatMs()
	tol := ref.ToleranceMs()
	rel := ref.RelativeMs(at)

	var exp float64
	if expected != nil {
		exp = *expected
	} else {
		// half-up rounding, so a note exactly between two beats goes to the later one
		exp = math.Floor(rel/bd + 0.5)
	}

	center := exp * bd
	v := contracts.TimingVerdict{
		DeviationMs:      rel - center,
		ExpectedBeat:     &exp,
		WindowStart:      center - tol,
		WindowEnd:        center + tol,
		NoteRelativeTime: rel,
		ToleranceMs:      tol,
	}

	hard := beat.Ms(c.hardError())
	switch {
	case rel >= v.WindowStart && rel <= v.WindowEnd:
		v.Status, v.Severity = contracts.OnTime, contracts.SeverityOk
	case rel < v.WindowStart:
		v.Status, v.Severity = miss(contracts.Early, v.WindowStart-rel, hard, inWindow(rel, center-bd, tol))
	default:
		v.Status, v.Severity = miss(contracts.Late, rel-v.WindowEnd, hard, inWindow(rel, center+bd, tol))
	}
	return v
}

func (c Classifier) hardError() time.Duration {
	if c.HardError <= 0 {
		return DefaultHardError
	}
	return c.HardError
}

func miss(side contracts.TimingStatus, by, hard float64, inNeighbour bool) (contracts.TimingStatus, contracts.Severity) {
	switch {
	case by <= hard:
		return side, contracts.SeverityWarning
	case inNeighbour:
		return side, contracts.SeverityError
	default:
		return contracts.BetweenBeats, contracts.SeverityError
	}
}

func inWindow(rel, center, tol float64) bool {
	return rel >= center-tol && rel <= center+tol
}
