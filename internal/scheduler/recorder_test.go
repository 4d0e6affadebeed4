package scheduler

import "fmt"

// recorder is an Instrument that records every call.
type recorder struct {
	calls []string
}

func (r *recorder) ClickOn()  { r.calls = append(r.calls, "click-on") }
func (r *recorder) ClickOff() { r.calls = append(r.calls, "click-off") }

func (r *recorder) NoteOn(note, velocity uint8) {
	r.calls = append(r.calls, fmt.Sprintf("on %d/%d", note, velocity))
}

func (r *recorder) NoteOff(note uint8) {
	r.calls = append(r.calls, fmt.Sprintf("off %d", note))
}

func (r *recorder) count(call string) int {
	n := 0
	for _, c := range r.calls {
		if c == call {
			n++
		}
	}
	return n
}
