package main

import "strconv"

// pianoKeys lays one and a half octaves over the home row, white keys on
// a s d f g h j k l ; ' and black keys on the row above.
var pianoKeys = map[string]int{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6, "g": 7, "y": 8,
	"h": 9, "u": 10, "j": 11, "k": 12, "o": 13, "l": 14, "p": 15, ";": 16, "'": 17,
}

const (
	baseNote  = 60
	minOctave = -4
	maxOctave = 4
)

// keyNote returns the MIDI note for a key press at the given octave shift.
func keyNote(key string, octave int) (uint8, bool) {
	offset, ok := pianoKeys[key]
	if !ok {
		return 0, false
	}
	n := baseNote + 12*octave + offset
	if n < 0 || n > 127 {
		return 0, false
	}
	return uint8(n), true
}

func clampOctave(o int) int {
	return max(minOctave, min(maxOctave, o))
}

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// noteName formats a MIDI note in scientific pitch notation, 60 being C4.
func noteName(n uint8) string {
	return noteNames[n%12] + strconv.Itoa(int(n)/12-1)
}
