package main

import "testing"

func TestKeyNote(t *testing.T) {
	cases := []struct {
		key    string
		octave int
		want   uint8
		ok     bool
	}{
		{"a", 0, 60, true},
		{"w", 0, 61, true},
		{"'", 0, 77, true},
		{"k", 0, 72, true},
		{"a", -1, 48, true},
		{"a", 4, 108, true},
		{"'", 4, 0, false},
		{"q", 0, 0, false},
	}
	for _, c := range cases {
		got, ok := keyNote(c.key, c.octave)
		if got != c.want || ok != c.ok {
			t.Errorf("keyNote(%q, %d) = %d, %v want %d, %v", c.key, c.octave, got, ok, c.want, c.ok)
		}
	}
}

func TestClampOctave(t *testing.T) {
	for in, want := range map[int]int{-9: minOctave, -2: -2, 0: 0, 9: maxOctave} {
		if got := clampOctave(in); got != want {
			t.Errorf("clampOctave(%d) = %d want %d", in, got, want)
		}
	}
}

func TestNoteName(t *testing.T) {
	for n, want := range map[uint8]string{60: "C4", 61: "C#4", 69: "A4", 0: "C-1", 127: "G9"} {
		if got := noteName(n); got != want {
			t.Errorf("noteName(%d) = %q want %q", n, got, want)
		}
	}
}
