package decoder

import (
	"reflect"
	"testing"
)

func frame(f *Framer, stream ...byte) [][]byte {
	var out [][]byte
	f.Feed(stream, func(msg []byte) {
		out = append(out, msg)
	})
	return out
}

func TestFramerRunningStatus(t *testing.T) {
	var f Framer
	got := frame(&f, 0x90, 60, 100, 62, 90, 64, 0)
	want := [][]byte{{0x90, 60, 100}, {0x90, 62, 90}, {0x90, 64, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("running status = % X want % X", got, want)
	}
}

func TestFramerRealTimeInterleaved(t *testing.T) {
	var f Framer
	got := frame(&f, 0x90, 60, 0xF8, 100, 0xFE, 0xC3, 7)
	want := [][]byte{{0xF8}, {0x90, 60, 100}, {0xFE}, {0xC3, 7}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("interleaved = % X want % X", got, want)
	}
}

func TestFramerSplitAcrossFeeds(t *testing.T) {
	var f Framer
	var got [][]byte
	emit := func(msg []byte) { got = append(got, msg) }
	f.Feed([]byte{0xE0, 0x00}, emit)
	f.Feed([]byte{0x40, 0xF0, 0x7E}, emit)
	f.Feed([]byte{0x01, 0xF7}, emit)
	want := [][]byte{{0xE0, 0x00, 0x40}, {0xF0, 0x7E, 0x01, 0xF7}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("split feeds = % X want % X", got, want)
	}
}

func TestFramerDropsOrphans(t *testing.T) {
	var f Framer
	got := frame(&f, 0x3C, 0x40, 0x90, 0x3C, 0x80, 0x3C, 0x00, 0xF7)
	want := [][]byte{{0x80, 0x3C, 0x00}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("orphans = % X want % X", got, want)
	}
	if f.Dropped() != 4 {
		t.Errorf("Dropped() = %d want 4", f.Dropped())
	}
}

func TestFramerSystemCommonCancelsRunningStatus(t *testing.T) {
	var f Framer
	got := frame(&f, 0x90, 60, 100, 0xF3, 2, 61, 0xF6)
	want := [][]byte{{0x90, 60, 100}, {0xF3, 2}, {0xF6}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("system common = % X want % X", got, want)
	}
}

func TestFramerSysExLimit(t *testing.T) {
	f := Framer{MaxSysEx: 4}
	got := frame(&f, 0xF0, 1, 2, 3, 4, 5, 0xF7, 0xF8)
	want := [][]byte{{0xF8}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sysex limit = % X want % X", got, want)
	}
}
