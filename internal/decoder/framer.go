package decoder

import "github.com/leandrodaf/beatcoach/sdk/contracts"

// DefaultMaxSysEx bounds the size of an accumulated SysEx message.
const DefaultMaxSysEx = 4096

// Framer splits a continuous MIDI byte stream (serial lines, packet lists) into
// complete messages. It applies running status, passes real-time bytes through
// immediately even when they interrupt another message, and accumulates SysEx.
// A Framer is not safe for concurrent use; give each stream its own.
type Framer struct {
	MaxSysEx int

	running byte
	buf     []byte
	sysex   bool
	dropped int
}

// Feed consumes data and calls emit once per complete message, in stream order.
// The slice passed to emit is owned by the callee.
func (f *Framer) Feed(data []byte, emit func(msg []byte)) {
	for _, b := range data {
		f.feedByte(b, emit)
	}
}

// Dropped returns how many bytes or partial messages were discarded so far.
func (f *Framer) Dropped() int {
	return f.dropped
}

// Reset forgets running status and any partial message.
func (f *Framer) Reset() {
	f.running = 0
	f.buf = f.buf[:0]
	f.sysex = false
}

func (f *Framer) feedByte(b byte, emit func([]byte)) {
	switch {
	case IsRealTime(b):
		emit([]byte{b})
		return
	case b == byte(contracts.SysExStart):
		f.abandonSysEx()
		f.running = 0
		f.sysex = true
		f.buf = append(f.buf[:0], b)
		return
	case b == byte(contracts.SysExEnd):
		if !f.sysex {
			f.dropped++
			return
		}
		f.buf = append(f.buf, b)
		f.flush(emit)
		f.sysex = false
		return
	case b >= 0x80:
		f.abandonSysEx()
		f.startStatus(b, emit)
		return
	}

	// data byte
	if f.sysex {
		limit := f.MaxSysEx
		if limit <= 0 {
			limit = DefaultMaxSysEx
		}
		if len(f.buf) >= limit {
			f.dropped++
			f.sysex = false
			f.buf = f.buf[:0]
			return
		}
		f.buf = append(f.buf, b)
		return
	}
	if len(f.buf) == 0 {
		if f.running == 0 {
			f.dropped++
			return
		}
		f.buf = append(f.buf, f.running)
	}
	f.buf = append(f.buf, b)
	if len(f.buf) == MessageLength(f.buf[0]) {
		f.flush(emit)
	}
}

func (f *Framer) startStatus(b byte, emit func([]byte)) {
	if len(f.buf) > 0 {
		f.dropped++
	}
	f.buf = f.buf[:0]
	if b < 0xF0 {
		f.running = b
		f.buf = append(f.buf, b)
		return
	}
	// System common cancels running status.
	f.running = 0
	switch MessageLength(b) {
	case 0:
		f.dropped++
	case 1:
		emit([]byte{b})
	default:
		f.buf = append(f.buf, b)
	}
}

func (f *Framer) abandonSysEx() {
	if f.sysex {
		f.dropped++
		f.sysex = false
		f.buf = f.buf[:0]
	}
}

func (f *Framer) flush(emit func([]byte)) {
	msg := make([]byte, len(f.buf))
	copy(msg, f.buf)
	f.buf = f.buf[:0]
	emit(msg)
}
