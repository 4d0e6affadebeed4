// Package decoder turns raw MIDI bytes into typed events.
package decoder

import (
	"fmt"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// MessageLength returns the total size in bytes, status included, of a message
// starting with the given status byte. It returns 0 for variable-length (SysEx)
// and undefined statuses, and -1 for data bytes.
func MessageLength(status byte) int {
	if status < 0x80 {
		return -1
	}
	if status < 0xF0 {
		switch contracts.MIDICommand(status & 0xF0) {
		case contracts.ProgramChange, contracts.ChannelPressure:
			return 2
		default:
			return 3
		}
	}
	switch status {
	case 0xF1, 0xF3:
		return 2
	case 0xF2:
		return 3
	case 0xF6, 0xF8, 0xFA, 0xFB, 0xFC, 0xFE, 0xFF:
		return 1
	}
	return 0
}

// IsRealTime reports whether b is a single-byte system real-time status.
func IsRealTime(b byte) bool {
	return b >= 0xF8
}

// IsSystemCommon reports whether b is a system common status (time code,
// song position and select, tune request and the undefined F4/F5). They are
// not decoded into events.
func IsSystemCommon(b byte) bool {
	return b >= 0xF1 && b <= 0xF6
}

// Decode converts one complete message. Malformed or unsupported input yields an
// error wrapping contracts.ErrDecode. Bytes past the expected length are ignored.
func Decode(data []byte) (contracts.Event, error) {
	if len(data) == 0 {
		return contracts.Event{}, fmt.Errorf("%w: empty message", contracts.ErrDecode)
	}
	status := data[0]
	switch {
	case status < 0x80:
		return contracts.Event{}, fmt.Errorf("%w: missing status byte (0x%02X)", contracts.ErrDecode, status)
	case status < 0xF0:
		return decodeChannel(status, data)
	case status == byte(contracts.SysExStart):
		return decodeSysEx(data)
	case IsRealTime(status):
		return decodeRealTime(status)
	}
	return contracts.Event{}, fmt.Errorf("%w: unsupported system status 0x%02X", contracts.ErrDecode, status)
}

func decodeChannel(status byte, data []byte) (contracts.Event, error) {
	need := MessageLength(status)
	if len(data) < need {
		return contracts.Event{}, fmt.Errorf("%w: truncated message, status 0x%02X needs %d bytes, got %d",
			contracts.ErrDecode, status, need, len(data))
	}
	for _, b := range data[1:need] {
		if b > 0x7F {
			return contracts.Event{}, fmt.Errorf("%w: data byte 0x%02X out of range", contracts.ErrDecode, b)
		}
	}

	channel := status & 0x0F
	d1 := data[1]
	var d2 byte
	if need == 3 {
		d2 = data[2]
	}

	switch contracts.MIDICommand(status & 0xF0) {
	case contracts.NoteOff:
		return contracts.Event{Kind: contracts.KindNoteOff, Channel: channel, Note: d1}, nil
	case contracts.NoteOn:
		if d2 == 0 {
			return contracts.Event{Kind: contracts.KindNoteOff, Channel: channel, Note: d1}, nil
		}
		return contracts.Event{Kind: contracts.KindNoteOn, Channel: channel, Note: d1, Velocity: d2}, nil
	case contracts.PolyPressure:
		return contracts.Event{Kind: contracts.KindPolyPressure, Channel: channel, Note: d1, Pressure: d2}, nil
	case contracts.ControlChange:
		return contracts.Event{Kind: contracts.KindControlChange, Channel: channel, Controller: d1, Value: d2}, nil
	case contracts.ProgramChange:
		return contracts.Event{Kind: contracts.KindProgramChange, Channel: channel, Program: d1}, nil
	case contracts.ChannelPressure:
		return contracts.Event{Kind: contracts.KindChannelPressure, Channel: channel, Pressure: d1}, nil
	default: // PitchBend
		return contracts.Event{Kind: contracts.KindPitchBend, Channel: channel, Bend: uint16(d2)<<7 | uint16(d1)}, nil
	}
}

func decodeSysEx(data []byte) (contracts.Event, error) {
	end := -1
	for i := 1; i < len(data); i++ {
		if data[i] == byte(contracts.SysExEnd) {
			end = i
			break
		}
		if data[i] > 0x7F {
			return contracts.Event{}, fmt.Errorf("%w: status 0x%02X inside SysEx", contracts.ErrDecode, data[i])
		}
	}
	if end < 0 {
		return contracts.Event{}, fmt.Errorf("%w: unterminated SysEx", contracts.ErrDecode)
	}
	payload := make([]byte, end-1)
	copy(payload, data[1:end])
	return contracts.Event{Kind: contracts.KindSysEx, Data: payload}, nil
}

func decodeRealTime(status byte) (contracts.Event, error) {
	switch contracts.MIDICommand(status) {
	case contracts.TimingClock:
		return contracts.Event{Kind: contracts.KindClock}, nil
	case contracts.Start:
		return contracts.Event{Kind: contracts.KindTransport, Transport: contracts.TransportStart}, nil
	case contracts.Continue:
		return contracts.Event{Kind: contracts.KindTransport, Transport: contracts.TransportContinue}, nil
	case contracts.Stop:
		return contracts.Event{Kind: contracts.KindTransport, Transport: contracts.TransportStop}, nil
	case contracts.ActiveSensing:
		return contracts.Event{Kind: contracts.KindActiveSensing}, nil
	case contracts.SystemReset:
		return contracts.Event{Kind: contracts.KindReset}, nil
	}
	return contracts.Event{}, fmt.Errorf("%w: undefined real-time status 0x%02X", contracts.ErrDecode, status)
}

var commandNames = map[contracts.MIDICommand]string{
	contracts.NoteOff:         "Note Off",
	contracts.NoteOn:          "Note On",
	contracts.PolyPressure:    "Polyphonic Pressure",
	contracts.ControlChange:   "Control Change",
	contracts.ProgramChange:   "Program Change",
	contracts.ChannelPressure: "Channel Pressure",
	contracts.PitchBend:       "Pitch Bend",
}

var systemNames = map[byte]string{
	0xF0: "System Exclusive",
	0xF1: "MIDI Time Code Quarter Frame",
	0xF2: "Song Position Pointer",
	0xF3: "Song Select",
	0xF6: "Tune Request",
	0xF7: "End of Exclusive",
	0xF8: "Timing Clock",
	0xFA: "Start",
	0xFB: "Continue",
	0xFC: "Stop",
	0xFE: "Active Sensing",
	0xFF: "System Reset",
}

// StatusName returns a human readable name for a status byte, for logs.
func StatusName(status byte) string {
	if status < 0x80 {
		return "Data"
	}
	if status >= 0xF0 {
		if name, ok := systemNames[status]; ok {
			return name
		}
		return "Undefined"
	}
	return commandNames[contracts.MIDICommand(status&0xF0)]
}
