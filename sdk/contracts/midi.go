package contracts

import (
	"fmt"
	"time"
)

// RawMessage is one complete MIDI message as delivered by an input transport.
type RawMessage struct {
	Data      []byte    // Status byte followed by data bytes.
	Timestamp time.Time // Arrival time; carries a monotonic reading when taken from time.Now.
}

// EventKind identifies the variant held by an Event.
type EventKind uint8

const (
	KindNoteOn EventKind = iota + 1
	KindNoteOff
	KindPolyPressure
	KindControlChange
	KindProgramChange
	KindChannelPressure
	KindPitchBend
	KindSysEx
	KindClock
	KindTransport
	KindActiveSensing
	KindReset
)

var kindNames = map[EventKind]string{
	KindNoteOn:          "NoteOn",
	KindNoteOff:         "NoteOff",
	KindPolyPressure:    "PolyPressure",
	KindControlChange:   "ControlChange",
	KindProgramChange:   "ProgramChange",
	KindChannelPressure: "ChannelPressure",
	KindPitchBend:       "PitchBend",
	KindSysEx:           "SysEx",
	KindClock:           "Clock",
	KindTransport:       "Transport",
	KindActiveSensing:   "ActiveSensing",
	KindReset:           "Reset",
}

func (k EventKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// TransportKind is the sub-type of a KindTransport event.
type TransportKind uint8

const (
	TransportStart TransportKind = iota + 1
	TransportContinue
	TransportStop
)

func (t TransportKind) String() string {
	switch t {
	case TransportStart:
		return "Start"
	case TransportContinue:
		return "Continue"
	case TransportStop:
		return "Stop"
	}
	return fmt.Sprintf("TransportKind(%d)", uint8(t))
}

// Event is a decoded MIDI message. Only the fields relevant to Kind are set.
type Event struct {
	Kind       EventKind
	Channel    uint8         // 0-15, channel messages only.
	Note       uint8         // NoteOn, NoteOff, PolyPressure.
	Velocity   uint8         // NoteOn.
	Controller uint8         // ControlChange number.
	Value      uint8         // ControlChange value.
	Program    uint8         // ProgramChange.
	Pressure   uint8         // ChannelPressure, PolyPressure.
	Bend       uint16        // PitchBend, 0-16383, 8192 is center.
	Transport  TransportKind // Transport.
	Data       []byte        // SysEx payload without the F0/F7 framing.
}

// MIDICommand is the high nibble of a channel status byte, or a full system status byte.
type MIDICommand byte

const (
	NoteOff         MIDICommand = 0x80
	NoteOn          MIDICommand = 0x90
	PolyPressure    MIDICommand = 0xA0
	ControlChange   MIDICommand = 0xB0
	ProgramChange   MIDICommand = 0xC0
	ChannelPressure MIDICommand = 0xD0
	PitchBend       MIDICommand = 0xE0

	SysExStart    MIDICommand = 0xF0
	SysExEnd      MIDICommand = 0xF7
	TimingClock   MIDICommand = 0xF8
	Start         MIDICommand = 0xFA
	Continue      MIDICommand = 0xFB
	Stop          MIDICommand = 0xFC
	ActiveSensing MIDICommand = 0xFE
	SystemReset   MIDICommand = 0xFF
)

// ClientMIDI defines an interface for MIDI input transports.
type ClientMIDI interface {
	Stop() error                               // Stops capture and releases the port.
	ListDevices() ([]DeviceInfo, error)        // Lists available input ports.
	SelectDevice(deviceID int) error           // Opens the input port at the given index.
	StartCapture(eventChannel chan RawMessage) // Delivers every received message, in arrival order, to the channel.
}

// OutputMIDI sends raw MIDI messages to an output port.
type OutputMIDI interface {
	Send(msg []byte) error
	Close() error
}
