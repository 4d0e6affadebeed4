package contracts

import "errors"

var (
	// ErrDecode is returned for malformed or unsupported MIDI byte sequences.
	ErrDecode = errors.New("midi decode error")
	// ErrNoTransport is returned when no MIDI output device is available.
	ErrNoTransport = errors.New("no MIDI transport available")
	// ErrReferenceUnavailable marks a classification made while no metronome was running.
	ErrReferenceUnavailable = errors.New("beat reference unavailable")
	// ErrDeliveryFailure is returned when a report could not be delivered after all retries.
	ErrDeliveryFailure = errors.New("report delivery failed")
	// ErrInvalidTempo is returned for non-positive or non-finite tempos.
	ErrInvalidTempo = errors.New("invalid tempo")
	// ErrSessionClosed is returned by control operations after the session loop has exited.
	ErrSessionClosed = errors.New("session closed")

	// ErrNoMIDIDevices is returned when a backend exposes no ports.
	ErrNoMIDIDevices = errors.New("no MIDI devices found")
	// ErrInvalidMIDIDevice is returned when a device index or name does not match any port.
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
	// ErrUnsupportedBackend is returned for an unknown backend name.
	ErrUnsupportedBackend = errors.New("unsupported MIDI backend")
)
