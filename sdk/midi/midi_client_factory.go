package midi

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/leandrodaf/beatcoach/internal/midi/mididarwin"
	"github.com/leandrodaf/beatcoach/internal/midi/midiwindows"
	"github.com/leandrodaf/beatcoach/internal/midi/rtmidi"
	"github.com/leandrodaf/beatcoach/internal/midi/serialmidi"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// ErrUnsupportedOS is returned when the native backend has no implementation for the operating system.
var ErrUnsupportedOS = errors.New("unsupported operating system")

type initializer func(*contracts.ClientOptions) (contracts.ClientMIDI, error)

// nativeInitializers maps OS names to the native MIDI client initializers.
var nativeInitializers = map[string]initializer{
	"darwin":  mididarwin.NewMIDIClient,  // CoreMIDI
	"windows": midiwindows.NewMIDIClient, // winmm
}

var backendInitializers = map[contracts.Backend]initializer{
	contracts.BackendRtMidi: rtmidi.NewMIDIClient,
	contracts.BackendSerial: serialmidi.NewMIDIClient,
}

// NewClient initializes a MIDI client for opts.Backend. The native backend
// supports macOS (Darwin) and Windows and returns ErrUnsupportedOS elsewhere.
//
// opts *contracts.ClientOptions: Configuration options for the MIDI client.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: An error if the backend or operating system is unsupported or if initialization fails.
func NewClient(opts *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	if opts.Backend == "" || opts.Backend == contracts.BackendNative {
		if init, exists := nativeInitializers[runtime.GOOS]; exists {
			return init(opts)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOS, runtime.GOOS)
	}
	if init, exists := backendInitializers[opts.Backend]; exists {
		return init(opts)
	}
	return nil, fmt.Errorf("%w: %q", contracts.ErrUnsupportedBackend, opts.Backend)
}
