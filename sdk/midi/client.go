package midi

import (
	"fmt"
	"strings"

	"github.com/leandrodaf/beatcoach/internal/midi/rtmidi"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// NewMIDIClient creates a new MIDI input client with the specified options.
// It applies default options and initializes the client for the selected backend.
//
// opts ...contracts.Option: A variadic list of option functions to customize the client configuration.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: An error, if any occurred during the creation of the client.
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(&options)
	if err != nil {
		return nil, err
	}

	return client, nil
}

// NewMIDIOutput opens an output port through the rtmidi driver. An empty name
// picks the first port, a number picks by index, anything else matches by name.
func NewMIDIOutput(name string) (contracts.OutputMIDI, error) {
	out, err := rtmidi.OpenOutput(name)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListOutputs returns the output ports visible to the rtmidi driver.
func ListOutputs() []contracts.DeviceInfo {
	return rtmidi.ListOutputs()
}

// FindDevice returns the ID of the first input device whose name contains
// name, ignoring case.
func FindDevice(client contracts.ClientMIDI, name string) (int, error) {
	devices, err := client.ListDevices()
	if err != nil {
		return 0, err
	}
	want := strings.ToLower(name)
	for _, d := range devices {
		if strings.Contains(strings.ToLower(d.Name), want) {
			return d.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: no input matches %q", contracts.ErrInvalidMIDIDevice, name)
}

// Shutdown releases the shared rtmidi driver. Call it once, after every
// client and output has been closed.
func Shutdown() {
	rtmidi.CloseDriver()
}

type namedOpener interface {
	Open(name string) error
}

// SelectByName opens the input named name. Backends that address ports by
// path, like serial, open it directly; the others match by substring.
func SelectByName(client contracts.ClientMIDI, name string) error {
	if opener, ok := client.(namedOpener); ok {
		return opener.Open(name)
	}
	id, err := FindDevice(client, name)
	if err != nil {
		return err
	}
	return client.SelectDevice(id)
}
