package rtmidi

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Output sends messages to one rtmidi output port.
type Output struct {
	mu   sync.Mutex
	port drivers.Out
	send func(msg midi.Message) error
}

// ListOutputs returns every output port known to the driver.
func ListOutputs() []contracts.DeviceInfo {
	ports := midi.GetOutPorts()
	devices := make([]contracts.DeviceInfo, len(ports))
	for i, port := range ports {
		devices[i] = contracts.DeviceInfo{ID: i, Name: port.String(), EntityName: port.String()}
	}
	return devices
}

// OpenOutput opens an output port by index or by name fragment. An empty name
// picks the first port. With no ports at all it returns contracts.ErrNoTransport.
func OpenOutput(name string) (*Output, error) {
	ports := midi.GetOutPorts()
	if len(ports) == 0 {
		return nil, contracts.ErrNoTransport
	}

	var (
		out drivers.Out
		err error
	)
	switch idx, convErr := strconv.Atoi(name); {
	case name == "":
		out = ports[0]
	case convErr == nil:
		if idx < 0 || idx >= len(ports) {
			return nil, fmt.Errorf("%w: output %d", contracts.ErrInvalidMIDIDevice, idx)
		}
		out = ports[idx]
	default:
		out, err = midi.FindOutPort(name)
		if err != nil {
			return nil, fmt.Errorf("%w: output %q: %v", contracts.ErrInvalidMIDIDevice, name, err)
		}
	}

	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("open output %q: %w", out.String(), err)
	}
	return &Output{port: out, send: send}, nil
}

// Name returns the port name.
func (o *Output) Name() string { return o.port.String() }

func (o *Output) Send(msg []byte) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return contracts.ErrNoTransport
	}
	return o.send(midi.Message(msg))
}

// Close silences every channel and closes the port.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.send == nil {
		return nil
	}
	for ch := uint8(0); ch < 16; ch++ {
		_ = o.send(midi.ControlChange(ch, midi.AllNotesOff, midi.Off))
	}
	o.send = nil
	return o.port.Close()
}
