package midi

import (
	"errors"
	"testing"

	"github.com/leandrodaf/beatcoach/internal/logger"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

func TestApplyDefaultOptions(t *testing.T) {
	opts, err := applyDefaultOptions(contracts.WithLogger(logger.NewNopLogger()))
	if err != nil {
		t.Fatal(err)
	}
	if opts.Backend != contracts.BackendNative {
		t.Errorf("Backend = %q want %q", opts.Backend, contracts.BackendNative)
	}
	if opts.CoreMIDIConfig == nil || opts.CoreMIDIConfig.ClientName != "beatcoach" {
		t.Errorf("CoreMIDIConfig = %+v", opts.CoreMIDIConfig)
	}
	if opts.Serial != nil {
		t.Errorf("Serial = %+v want nil for native backend", opts.Serial)
	}
}

func TestApplyDefaultOptionsSerial(t *testing.T) {
	opts, err := applyDefaultOptions(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithSerialConfig(contracts.SerialConfig{Port: "/dev/ttyUSB0"}),
	)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Backend != contracts.BackendSerial || opts.Serial.BaudRate != 31250 || opts.Serial.Port != "/dev/ttyUSB0" {
		t.Errorf("serial options = %+v / %+v", opts.Backend, opts.Serial)
	}
}

func TestNewClientUnknownBackend(t *testing.T) {
	opts, _ := applyDefaultOptions(
		contracts.WithLogger(logger.NewNopLogger()),
		contracts.WithBackend("jack"),
	)
	_, err := NewClient(&opts)
	if !errors.Is(err, contracts.ErrUnsupportedBackend) {
		t.Errorf("NewClient(jack) err = %v want ErrUnsupportedBackend", err)
	}
}

type stubClient struct {
	devices  []contracts.DeviceInfo
	selected int
}

func (s *stubClient) Stop() error { return nil }
func (s *stubClient) ListDevices() ([]contracts.DeviceInfo, error) { return s.devices, nil }
func (s *stubClient) SelectDevice(id int) error { s.selected = id; return nil }
func (s *stubClient) StartCapture(eventChannel chan contracts.RawMessage) {}

func TestSelectByName(t *testing.T) {
	c := &stubClient{selected: -1, devices: []contracts.DeviceInfo{
		{ID: 0, Name: "IAC Driver Bus 1"},
		{ID: 1, Name: "Digital Piano MIDI 1"},
	}}
	if err := SelectByName(c, "piano"); err != nil {
		t.Fatal(err)
	}
	if c.selected != 1 {
		t.Errorf("selected = %d want 1", c.selected)
	}
	if err := SelectByName(c, "drums"); !errors.Is(err, contracts.ErrInvalidMIDIDevice) {
		t.Errorf("SelectByName(drums) err = %v want ErrInvalidMIDIDevice", err)
	}
}
