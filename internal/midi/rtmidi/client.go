// Package rtmidi implements the portable input and output backends on top of
// gomidi's rtmidi driver.
package rtmidi

import (
	"fmt"
	"sync"
	"time"

	"github.com/leandrodaf/beatcoach/internal/midi/capture"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register the rtmidi driver.
)

// ClientMid reads from one rtmidi input port.
type ClientMid struct {
	logger   contracts.Logger
	sink     *capture.Sink
	mu       sync.Mutex
	inPort   drivers.In
	stopFn   func()
	stopOnce sync.Once
}

// NewMIDIClient creates an rtmidi input client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Info("rtmidi MIDI client created")
	return &ClientMid{
		logger: options.Logger,
		sink:   capture.NewSink(options.Logger, options.MIDIEventFilter),
	}, nil
}

// ListDevices returns every input port known to the driver.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	ports := midi.GetInPorts()
	if len(ports) == 0 {
		m.logger.Warn(contracts.ErrNoMIDIDevices.Error())
		return nil, contracts.ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(ports))
	for i, port := range ports {
		devices[i] = contracts.DeviceInfo{ID: i, Name: port.String(), EntityName: port.String()}
	}
	return devices, nil
}

// SelectDevice opens the input port at deviceID and starts listening. Messages
// flow once StartCapture provides a channel.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ports := midi.GetInPorts()
	if deviceID < 0 || deviceID >= len(ports) {
		m.logger.Error(contracts.ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: %d", contracts.ErrInvalidMIDIDevice, deviceID)
	}
	m.closePort()

	in := ports[deviceID]
	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", in.String(), err)
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		m.sink.Deliver(append([]byte(nil), msg...), time.Now())
	}, midi.UseSysEx(), midi.HandleError(func(listenErr error) {
		m.logger.Warn("MIDI listener error",
			m.logger.Field().String("device", in.String()),
			m.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		_ = in.Close()
		return fmt.Errorf("listen %q: %w", in.String(), err)
	}

	m.inPort, m.stopFn = in, stop
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", in.String()))
	return nil
}

// StartCapture delivers messages from the selected port to eventChannel.
func (m *ClientMid) StartCapture(eventChannel chan contracts.RawMessage) {
	if eventChannel == nil {
		m.logger.Error("StartCapture called with nil eventChannel")
		return
	}
	if m.sink.Attached() {
		m.logger.Warn("Capture already started; replacing event channel")
	}
	m.sink.Attach(eventChannel)
	m.logger.Info("Starting MIDI event capture")
}

// Stop stops listening and closes the port. Only the first call has an effect.
func (m *ClientMid) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.sink.Detach()
		err = m.closePort()
		m.logger.Info("MIDI capture stopped")
	})
	return err
}

func (m *ClientMid) closePort() error {
	if m.stopFn != nil {
		m.stopFn()
		m.stopFn = nil
	}
	if m.inPort == nil {
		return nil
	}
	err := m.inPort.Close()
	m.inPort = nil
	return err
}

// CloseDriver releases the rtmidi driver shared by every port.
func CloseDriver() {
	midi.CloseDriver()
}
