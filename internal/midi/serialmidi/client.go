// Package serialmidi reads a DIN MIDI byte stream from a serial port, such as a
// USB serial bridge or a microcontroller forwarding a MIDI IN jack.
package serialmidi

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/beatcoach/internal/midi/capture"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"go.bug.st/serial"
)

// DefaultBaudRate is the DIN MIDI wire speed.
const DefaultBaudRate = 31250

// ClientMid captures MIDI from one serial port.
type ClientMid struct {
	logger   contracts.Logger
	sink     *capture.Sink
	baudRate int

	mu       sync.Mutex
	port     serial.Port
	reader   *portReader
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewMIDIClient creates a serial input client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	baud := DefaultBaudRate
	if options.Serial != nil && options.Serial.BaudRate > 0 {
		baud = options.Serial.BaudRate
	}
	options.Logger.Info("serial MIDI client created", options.Logger.Field().Int("baud", baud))
	return &ClientMid{
		logger:   options.Logger,
		sink:     capture.NewSink(options.Logger, options.MIDIEventFilter),
		baudRate: baud,
	}, nil
}

// ListDevices lists the serial ports of the system.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	names, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}
	if len(names) == 0 {
		m.logger.Warn(contracts.ErrNoMIDIDevices.Error())
		return nil, contracts.ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(names))
	for i, name := range names {
		devices[i] = contracts.DeviceInfo{ID: i, Name: name, EntityName: name}
	}
	return devices, nil
}

// SelectDevice opens the serial port at deviceID and starts reading from it.
func (m *ClientMid) SelectDevice(deviceID int) error {
	names, err := serial.GetPortsList()
	if err != nil {
		return fmt.Errorf("error listing serial ports: %w", err)
	}
	if deviceID < 0 || deviceID >= len(names) {
		m.logger.Error(contracts.ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return fmt.Errorf("%w: %d", contracts.ErrInvalidMIDIDevice, deviceID)
	}
	return m.Open(names[deviceID])
}

// Open opens the named serial port, closing any previous one.
func (m *ClientMid) Open(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.closePort(); err != nil {
		m.logger.Warn("closing previous serial port failed", m.logger.Field().Error("error", err))
	}
	port, err := serial.Open(name, &serial.Mode{BaudRate: m.baudRate})
	if err != nil {
		m.logger.Error("serial: failed to open port", m.logger.Field().String("device", name), m.logger.Field().Error("error", err))
		return fmt.Errorf("open serial port %s: %w", name, err)
	}
	rd := &portReader{name: name}
	m.port, m.reader = port, rd
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.readLoop(port, rd)
	}()
	m.logger.Info("serial: port opened", m.logger.Field().String("device", name), m.logger.Field().Int("baud", m.baudRate))
	return nil
}

// StartCapture delivers framed messages to eventChannel.
func (m *ClientMid) StartCapture(eventChannel chan contracts.RawMessage) {
	if eventChannel == nil {
		m.logger.Error("StartCapture called with nil eventChannel")
		return
	}
	m.sink.Attach(eventChannel)
	m.logger.Info("Starting MIDI event capture")
}

// Stop closes the port and waits for the reader to exit.
func (m *ClientMid) Stop() error {
	var err error
	m.stopOnce.Do(func() {
		m.sink.Detach()
		m.mu.Lock()
		err = m.closePort()
		m.mu.Unlock()
		m.wg.Wait()
		m.logger.Info("MIDI capture stopped")
	})
	return err
}

func (m *ClientMid) closePort() error {
	if m.port == nil {
		return nil
	}
	m.reader.stopping.Store(true)
	err := m.port.Close()
	m.port, m.reader = nil, nil
	return err
}

// portReader is the state of one opened port, owned by its read loop.
type portReader struct {
	name     string
	stopping atomic.Bool
}

// readLoop feeds everything read from r to the sink until r fails. It returns
// the read error it reported, or nil when the port was closed on purpose or
// reached EOF.
func (m *ClientMid) readLoop(r io.Reader, rd *portReader) error {
	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			m.sink.Feed(buf[:n], time.Now())
		}
		if err != nil {
			if rd.stopping.Load() || errors.Is(err, io.EOF) {
				return nil
			}
			m.logger.Error("serial: read failed", m.logger.Field().String("device", rd.name), m.logger.Field().Error("error", err))
			return err
		}
	}
}
