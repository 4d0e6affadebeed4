package contracts

import "time"

// MIDIEventFilter allows users to specify which channel commands to capture.
// System messages (clock, transport, reset) are never filtered.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of channel commands (high nibble) to keep.
}

// Allows reports whether a message with the given status byte passes the filter.
func (f *MIDIEventFilter) Allows(status byte) bool {
	if f == nil || len(f.Commands) == 0 || status >= 0xF0 {
		return true
	}
	command := MIDICommand(status & 0xF0)
	for _, allowed := range f.Commands {
		if command == allowed {
			return true
		}
	}
	return false
}

// Backend names the input/output implementation used by the sdk/midi factory.
type Backend string

const (
	// BackendNative uses CoreMIDI on macOS and winmm on Windows.
	BackendNative Backend = "native"
	// BackendRtMidi uses gomidi's rtmidi driver on any platform.
	BackendRtMidi Backend = "rtmidi"
	// BackendSerial reads a raw MIDI byte stream from a serial device.
	BackendSerial Backend = "serial"
)

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// SerialConfig holds configuration for the serial backend.
type SerialConfig struct {
	Port     string // Device path, e.g. /dev/ttyUSB0.
	BaudRate int    // 31250 for DIN MIDI, 115200 for common USB bridges.
}

// ClientOptions defines the configuration options for MIDI transports.
type ClientOptions struct {
	Logger          Logger           // Logger for logging events and errors.
	LogLevel        LogLevel         // Level of logging to use.
	LogFilePath     string           // File path for logging if file logging is enabled.
	MIDIEventFilter *MIDIEventFilter // Optional filter for MIDI events to capture.
	CoreMIDIConfig  *CoreMIDIConfig  // Configuration specific to CoreMIDI.
	Backend         Backend          // Which implementation to build.
	Serial          *SerialConfig    // Configuration specific to the serial backend.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger for the MIDI client.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the MIDI client.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile sends log output to the given file instead of the console.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithMIDIEventFilter sets the MIDI event filter for the MIDI client.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *ClientOptions) {
		opts.MIDIEventFilter = &filter
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the MIDI client.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithBackend selects the transport implementation.
func WithBackend(b Backend) Option {
	return func(opts *ClientOptions) {
		opts.Backend = b
	}
}

// WithSerialConfig configures the serial backend and selects it.
func WithSerialConfig(config SerialConfig) Option {
	return func(opts *ClientOptions) {
		opts.Serial = &config
		opts.Backend = BackendSerial
	}
}

// SessionOptions configures a practice session.
type SessionOptions struct {
	Logger             Logger
	Tolerance          time.Duration // Half-width of a beat window.
	HardErrorThreshold time.Duration // Misses beyond a window by more than this are errors.
	MaxClockGap        time.Duration // A longer silence between clock pulses re-baselines BPM detection.
	ReportBuffer       int           // Buffer size of each subscriber channel.
	InputBuffer        int           // Buffer size of the raw input channel.
	Output             OutputMIDI    // Destination for clicks and demo notes; nil disables sound.
	ReopenOutput       func() (OutputMIDI, error)
	ReopenInterval     time.Duration // Minimum time between reopen attempts.
	Click              ClickConfig
	DemoArticulation   float64 // Fraction of a demo step during which its notes sound.
	Now                func() time.Time
}

// ClickConfig describes the metronome click and countdown beep sounds.
type ClickConfig struct {
	Channel         uint8
	Program         uint8
	Note            uint8
	Velocity        uint8
	Length          time.Duration
	BeepNote        uint8
	BeepVelocity    uint8
	BeepLength      time.Duration
	NoteVelocity    uint8         // Velocity for PlayNote and demo notes.
	DefaultNoteHold time.Duration // PlayNote duration when none is given.
}

// SessionOption is a function that modifies SessionOptions.
type SessionOption func(*SessionOptions)

// WithSessionLogger sets the session logger.
func WithSessionLogger(l Logger) SessionOption {
	return func(opts *SessionOptions) {
		opts.Logger = l
	}
}

// WithTolerance sets the beat window half-width.
func WithTolerance(d time.Duration) SessionOption {
	return func(opts *SessionOptions) {
		opts.Tolerance = d
	}
}

// WithHardErrorThreshold sets the early/late distance past which a miss is an error.
func WithHardErrorThreshold(d time.Duration) SessionOption {
	return func(opts *SessionOptions) {
		opts.HardErrorThreshold = d
	}
}

// WithMaxClockGap sets the clock pulse silence that restarts BPM detection.
func WithMaxClockGap(d time.Duration) SessionOption {
	return func(opts *SessionOptions) {
		opts.MaxClockGap = d
	}
}

// WithReportBuffer sets the subscriber channel buffer size.
func WithReportBuffer(n int) SessionOption {
	return func(opts *SessionOptions) {
		opts.ReportBuffer = n
	}
}

// WithOutput sets the MIDI output used for clicks and demo playback.
func WithOutput(out OutputMIDI) SessionOption {
	return func(opts *SessionOptions) {
		opts.Output = out
	}
}

// WithOutputReopen sets a function used to reopen the output after ErrNoTransport.
func WithOutputReopen(reopen func() (OutputMIDI, error), interval time.Duration) SessionOption {
	return func(opts *SessionOptions) {
		opts.ReopenOutput = reopen
		opts.ReopenInterval = interval
	}
}

// WithClick overrides the click and beep sounds.
func WithClick(c ClickConfig) SessionOption {
	return func(opts *SessionOptions) {
		opts.Click = c
	}
}

// WithClock overrides the session time source.
func WithClock(now func() time.Time) SessionOption {
	return func(opts *SessionOptions) {
		opts.Now = now
	}
}
