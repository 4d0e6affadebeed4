// Package config loads and saves the command line settings file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// FileName is the settings file name inside the config directory.
const FileName = "config.json"

// ErrInvalidThreshold is returned for a tolerance or hard error threshold that is not positive.
var ErrInvalidThreshold = errors.New("invalid timing threshold")

// Config is the on-disk configuration of the beatcoach command.
type Config struct {
	Input    Input    `json:"input"`
	Output   Output   `json:"output"`
	Practice Practice `json:"practice"`
	Delivery Delivery `json:"delivery"`
	Log      Log      `json:"log"`
}

// Input selects the capture backend and port.
type Input struct {
	Backend  contracts.Backend `json:"backend"`
	Port     string            `json:"port"` // Name substring, serial path, or empty for the first port.
	BaudRate int               `json:"baud_rate,omitempty"`
}

// Output selects the port used for clicks and demo playback.
type Output struct {
	Port     string `json:"port"`
	Disabled bool   `json:"disabled"`
}

// Practice holds the timing tunables.
type Practice struct {
	Tempo       float64 `json:"tempo"`
	ToleranceMs int     `json:"tolerance_ms"`
	HardErrorMs int     `json:"hard_error_ms"`
}

// Delivery names the scoring service endpoints. Both are optional.
type Delivery struct {
	OSC       string `json:"osc,omitempty"`  // host:port
	HTTP      string `json:"http,omitempty"` // URL
	Retries   int    `json:"retries"`
	BackoffMs int    `json:"backoff_ms"`
}

// Log configures the logger.
type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Input:    Input{Backend: contracts.BackendRtMidi},
		Practice: Practice{Tempo: 120, ToleranceMs: 150, HardErrorMs: 300},
		Delivery: Delivery{Retries: 3, BackoffMs: 1000},
		Log:      Log{Level: "info", File: filepath.Join(os.TempDir(), "beatcoach.log")},
	}
}

// Tolerance returns the tolerance as a duration.
func (p Practice) Tolerance() time.Duration {
	return time.Duration(p.ToleranceMs) * time.Millisecond
}

// HardError returns the hard error threshold as a duration.
func (p Practice) HardError() time.Duration {
	return time.Duration(p.HardErrorMs) * time.Millisecond
}

// Backoff returns the delivery backoff as a duration.
func (d Delivery) Backoff() time.Duration {
	return time.Duration(d.BackoffMs) * time.Millisecond
}

// Path returns the default config file location, ~/.config/beatcoach/config.json
// on Linux and the platform equivalent elsewhere.
func Path() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "beatcoach", FileName), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate rejects values the session would refuse.
func (c Config) Validate() error {
	if c.Practice.Tempo <= 0 {
		return fmt.Errorf("%w: tempo %v", contracts.ErrInvalidTempo, c.Practice.Tempo)
	}
	// Session options read zero as unset.
	if c.Practice.ToleranceMs <= 0 || c.Practice.HardErrorMs <= 0 {
		return fmt.Errorf("%w: tolerance %d ms, hard error %d ms must be positive",
			ErrInvalidThreshold, c.Practice.ToleranceMs, c.Practice.HardErrorMs)
	}
	switch c.Input.Backend {
	case contracts.BackendNative, contracts.BackendRtMidi, contracts.BackendSerial:
	default:
		return fmt.Errorf("%w: %q", contracts.ErrUnsupportedBackend, c.Input.Backend)
	}
	return nil
}
