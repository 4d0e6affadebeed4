package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Errorf("Load(missing) = %+v want defaults", cfg)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beatcoach", FileName)
	cfg := Default()
	cfg.Input = Input{Backend: contracts.BackendSerial, Port: "/dev/ttyACM0", BaudRate: 115200}
	cfg.Practice.Tempo = 96
	cfg.Delivery.OSC = "127.0.0.1:57120"
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("Load = %+v want %+v", got, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(`{"practice": {"tempo": 72}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Practice.Tempo != 72 || cfg.Practice.ToleranceMs != 150 || cfg.Input.Backend != contracts.BackendRtMidi {
		t.Errorf("Load(partial) = %+v", cfg)
	}
	if cfg.Practice.Tolerance() != 150*time.Millisecond || cfg.Delivery.Backoff() != time.Second {
		t.Errorf("durations = %v / %v", cfg.Practice.Tolerance(), cfg.Delivery.Backoff())
	}
}

func TestLoadInvalid(t *testing.T) {
	cases := []struct {
		body string
		want error
	}{
		{`{"practice": {"tempo": 0}}`, contracts.ErrInvalidTempo},
		{`{"input": {"backend": "jack"}}`, contracts.ErrUnsupportedBackend},
		{`{"practice": {"tolerance_ms": 0}}`, ErrInvalidThreshold},
		{`{"practice": {"hard_error_ms": -5}}`, ErrInvalidThreshold},
	}
	for _, c := range cases {
		path := filepath.Join(t.TempDir(), FileName)
		if err := os.WriteFile(path, []byte(c.body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, c.want) {
			t.Errorf("Load(%s) err = %v want %v", c.body, err, c.want)
		}
	}
}
