package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"go.uber.org/zap/zapcore"
)

func TestZapLevel(t *testing.T) {
	cases := []struct {
		in   contracts.LogLevel
		want zapcore.Level
	}{
		{contracts.InfoLevel, zapcore.InfoLevel},
		{contracts.DebugLevel, zapcore.DebugLevel},
		{contracts.WarnLevel, zapcore.WarnLevel},
		{contracts.ErrorLevel, zapcore.ErrorLevel},
		{contracts.FatalLevel, zapcore.FatalLevel},
	}
	for _, c := range cases {
		if got := zapLevel(c.in); got != c.want {
			t.Errorf("zapLevel(%v) = %v want %v", c.in, got, c.want)
		}
	}
}

func TestFileDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.log")
	log := NewZapLogger()
	log.SetDestination(contracts.FileLog, path)
	log.SetLevel(contracts.DebugLevel)

	log.Debug("decoded", log.Field().Binary("bytes", []byte{0x90, 0x3C, 0x64}), log.Field().Int("note", 60))
	log.Info("metronome started", log.Field().Float64("bpm", 120))
	log.SetDestination(contracts.ConsoleLog)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	got := string(data)
	for _, want := range []string{"decoded", "90 3C 64", "\"note\":60", "metronome started"} {
		if !strings.Contains(got, want) {
			t.Errorf("log file missing %q:\n%s", want, got)
		}
	}
}

func TestLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coach.log")
	log := NewZapLogger()
	log.SetDestination(contracts.FileLog, path)
	log.SetLevel(contracts.WarnLevel)

	log.Info("hidden")
	log.Warn("shown")
	log.SetDestination(contracts.ConsoleLog)

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Errorf("info message written at warn level:\n%s", data)
	}
	if !strings.Contains(string(data), "shown") {
		t.Errorf("warn message missing:\n%s", data)
	}
}
