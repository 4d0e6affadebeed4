package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/leandrodaf/beatcoach/internal/logger"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

type fakeSession struct {
	input     chan contracts.RawMessage
	reports   chan contracts.Report
	tempo     float64
	metronome bool
	step      int
	played    []uint8
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		input:   make(chan contracts.RawMessage, 8),
		reports: make(chan contracts.Report, 8),
	}
}

func (f *fakeSession) Run(ctx context.Context) error { return nil }
func (f *fakeSession) Input() chan contracts.RawMessage { return f.input }
func (f *fakeSession) Subscribe() <-chan contracts.Report { return f.reports }
func (f *fakeSession) StopMetronome() error { f.metronome = false; return nil }
func (f *fakeSession) UpdateTempo(bpm float64) error { f.tempo = bpm; return nil }
func (f *fakeSession) AdvanceStep(index int) error { f.step = index; return nil }
func (f *fakeSession) StopDemo() error { return nil }
func (f *fakeSession) CountdownBeep(count int) error { return nil }
func (f *fakeSession) TimingLog() []contracts.TimingEntry { return nil }
func (f *fakeSession) LoadLesson(steps []contracts.Step, tempo float64) error { return nil }
func (f *fakeSession) PlayDemo(tempo float64, steps []contracts.Step) error { return nil }

func (f *fakeSession) StartMetronome(bpm float64) error {
	if bpm <= 0 {
		return contracts.ErrInvalidTempo
	}
	f.metronome, f.tempo = true, bpm
	return nil
}

func (f *fakeSession) PlayNote(note uint8, hold time.Duration) error {
	f.played = append(f.played, note)
	return nil
}

func (f *fakeSession) BeatPosition() (contracts.BeatPosition, bool) {
	return contracts.BeatPosition{Beat: 2.5, BeatIndex: 2, BeatFraction: 0.5}, f.metronome
}

func testModel(f *fakeSession, steps []contracts.Step) model {
	return newModel(f, logger.NewNopLogger(), 100, steps, "timing.png")
}

func TestKeyPlaysNote(t *testing.T) {
	f := newFakeSession()
	m := testModel(f, nil)
	next, cmd := m.handleKey("d")
	if cmd == nil {
		t.Error("no note-off scheduled")
	}
	select {
	case msg := <-f.input:
		if msg.Data[0] != 0x90 || msg.Data[1] != 64 {
			t.Errorf("input = % X want 90 40 ..", msg.Data)
		}
	default:
		t.Fatal("no input message")
	}
	if len(f.played) != 1 || f.played[0] != 64 {
		t.Errorf("played = %v want [64]", f.played)
	}

	next, _ = next.Update(noteOffMsg(64))
	if msg := <-f.input; msg.Data[0] != 0x80 || msg.Data[1] != 64 {
		t.Errorf("input = % X want 80 40 00", msg.Data)
	}
	_ = next
}

func TestMetronomeToggleAndTempo(t *testing.T) {
	f := newFakeSession()
	m := testModel(f, nil)

	next, _ := m.handleKey(" ")
	m = next.(model)
	if !m.metronome || f.tempo != 100 {
		t.Fatalf("metronome = %v tempo = %v want running at 100", m.metronome, f.tempo)
	}
	next, _ = m.handleKey("up")
	m = next.(model)
	if m.tempo != 105 || f.tempo != 105 {
		t.Errorf("tempo = %v / %v want 105", m.tempo, f.tempo)
	}
	m.tempo = maxTempo
	next, _ = m.handleKey("up")
	m = next.(model)
	if m.tempo != maxTempo {
		t.Errorf("tempo = %v want clamp to %v", m.tempo, maxTempo)
	}
	next, _ = m.handleKey(" ")
	m = next.(model)
	if m.metronome || f.metronome {
		t.Error("metronome still running after second toggle")
	}
}

func TestLessonAdvancesWhenStepComplete(t *testing.T) {
	f := newFakeSession()
	steps := []contracts.Step{{Notes: []uint8{60, 64}}, {Notes: []uint8{67}}}
	m := testModel(f, steps)
	next, _ := m.handleKey("M")
	m = next.(model)

	on := func(n uint8) {
		next, _ := m.Update(reportMsg{contracts.NoteOnReport{MIDI: n, TimingVerdict: contracts.TimingVerdict{Status: contracts.OnTime, Severity: contracts.SeverityOk}}})
		m = next.(model)
	}
	on(60)
	if m.step != 0 {
		t.Fatalf("step = %d want 0 after one of two notes", m.step)
	}
	on(62)
	on(64)
	if m.step != 1 || f.step != 1 {
		t.Errorf("step = %d / %d want 1", m.step, f.step)
	}
	if m.counts[contracts.SeverityOk] != 3 {
		t.Errorf("ok count = %d want 3", m.counts[contracts.SeverityOk])
	}
	on(67)
	if !strings.Contains(m.View(), "lesson complete") {
		t.Error("view does not show the completed lesson")
	}
}

func TestReportsUpdateState(t *testing.T) {
	m := testModel(newFakeSession(), nil)
	for _, r := range []contracts.Report{
		contracts.BPMReport{BPM: 122},
		contracts.DemoStepReport{StepIndex: 3},
		contracts.BeatReport{BeatIndex: 7},
	} {
		next, _ := m.Update(reportMsg{r})
		m = next.(model)
	}
	if m.detected != 122 || m.demoStep != 3 || m.beat != 7 {
		t.Errorf("state = bpm %d step %d beat %d", m.detected, m.demoStep, m.beat)
	}
	next, cmd := m.Update(sessionClosedMsg{})
	if cmd == nil || !next.(model).quitting {
		t.Error("closed session did not quit")
	}
}
