package scheduler

import (
	"reflect"
	"sort"
	"testing"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

type demoEvents struct {
	steps    []int
	clicks   int
	finished int
}

func newTestDemo(q *Queue, rec *recorder, ev *demoEvents) *Demo {
	return NewDemo(q, rec, DemoConfig{
		OnStep:     func(i int) { ev.steps = append(ev.steps, i) },
		OnClick:    func(int) { ev.clicks++ },
		OnFinished: func() { ev.finished++ },
	})
}

var demoSteps = []contracts.Step{
	{Index: 10, Notes: []uint8{60, 64}, Duration: 2},
	{Index: 11, Notes: []uint8{67}},
}

func TestDemoPlaysToTheEnd(t *testing.T) {
	q := NewQueue()
	rec := &recorder{}
	ev := &demoEvents{}
	d := newTestDemo(q, rec, ev)

	if err := d.Play(at(0), 60, demoSteps); err != nil {
		t.Fatal(err)
	}
	if phase, i := d.State(); phase != DemoPlaying || i != 0 {
		t.Errorf("State() = %v, %d want playing, 0", phase, i)
	}

	// Notes of a 2 beat step at 60 BPM are released at 1.8s.
	q.RunDue(at(1799))
	if rec.count("off 60") != 0 {
		t.Errorf("note released early: %v", rec.calls)
	}
	q.RunDue(at(1800))
	if rec.count("off 60") != 1 || rec.count("off 64") != 1 {
		t.Errorf("note not released at 90%%: %v", rec.calls)
	}

	q.RunDue(at(2000))
	if phase, i := d.State(); phase != DemoPlaying || i != 1 {
		t.Errorf("State() = %v, %d want playing, 1", phase, i)
	}

	q.RunDue(at(10000))
	if !reflect.DeepEqual(ev.steps, []int{10, 11}) {
		t.Errorf("steps = %v want [10 11]", ev.steps)
	}
	if ev.finished != 1 || ev.clicks != 3 {
		t.Errorf("finished = %d clicks = %d want 1 and 3", ev.finished, ev.clicks)
	}
	if rec.count("click-on") != 3 || rec.count("click-off") != 3 || rec.count("on 67/100") != 1 || rec.count("off 67") != 1 {
		t.Errorf("calls = %v", rec.calls)
	}
	if phase, _ := d.State(); phase != DemoFinished {
		t.Errorf("phase = %v want finished", phase)
	}
	if q.Len() != 0 {
		t.Errorf("%d tasks left", q.Len())
	}
}

func TestDemoStopMidStep(t *testing.T) {
	q := NewQueue()
	rec := &recorder{}
	ev := &demoEvents{}
	d := newTestDemo(q, rec, ev)

	d.Play(at(0), 60, demoSteps)
	q.RunDue(at(1200))
	if q.Len() == 0 {
		t.Fatal("expected pending note-off, click and step timers")
	}

	before := len(rec.calls)
	if !d.Stop() {
		t.Error("Stop() during playback returned false")
	}
	stopped := append([]string(nil), rec.calls[before:]...)
	sort.Strings(stopped)
	if want := []string{"off 60", "off 64"}; !reflect.DeepEqual(stopped, want) {
		t.Errorf("Stop() calls = %v want %v", stopped, want)
	}
	if q.Len() != 0 {
		t.Errorf("%d timers left after Stop", q.Len())
	}

	after := len(rec.calls)
	q.RunDue(at(60000))
	if len(rec.calls) != after {
		t.Errorf("calls after Stop: %v", rec.calls[after:])
	}
	if !reflect.DeepEqual(ev.steps, []int{10}) || ev.finished != 0 {
		t.Errorf("events after Stop: steps %v finished %d", ev.steps, ev.finished)
	}
	if phase, _ := d.State(); phase != DemoIdle {
		t.Errorf("phase = %v want idle", phase)
	}
	if d.Stop() {
		t.Error("second Stop() returned true")
	}
}

func TestDemoPlayRestarts(t *testing.T) {
	q := NewQueue()
	ev := &demoEvents{}
	d := newTestDemo(q, &recorder{}, ev)

	d.Play(at(0), 60, demoSteps)
	d.Play(at(500), 120, demoSteps[1:])
	q.RunDue(at(10000))
	if !reflect.DeepEqual(ev.steps, []int{10, 11}) || ev.finished != 1 {
		t.Errorf("steps %v finished %d want [10 11] and 1", ev.steps, ev.finished)
	}
}

func TestDemoFractionalDuration(t *testing.T) {
	q := NewQueue()
	ev := &demoEvents{}
	d := newTestDemo(q, &recorder{}, ev)
	d.Play(at(0), 60, []contracts.Step{{Index: 0, Duration: 1.5}, {Index: 1, Duration: 0.5}})
	q.RunDue(at(1499))
	if len(ev.steps) != 1 || ev.clicks != 2 {
		t.Errorf("at 1499ms: steps %v clicks %d want one step and 2 clicks", ev.steps, ev.clicks)
	}
	q.RunDue(at(2000))
	if len(ev.steps) != 2 || ev.finished != 1 || ev.clicks != 3 {
		t.Errorf("at 2000ms: steps %v clicks %d finished %d", ev.steps, ev.clicks, ev.finished)
	}
}
