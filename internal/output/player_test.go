package output

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

type fakeOut struct {
	sent   [][]byte
	fail   error
	closed bool
}

func (f *fakeOut) Send(msg []byte) error {
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, append([]byte(nil), msg...))
	return nil
}

func (f *fakeOut) Close() error {
	f.closed = true
	return nil
}

func TestPlayerClick(t *testing.T) {
	out := &fakeOut{}
	p := NewPlayer(Config{Output: out, Click: DefaultClick})
	p.ClickOn()
	p.ClickOff()
	p.BeepOn()
	p.BeepOff()
	p.NoteOn(60, 100)
	p.NoteOff(60)
	want := [][]byte{
		{0xCF, 6},
		{0x9F, 84, 100},
		{0x8F, 84, 0},
		{0xCF, 6},
		{0x9F, 96, 120},
		{0x8F, 96, 0},
		{0x90, 60, 100},
		{0x80, 60, 0},
	}
	if !reflect.DeepEqual(out.sent, want) {
		t.Errorf("sent % X want % X", out.sent, want)
	}
}

func TestPlayerNoTransport(t *testing.T) {
	p := NewPlayer(Config{Click: DefaultClick})
	if err := p.Send(0x90, 60, 100); !errors.Is(err, contracts.ErrNoTransport) {
		t.Errorf("Send without output err = %v want ErrNoTransport", err)
	}
	p.ClickOn()
	if p.Available() {
		t.Error("Available() = true without output")
	}
}

func TestPlayerReopenRateLimited(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	attempts := 0
	out := &fakeOut{}
	p := NewPlayer(Config{
		Reopen: func() (contracts.OutputMIDI, error) {
			attempts++
			if attempts < 2 {
				return nil, errors.New("port busy")
			}
			return out, nil
		},
		ReopenInterval: 5 * time.Second,
		Now:            func() time.Time { return now },
	})

	if err := p.Send(0xF8); !errors.Is(err, contracts.ErrNoTransport) {
		t.Fatalf("first Send err = %v", err)
	}
	now = now.Add(time.Second)
	p.Send(0xF8)
	if attempts != 1 {
		t.Errorf("attempts within interval = %d want 1", attempts)
	}
	now = now.Add(5 * time.Second)
	if err := p.Send(0xF8); err != nil {
		t.Fatalf("Send after reopen: %v", err)
	}
	if attempts != 2 || !reflect.DeepEqual(out.sent, [][]byte{{0xF8}}) {
		t.Errorf("attempts = %d sent = % X", attempts, out.sent)
	}
}

func TestPlayerDropsFailingOutput(t *testing.T) {
	out := &fakeOut{fail: errors.New("device unplugged")}
	p := NewPlayer(Config{Output: out})
	if err := p.Send(0x90, 60, 1); !errors.Is(err, contracts.ErrNoTransport) {
		t.Errorf("Send err = %v want ErrNoTransport", err)
	}
	if !out.closed || p.Available() {
		t.Error("failing output was not closed and dropped")
	}
}
