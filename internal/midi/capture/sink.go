// Package capture is the delivery path shared by every input transport: it
// frames raw bytes into messages, applies the event filter and hands messages
// to the capture channel without ever blocking the driver callback.
package capture

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/beatcoach/internal/decoder"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// Sink forwards messages from one input stream to a capture channel.
type Sink struct {
	logger       contracts.Logger
	filter       *contracts.MIDIEventFilter
	eventChannel atomic.Value // chan contracts.RawMessage; a nil chan when detached.

	mu     sync.Mutex // Guards framer; drivers may call back from several threads.
	framer decoder.Framer
}

func NewSink(logger contracts.Logger, filter *contracts.MIDIEventFilter) *Sink {
	s := &Sink{logger: logger, filter: filter}
	s.eventChannel.Store((chan contracts.RawMessage)(nil))
	return s
}

// Attach starts delivering to ch.
func (s *Sink) Attach(ch chan contracts.RawMessage) {
	s.eventChannel.Store(ch)
}

// Detach stops delivery and forgets any partial message.
func (s *Sink) Detach() {
	s.eventChannel.Store((chan contracts.RawMessage)(nil))
	s.mu.Lock()
	s.framer.Reset()
	s.mu.Unlock()
}

// Attached reports whether a capture channel is set.
func (s *Sink) Attached() bool {
	ch, _ := s.eventChannel.Load().(chan contracts.RawMessage)
	return ch != nil
}

// Feed frames a chunk of a byte stream and delivers every complete message.
func (s *Sink) Feed(stream []byte, ts time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.framer.Feed(stream, func(msg []byte) {
		s.Deliver(msg, ts)
	})
}

// Deliver hands one complete message to the capture channel, dropping it with a
// warning when the channel is full.
func (s *Sink) Deliver(msg []byte, ts time.Time) {
	if len(msg) == 0 {
		return
	}
	ch, _ := s.eventChannel.Load().(chan contracts.RawMessage)
	if ch == nil {
		return
	}
	if !s.filter.Allows(msg[0]) {
		s.logger.Debug("MIDI message filtered out", s.logger.Field().String("status", decoder.StatusName(msg[0])))
		return
	}
	select {
	case ch <- contracts.RawMessage{Data: msg, Timestamp: ts}:
	default:
		s.logger.Warn("Event buffer full; dropping MIDI event", s.logger.Field().Binary("bytes", msg))
	}
}

// Dropped returns how many stray bytes or partial messages the framer discarded.
func (s *Sink) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.framer.Dropped()
}
