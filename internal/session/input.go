package session

import (
	"github.com/leandrodaf/beatcoach/internal/decoder"
	"github.com/leandrodaf/beatcoach/internal/timing"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

func (s *Session) handleRaw(msg contracts.RawMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	ev, err := decoder.Decode(msg.Data)
	if err != nil {
		if len(msg.Data) > 0 && decoder.IsSystemCommon(msg.Data[0]) {
			s.logger.Debug("ignoring system common message",
				s.logger.Field().String("status", decoder.StatusName(msg.Data[0])))
			return
		}
		s.logger.Warn("dropping undecodable MIDI message",
			s.logger.Field().Binary("bytes", msg.Data),
			s.logger.Field().Error("error", err))
		return
	}

	switch ev.Kind {
	case contracts.KindNoteOn:
		s.noteOn(ev, msg)
	case contracts.KindNoteOff:
		s.emit(contracts.NoteOffReport{MIDI: ev.Note})
	case contracts.KindClock:
		if bpm, ok := s.tracker.OnPulse(msg.Timestamp); ok {
			s.logger.Info("tempo detected from MIDI clock", s.logger.Field().Int("bpm", bpm))
			s.emit(contracts.BPMReport{BPM: bpm})
		}
	case contracts.KindTransport, contracts.KindReset:
		s.logger.Debug("external transport message, restarting clock tracking",
			s.logger.Field().String("status", decoder.StatusName(msg.Data[0])))
		s.tracker.Reset()
	case contracts.KindActiveSensing:
	default:
		s.logger.Debug("ignoring MIDI message",
			s.logger.Field().String("status", decoder.StatusName(msg.Data[0])),
			s.logger.Field().Binary("bytes", msg.Data))
	}
}

func (s *Session) noteOn(ev contracts.Event, msg contracts.RawMessage) {
	ref := s.ref.Load()
	verdict := s.classifier.Classify(msg.Timestamp, ref, s.lesson.ExpectedBeat(s.step))
	if ref == nil {
		s.logger.Debug("note classified without timing",
			s.logger.Field().Uint8("note", ev.Note),
			s.logger.Field().Error("reason", contracts.ErrReferenceUnavailable))
	}

	s.log.Append(timing.Entry{
		Note:      ev.Note,
		Timestamp: msg.Timestamp,
		StepIndex: s.step,
		Verdict:   verdict,
	})
	s.emit(contracts.NoteOnReport{
		MIDI:          ev.Note,
		Velocity:      ev.Velocity,
		Timestamp:     msg.Timestamp,
		StepIndex:     s.step,
		TimingVerdict: verdict,
	})
}
