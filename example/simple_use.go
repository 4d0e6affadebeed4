package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/leandrodaf/beatcoach/internal/logger"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"github.com/leandrodaf/beatcoach/sdk/midi"
	"github.com/leandrodaf/beatcoach/sdk/practice"
)

func main() {
	log := logger.NewStandardLogger()

	client, err := midi.NewMIDIClient(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithBackend(contracts.BackendRtMidi),
		contracts.WithMIDIEventFilter(contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI client", log.Field().Error("error", err))
		return
	}
	defer midi.Shutdown()

	devices, err := client.ListDevices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:", devices)

	if err = client.SelectDevice(0); err != nil {
		log.Error("Failed to select MIDI device", log.Field().Error("error", err))
		return
	}
	defer client.Stop()

	sess, err := practice.NewSession(contracts.WithSessionLogger(log))
	if err != nil {
		log.Error("Failed to create practice session", log.Field().Error("error", err))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reports := sess.Subscribe()
	go func() {
		for r := range reports {
			if note, ok := r.(contracts.NoteOnReport); ok {
				log.Info("Note",
					log.Field().Uint8("midi", note.MIDI),
					log.Field().String("status", string(note.Status)),
					log.Field().Float64("deviation_ms", note.DeviationMs),
				)
			}
		}
	}()

	client.StartCapture(sess.Input())
	go func() {
		if err := sess.StartMetronome(90); err != nil {
			log.Error("Failed to start metronome", log.Field().Error("error", err))
		}
	}()

	fmt.Println("Play along at 90 bpm... Press Ctrl+C to exit.")
	if err := sess.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("Session stopped", log.Field().Error("error", err))
	}
}
