// Command beatcoach is a terminal practice companion: it captures a MIDI
// keyboard, keeps a metronome and grades every note against the beat.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leandrodaf/beatcoach/internal/config"
	"github.com/leandrodaf/beatcoach/internal/delivery"
	"github.com/leandrodaf/beatcoach/internal/lesson"
	"github.com/leandrodaf/beatcoach/internal/logger"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
	"github.com/leandrodaf/beatcoach/sdk/midi"
	"github.com/leandrodaf/beatcoach/sdk/practice"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaultPath, err := config.Path()
	if err != nil {
		defaultPath = config.FileName
	}

	var (
		configPath = flag.String("config", defaultPath, "Config file.")
		lessonPath = flag.String("lesson", "", "Standard MIDI File to practice.")
		tempo      = flag.Float64("tempo", 0, "Tempo in bpm; overrides the config and the lesson file.")
		backend    = flag.String("backend", "", "Input backend: native, rtmidi or serial.")
		inPort     = flag.String("in", "", "Input port name, or serial device path.")
		outPort    = flag.String("out", "", "Output port name or index.")
		chartPath  = flag.String("chart", "timing.png", "Where C saves the timing chart.")
		list       = flag.Bool("list", false, "List MIDI ports and exit.")
		save       = flag.Bool("save", false, "Write the effective settings to the config file and exit.")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *backend != "" {
		cfg.Input.Backend = contracts.Backend(*backend)
	}
	if *inPort != "" {
		cfg.Input.Port = *inPort
	}
	if *outPort != "" {
		cfg.Output.Port = *outPort
	}
	if *tempo > 0 {
		cfg.Practice.Tempo = *tempo
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if *save {
		return config.Save(*configPath, cfg)
	}

	log := logger.NewZapLogger()
	if cfg.Log.File != "" {
		log.SetDestination(contracts.FileLog, cfg.Log.File)
	}
	log.SetLevel(contracts.ParseLogLevel(cfg.Log.Level))
	defer midi.Shutdown()

	client, err := newInput(cfg, log)
	if err != nil {
		return err
	}
	defer client.Stop()

	if *list {
		return listPorts(client)
	}

	var steps []contracts.Step
	practiceTempo := cfg.Practice.Tempo
	if *lessonPath != "" {
		var fileTempo float64
		steps, fileTempo, err = lesson.LoadSMF(*lessonPath)
		if err != nil {
			return err
		}
		if *tempo <= 0 {
			practiceTempo = fileTempo
		}
		log.Info("lesson loaded", log.Field().String("path", *lessonPath), log.Field().Int("steps", len(steps)))
	}

	opts := []contracts.SessionOption{
		contracts.WithSessionLogger(log),
		contracts.WithTolerance(cfg.Practice.Tolerance()),
		contracts.WithHardErrorThreshold(cfg.Practice.HardError()),
	}
	if !cfg.Output.Disabled {
		opts = append(opts, outputOptions(cfg.Output.Port, log)...)
	}
	sess, err := practice.NewSession(opts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("session stopped", log.Field().Error("error", err))
		}
	}()

	for _, d := range deliverers(cfg.Delivery, log) {
		reports := sess.Subscribe()
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := d.Run(ctx, reports); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("report delivery stopped", log.Field().Error("error", err))
			}
		}()
	}

	if len(steps) > 0 {
		if err := sess.LoadLesson(steps, practiceTempo); err != nil {
			return err
		}
	}
	client.StartCapture(sess.Input())

	m := newModel(sess, log, practiceTempo, steps, *chartPath)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()

	cancel()
	wg.Wait()
	return err
}

// newInput opens the configured input. A missing device is not fatal: the
// computer keyboard still plays into the session.
func newInput(cfg config.Config, log contracts.Logger) (contracts.ClientMIDI, error) {
	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.ParseLogLevel(cfg.Log.Level)),
		contracts.WithBackend(cfg.Input.Backend),
	}
	if cfg.Input.Backend == contracts.BackendSerial {
		opts = append(opts, contracts.WithSerialConfig(contracts.SerialConfig{Port: cfg.Input.Port, BaudRate: cfg.Input.BaudRate}))
	}
	client, err := midi.NewMIDIClient(opts...)
	if err != nil {
		return nil, err
	}

	if cfg.Input.Port == "" {
		err = client.SelectDevice(0)
	} else {
		err = midi.SelectByName(client, cfg.Input.Port)
	}
	if err != nil {
		log.Warn("no MIDI input; using the computer keyboard only", log.Field().Error("error", err))
	}
	return client, nil
}

func outputOptions(port string, log contracts.Logger) []contracts.SessionOption {
	reopen := func() (contracts.OutputMIDI, error) {
		return midi.NewMIDIOutput(port)
	}
	opts := []contracts.SessionOption{contracts.WithOutputReopen(reopen, 5*time.Second)}
	out, err := reopen()
	if err != nil {
		log.Warn("no MIDI output; clicks are silent until one appears", log.Field().Error("error", err))
		return opts
	}
	return append(opts, contracts.WithOutput(out))
}

func deliverers(cfg config.Delivery, log contracts.Logger) []*delivery.Deliverer {
	opts := []delivery.Option{
		delivery.WithLogger(log),
		delivery.WithRetries(cfg.Retries),
		delivery.WithBackoff(cfg.Backoff()),
	}
	var out []*delivery.Deliverer
	if cfg.OSC != "" {
		pub, err := delivery.NewOSCPublisher(cfg.OSC)
		if err != nil {
			log.Warn("OSC delivery disabled", log.Field().Error("error", err))
		} else {
			out = append(out, delivery.New(pub, opts...))
		}
	}
	if cfg.HTTP != "" {
		out = append(out, delivery.New(delivery.NewHTTPPublisher(cfg.HTTP, nil), opts...))
	}
	return out
}

func listPorts(client contracts.ClientMIDI) error {
	inputs, err := client.ListDevices()
	if err != nil && !errors.Is(err, contracts.ErrNoMIDIDevices) {
		return err
	}
	fmt.Println("Inputs:")
	for _, d := range inputs {
		fmt.Printf("  %d: %s\n", d.ID, d.Name)
	}
	fmt.Println("Outputs:")
	for _, d := range midi.ListOutputs() {
		fmt.Printf("  %d: %s\n", d.ID, d.Name)
	}
	return nil
}
