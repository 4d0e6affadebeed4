package practice

import (
	"fmt"
	"time"

	"github.com/leandrodaf/beatcoach/internal/beat"
	"github.com/leandrodaf/beatcoach/internal/clock"
	"github.com/leandrodaf/beatcoach/internal/logger"
	"github.com/leandrodaf/beatcoach/internal/output"
	"github.com/leandrodaf/beatcoach/internal/scheduler"
	"github.com/leandrodaf/beatcoach/internal/timing"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// applyDefaultSessionOptions sets default values for SessionOptions if not explicitly provided.
//
// opts ...contracts.SessionOption: A variadic list of option functions that can modify SessionOptions.
//
// Returns:
//   - contracts.SessionOptions: The finalized options with defaults applied.
//   - error: An error if a provided value is out of range.
func applyDefaultSessionOptions(opts ...contracts.SessionOption) (contracts.SessionOptions, error) {
	options := &contracts.SessionOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Tolerance < 0 || options.HardErrorThreshold < 0 {
		return contracts.SessionOptions{}, fmt.Errorf("negative timing threshold: tolerance %v, hard error %v",
			options.Tolerance, options.HardErrorThreshold)
	}
	if options.DemoArticulation < 0 || options.DemoArticulation > 1 {
		return contracts.SessionOptions{}, fmt.Errorf("demo articulation %v outside (0, 1]", options.DemoArticulation)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.Tolerance == 0 {
		options.Tolerance = beat.DefaultTolerance
	}
	if options.HardErrorThreshold == 0 {
		options.HardErrorThreshold = timing.DefaultHardError
	}
	if options.MaxClockGap <= 0 {
		options.MaxClockGap = clock.DefaultMaxGap
	}
	if options.ReportBuffer <= 0 {
		options.ReportBuffer = 64
	}
	if options.InputBuffer <= 0 {
		options.InputBuffer = 256
	}
	if options.ReopenInterval <= 0 {
		options.ReopenInterval = output.DefaultReopenInterval
	}
	if options.Click == (contracts.ClickConfig{}) {
		options.Click = output.DefaultClick
	}
	if options.DemoArticulation == 0 {
		options.DemoArticulation = scheduler.DefaultArticulation
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return *options, nil
}
