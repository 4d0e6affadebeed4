// Package delivery forwards session reports to the remote scoring service.
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/leandrodaf/beatcoach/internal/logger"
	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

const (
	// DefaultRetries is the number of attempts made after the first one fails.
	DefaultRetries = 3
	// DefaultBackoff is the fixed wait between attempts.
	DefaultBackoff = time.Second
)

// Publisher sends one report to a remote endpoint.
type Publisher interface {
	Publish(ctx context.Context, r contracts.Report) error
	Close() error
}

// Envelope is the wire form of a report: its event name and its fields.
type Envelope struct {
	Event   string           `json:"event"`
	Payload contracts.Report `json:"payload"`
}

// Encode marshals a report inside its Envelope.
func Encode(r contracts.Report) ([]byte, error) {
	return json.Marshal(Envelope{Event: r.Event(), Payload: r})
}

// Deliverer publishes reports with bounded retries and a fixed backoff.
// Reports that still fail are logged and dropped.
type Deliverer struct {
	pub     Publisher
	logger  contracts.Logger
	retries int
	backoff time.Duration
	dropped int
}

// Option configures a Deliverer.
type Option func(*Deliverer)

// WithRetries sets how many times a failed publish is retried.
func WithRetries(n int) Option {
	return func(d *Deliverer) {
		d.retries = n
	}
}

// WithBackoff sets the wait between attempts.
func WithBackoff(b time.Duration) Option {
	return func(d *Deliverer) {
		d.backoff = b
	}
}

// WithLogger sets the logger used for dropped reports.
func WithLogger(l contracts.Logger) Option {
	return func(d *Deliverer) {
		d.logger = l
	}
}

// New returns a Deliverer publishing through pub.
func New(pub Publisher, opts ...Option) *Deliverer {
	d := &Deliverer{
		pub:     pub,
		retries: DefaultRetries,
		backoff: DefaultBackoff,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = logger.NewNopLogger()
	}
	if d.retries < 0 {
		d.retries = 0
	}
	return d
}

// Deliver publishes r, retrying on failure. It returns an error wrapping
// contracts.ErrDeliveryFailure once every attempt has failed, or ctx.Err()
// when ctx ends first.
func (d *Deliverer) Deliver(ctx context.Context, r contracts.Report) error {
	var err error
	for attempt := 0; attempt <= d.retries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(d.backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err = d.pub.Publish(ctx, r); err == nil {
			return nil
		}
		d.logger.Debug("report delivery attempt failed",
			d.logger.Field().String("event", r.Event()),
			d.logger.Field().Int("attempt", attempt+1),
			d.logger.Field().Error("error", err))
	}
	return fmt.Errorf("%w: %s after %d attempts: %v", contracts.ErrDeliveryFailure, r.Event(), d.retries+1, err)
}

// Run delivers every report from reports until the channel is closed or ctx
// ends, then closes the publisher.
func (d *Deliverer) Run(ctx context.Context, reports <-chan contracts.Report) error {
	defer func() {
		if err := d.pub.Close(); err != nil {
			d.logger.Warn("closing report publisher failed", d.logger.Field().Error("error", err))
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-reports:
			if !ok {
				return nil
			}
			if err := d.Deliver(ctx, r); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				d.dropped++
				d.logger.Warn("dropping report", d.logger.Field().String("event", r.Event()), d.logger.Field().Error("error", err))
			}
		}
	}
}

// Dropped returns how many reports Run gave up on. Read it after Run returns.
func (d *Deliverer) Dropped() int {
	return d.dropped
}
