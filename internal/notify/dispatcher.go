package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rust-practice/conn-mon/internal/domain"
	"github.com/rust-practice/conn-mon/internal/metrics"
)

// Dispatcher is the single consumer of events. It renders each event into
// one line and delivers it through an ordered list of transports: the
// primary with a fixed number of attempts and a fixed delay between them,
// then each remaining transport once. Message text is never requeued; the
// per-target event log is the durable record. A stalled transport stalls
// the whole dispatcher, an accepted trade-off of running a single one.
type Dispatcher struct {
	events     <-chan domain.EventMessage
	transports []Notifier

	attempts    int
	retryDelay  time.Duration
	sendTimeout time.Duration

	clk     clock.Clock
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewDispatcher(events <-chan domain.EventMessage, transports []Notifier, clk clock.Clock, logger *zap.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		events:      events,
		transports:  transports,
		attempts:    3,
		retryDelay:  5 * time.Second,
		sendTimeout: 30 * time.Second,
		clk:         clk,
		logger:      logger,
		metrics:     m,
	}
}

// Run consumes events forever.
func (d *Dispatcher) Run() {
	d.logger.Info("dispatcher_started", zap.Int("transports", len(d.transports)))
	for msg := range d.events {
		d.metrics.ObserveEvent(msg.Event.Kind)
		text := fmt.Sprintf("%s - %s - %s", msg.Timestamp, msg.Name, msg.Event.Render())
		if msg.Event.Kind == domain.EventStartup {
			d.selfTest(text)
			continue
		}
		d.deliver(text)
	}
}

// selfTest pushes the startup line through every transport, tolerating
// individual failures.
func (d *Dispatcher) selfTest(text string) {
	var errs error
	for _, n := range d.transports {
		if err := d.attempt(n, text); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	if errs != nil {
		d.logger.Error("startup_self_test_failed", zap.Error(errs))
	}
}

func (d *Dispatcher) deliver(text string) {
	if len(d.transports) == 0 {
		d.logger.Error("no_transports_configured", zap.String("message", text))
		return
	}

	primary := d.transports[0]
	for i := 0; i < d.attempts; i++ {
		if i > 0 {
			d.clk.Sleep(d.retryDelay)
		}
		err := d.attempt(primary, text)
		if err == nil {
			return
		}
		d.logger.Warn("notify_attempt_failed",
			zap.String("transport", primary.Name()),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
	}

	for _, n := range d.transports[1:] {
		err := d.attempt(n, text)
		if err == nil {
			return
		}
		d.logger.Warn("notify_fallback_failed", zap.String("transport", n.Name()), zap.Error(err))
	}

	d.logger.Error("notify_failed_all_transports", zap.String("message", text))
}

func (d *Dispatcher) attempt(n Notifier, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
	defer cancel()
	err := n.Send(ctx, text)
	d.metrics.ObserveNotification(n.Name(), err)
	return err
}
