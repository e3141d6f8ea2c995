package monitor

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/rust-practice/conn-mon/internal/domain"
)

// Heartbeat synthesizes a StillAlive event once a day at a configured
// wall-clock time, proving the monitor itself is running.
type Heartbeat struct {
	events chan<- domain.EventMessage
	at     domain.TimeOfDay
	start  time.Time
	clk    clock.Clock
	logger *zap.Logger
}

func NewHeartbeat(events chan<- domain.EventMessage, at domain.TimeOfDay, clk clock.Clock, logger *zap.Logger) *Heartbeat {
	return &Heartbeat{
		events: events,
		at:     at,
		start:  clk.Now(),
		clk:    clk,
		logger: logger,
	}
}

// Run sleeps until the next occurrence of the configured time of day, emits
// the heartbeat, and repeats forever.
func (h *Heartbeat) Run() {
	for {
		now := h.clk.Now()
		wait := h.at.UntilNext(now)
		h.logger.Debug("heartbeat_sleeping", zap.Duration("wait", wait))
		h.clk.Sleep(wait)
		h.events <- domain.EventMessage{
			Name:      domain.SystemName,
			Timestamp: domain.NewTimestamp(h.clk.Now()),
			Event: domain.Event{
				Kind:    domain.EventStillAlive,
				Elapsed: h.clk.Now().Sub(h.start),
			},
		}
	}
}
