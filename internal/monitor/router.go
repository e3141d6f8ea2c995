package monitor

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/rust-practice/conn-mon/internal/domain"
	"github.com/rust-practice/conn-mon/internal/metrics"
)

// StatusSink receives a read-only view of each processed result for
// operator surfaces. Implementations must tolerate concurrent readers.
type StatusSink interface {
	Record(name, state string, resp domain.TimestampedResponse)
}

// Router is the single consumer of poller results. It owns the TargetID →
// handler registry outright; no other goroutine ever touches a handler, so
// the hot path needs no locks.
type Router struct {
	results <-chan domain.ResponseMessage
	events  chan<- domain.EventMessage

	handlers map[domain.TargetID]*TargetHandler
	nextID   domain.TargetID

	eventsDir string
	timing    Timing
	clk       clock.Clock
	logger    *zap.Logger
	metrics   *metrics.Metrics
	status    StatusSink
}

func NewRouter(
	results <-chan domain.ResponseMessage,
	events chan<- domain.EventMessage,
	eventsDir string,
	timing Timing,
	clk clock.Clock,
	logger *zap.Logger,
	m *metrics.Metrics,
	status StatusSink,
) *Router {
	return &Router{
		results:   results,
		events:    events,
		handlers:  make(map[domain.TargetID]*TargetHandler),
		eventsDir: eventsDir,
		timing:    timing,
		clk:       clk,
		logger:    logger,
		metrics:   m,
		status:    status,
	}
}

// Register creates the handler (and its log file) for a target and assigns
// the next sequential ID. Must be called before Run.
func (r *Router) Register(target domain.Target) (domain.TargetID, error) {
	h, err := NewTargetHandler(target, r.eventsDir, r.timing, r.clk)
	if err != nil {
		return 0, err
	}
	id := r.nextID
	r.handlers[id] = h
	r.nextID++
	r.logger.Info("target_registered",
		zap.Int("target_id", int(id)),
		zap.String("name", h.Name()),
		zap.String("log_path", h.LogPath()),
	)
	return id, nil
}

// Run consumes results forever. A result carrying an unknown TargetID means
// the wiring is broken, not an environmental condition, and is fatal.
func (r *Router) Run() {
	r.logger.Info("router_started", zap.Int("targets", len(r.handlers)))
	for msg := range r.results {
		h, ok := r.handlers[msg.ID]
		if !ok {
			r.logger.Fatal("unknown_target_id", zap.Int("target_id", int(msg.ID)))
		}

		r.metrics.ObserveResponse(h.Name(), msg.Response)

		ev, err := h.Receive(msg.TimestampedResponse)
		if err != nil {
			// I/O trouble for one target must not stop the loop; the
			// handler keeps its buffer and retries on the next result.
			r.logger.Error("handler_io_error", zap.String("name", h.Name()), zap.Error(err))
			r.events <- domain.EventMessage{
				Name:      domain.SystemName,
				Timestamp: domain.NewTimestamp(r.clk.Now()),
				Event:     domain.Event{Kind: domain.EventSystemError, Message: err.Error()},
			}
		}
		if ev != nil {
			r.events <- domain.EventMessage{
				Name:      h.Name(),
				Timestamp: domain.NewTimestamp(r.clk.Now()),
				Event:     *ev,
			}
		}

		if r.status != nil {
			r.status.Record(h.Name(), h.State(), msg.TimestampedResponse)
		}
	}
}
