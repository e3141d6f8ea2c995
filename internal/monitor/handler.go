package monitor

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/rust-practice/conn-mon/internal/domain"
)

// Timing collects the duration scalars shared by every target handler.
type Timing struct {
	FirstAlertDelay  time.Duration // minimum outage length before the first down notification
	ReminderInterval time.Duration // minimum spacing between repeat notifications
	MinFlushInterval time.Duration // minimum time between disk writes per target
}

// TargetHandler owns everything for one target: the availability state
// machine and the on-disk record of raw responses. It is only ever touched
// from the router's goroutine, so it needs no locking.
type TargetHandler struct {
	name  string
	state *StateMachine
	rec   *Recorder
	clk   clock.Clock
}

func NewTargetHandler(target domain.Target, eventsDir string, timing Timing, clk clock.Clock) (*TargetHandler, error) {
	rec, err := NewRecorder(eventsDir, target.Name(), timing.MinFlushInterval, clk)
	if err != nil {
		return nil, fmt.Errorf("recorder for %s: %w", target.Name(), err)
	}
	return &TargetHandler{
		name:  target.Name(),
		state: NewStateMachine(timing.FirstAlertDelay, timing.ReminderInterval),
		rec:   rec,
		clk:   clk,
	}, nil
}

// Receive feeds one response through the state machine and the log writer.
// The returned event is valid even when err is non-nil: an I/O failure must
// not drop a transition notification.
func (h *TargetHandler) Receive(resp domain.TimestampedResponse) (*domain.Event, error) {
	ev := h.state.Process(resp.Response, h.clk.Now())
	h.rec.Append(resp)
	if err := h.rec.Rotate(); err != nil {
		return ev, fmt.Errorf("rotate log for %s: %w", h.name, err)
	}
	if err := h.rec.Flush(); err != nil {
		return ev, fmt.Errorf("flush log for %s: %w", h.name, err)
	}
	return ev, nil
}

func (h *TargetHandler) Name() string { return h.name }

// State reports the current availability for operator surfaces.
func (h *TargetHandler) State() string { return h.state.State() }

// LogPath is where this target's records are currently written.
func (h *TargetHandler) LogPath() string { return h.rec.Path() }
