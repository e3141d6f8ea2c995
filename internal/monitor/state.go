package monitor

import (
	"time"

	"github.com/rust-practice/conn-mon/internal/domain"
)

type stateKind int

const (
	stateStart stateKind = iota
	stateUp
	stateDown
	stateSystemError
)

func (k stateKind) String() string {
	switch k {
	case stateStart:
		return "start"
	case stateUp:
		return "up"
	case stateDown:
		return "down"
	case stateSystemError:
		return "system_error"
	}
	return "unknown"
}

// StateMachine tracks one target's availability and decides which
// transitions warrant a notification. Owned by exactly one TargetHandler,
// so it needs no locking. Time is passed in by the caller, which keeps the
// transition function deterministic under test.
type StateMachine struct {
	kind         stateKind
	since        time.Time // entry into the current Down/SystemError outage
	lastNotified time.Time // zero = never notified for this outage

	firstAlertDelay  time.Duration
	reminderInterval time.Duration
}

func NewStateMachine(firstAlertDelay, reminderInterval time.Duration) *StateMachine {
	return &StateMachine{
		kind:             stateStart,
		firstAlertDelay:  firstAlertDelay,
		reminderInterval: reminderInterval,
	}
}

// Process feeds one classified response through the transition table and
// returns the event to notify, if any. Elapsed durations on returned events
// are always measured from the original entry into the outage, not since
// the last reminder.
func (s *StateMachine) Process(resp domain.Response, now time.Time) *domain.Event {
	switch s.kind {
	case stateStart, stateUp:
		return s.fromUp(resp, now)
	case stateDown:
		return s.fromDown(resp, now)
	case stateSystemError:
		return s.fromSystemError(resp, now)
	}
	return nil
}

func (s *StateMachine) fromUp(resp domain.Response, now time.Time) *domain.Event {
	switch resp.Kind {
	case domain.KindTime:
		s.kind = stateUp
		return nil
	case domain.KindTimeout, domain.KindPingError:
		s.kind = stateDown
		s.since = now
		s.lastNotified = time.Time{}
		if s.firstAlertDelay == 0 {
			s.lastNotified = now
			return &domain.Event{Kind: domain.EventConnectionFailed}
		}
		return nil
	default:
		return s.enterSystemError(resp, now)
	}
}

func (s *StateMachine) fromDown(resp domain.Response, now time.Time) *domain.Event {
	switch resp.Kind {
	case domain.KindTime:
		notified := !s.lastNotified.IsZero()
		elapsed := now.Sub(s.since)
		s.toUp()
		if notified {
			return &domain.Event{Kind: domain.EventConnectionRestored, Elapsed: elapsed}
		}
		// The outage was never announced, so the recovery is silent too.
		return nil
	case domain.KindTimeout:
		if !s.notifyDue(now) {
			return nil
		}
		first := s.lastNotified.IsZero()
		s.lastNotified = now
		if first {
			return &domain.Event{Kind: domain.EventConnectionFailed, Elapsed: now.Sub(s.since)}
		}
		return &domain.Event{Kind: domain.EventConnectionStillDown, Elapsed: now.Sub(s.since)}
	case domain.KindPingError:
		if !s.notifyDue(now) {
			return nil
		}
		first := s.lastNotified.IsZero()
		s.lastNotified = now
		if first {
			return &domain.Event{Kind: domain.EventConnectionError, Elapsed: now.Sub(s.since), Message: resp.Message}
		}
		return &domain.Event{Kind: domain.EventConnectionStillDown, Elapsed: now.Sub(s.since)}
	default:
		return s.enterSystemError(resp, now)
	}
}

func (s *StateMachine) fromSystemError(resp domain.Response, now time.Time) *domain.Event {
	switch resp.Kind {
	case domain.KindTime:
		elapsed := now.Sub(s.since)
		s.toUp()
		return &domain.Event{Kind: domain.EventConnectionRestored, Elapsed: elapsed}
	case domain.KindTimeout, domain.KindPingError:
		// A fresh, not-yet-notified outage; the debounce clock restarts.
		s.kind = stateDown
		s.since = now
		s.lastNotified = time.Time{}
		return nil
	default:
		if now.Sub(s.lastNotified) >= s.reminderInterval {
			elapsed := now.Sub(s.since)
			s.lastNotified = now
			return &domain.Event{Kind: domain.EventSystemErrorPersists, Elapsed: elapsed}
		}
		return nil
	}
}

func (s *StateMachine) enterSystemError(resp domain.Response, now time.Time) *domain.Event {
	s.kind = stateSystemError
	s.since = now
	s.lastNotified = now
	return &domain.Event{Kind: domain.EventSystemError, Message: resp.Message}
}

func (s *StateMachine) toUp() {
	s.kind = stateUp
	s.since = time.Time{}
	s.lastNotified = time.Time{}
}

// notifyDue implements the debounce/reminder pacing: an outage never yet
// notified is due once it has lasted firstAlertDelay; after that, reminders
// are spaced by reminderInterval.
func (s *StateMachine) notifyDue(now time.Time) bool {
	if s.lastNotified.IsZero() {
		return now.Sub(s.since) >= s.firstAlertDelay
	}
	return now.Sub(s.lastNotified) >= s.reminderInterval
}

// State reports the current availability for operator surfaces.
func (s *StateMachine) State() string { return s.kind.String() }
