package domain

import (
	"fmt"
	"strings"
	"time"
)

// EventKind tags a qualifying availability transition or a synthesized
// system event.
type EventKind string

const (
	EventStartup             EventKind = "startup"
	EventStillAlive          EventKind = "still_alive"
	EventConnectionFailed    EventKind = "connection_failed"
	EventConnectionError     EventKind = "connection_error"
	EventConnectionStillDown EventKind = "connection_still_down"
	EventConnectionRestored  EventKind = "connection_restored"
	EventSystemError         EventKind = "system_error"
	EventSystemErrorPersists EventKind = "system_error_persists"
)

// Event carries only what rendering needs: the kind, the duration measured
// from the original entry into the outage (or uptime for StillAlive), and
// an optional diagnostic message.
type Event struct {
	Kind    EventKind
	Elapsed time.Duration
	Message string
}

// Render produces the human-readable body used in notifications.
func (e Event) Render() string {
	switch e.Kind {
	case EventStartup:
		return "Monitoring started"
	case EventStillAlive:
		return fmt.Sprintf("Still alive, up for %s", e.Elapsed)
	case EventConnectionFailed:
		return fmt.Sprintf("Connection failed (down for %s)", e.Elapsed)
	case EventConnectionError:
		return fmt.Sprintf("Connection error: %s (down for %s)", SingleLine(e.Message), e.Elapsed)
	case EventConnectionStillDown:
		return fmt.Sprintf("Connection still down (%s)", e.Elapsed)
	case EventConnectionRestored:
		return fmt.Sprintf("Connection restored (was down for %s)", e.Elapsed)
	case EventSystemError:
		return fmt.Sprintf("System error: %s", SingleLine(e.Message))
	case EventSystemErrorPersists:
		return fmt.Sprintf("System error persists (%s)", e.Elapsed)
	}
	return string(e.Kind)
}

// SystemName tags events not tied to a configured target (startup,
// heartbeat, handler I/O failures).
const SystemName = "SYSTEM_MSG"

// EventMessage pairs an event with the display name it concerns and the
// wall-clock time it was produced.
type EventMessage struct {
	Name      string
	Timestamp Timestamp
	Event     Event
}

// SingleLine flattens linefeeds so a multi-line diagnostic fits on one
// notification line.
func SingleLine(s string) string {
	return strings.ReplaceAll(s, "\n", "↵")
}
