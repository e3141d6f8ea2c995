package domain

import "time"

// ResponseKind tags the classified outcome of a single probe.
type ResponseKind string

const (
	// KindTime is a reply within the timeout; TimeMS carries the RTT.
	KindTime ResponseKind = "time"
	// KindTimeout is the plain no-reply case.
	KindTimeout ResponseKind = "timeout"
	// KindPingError means the ping binary itself reported a failure,
	// e.g. "Destination Host Unreachable".
	KindPingError ResponseKind = "ping_error"
	// KindTransportError means we failed to launch ping or to decode its
	// output streams.
	KindTransportError ResponseKind = "transport_error"
	// KindInternalError means the output matched no known shape.
	KindInternalError ResponseKind = "internal_error"
)

// Response is the classified outcome of a single probe. Exactly one of
// TimeMS or Message is meaningful depending on Kind.
type Response struct {
	Kind    ResponseKind `json:"kind"`
	TimeMS  int          `json:"time_ms,omitempty"`
	Message string       `json:"message,omitempty"`
}

// TimestampLayout is the local wall-clock format used in event logs and
// notifications. Second resolution keeps the log lines readable.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp is a capture time already rendered in TimestampLayout.
type Timestamp string

func NewTimestamp(t time.Time) Timestamp { return Timestamp(t.Format(TimestampLayout)) }

func (t Timestamp) String() string { return string(t) }

// TimestampedResponse is one event-log record: the capture time plus the
// classified result. Serialized as a single JSON line.
type TimestampedResponse struct {
	Timestamp Timestamp `json:"timestamp"`
	Response  Response  `json:"response"`
}

// ResponseMessage is what a poller puts on the results channel.
type ResponseMessage struct {
	ID TargetID
	TimestampedResponse
}
