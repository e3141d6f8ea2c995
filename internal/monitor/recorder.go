package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/rust-practice/conn-mon/internal/domain"
)

const dateLayout = "2006-01-02"

// Recorder buffers responses for one target and appends them to a per-day
// log file. Rotation happens when the wall-clock date changes. Flushes are
// paced by minFlushInterval and are all-or-nothing: on a write failure the
// buffer is kept for the next attempt, so no result is ever lost.
type Recorder struct {
	dir  string
	name string

	file     *os.File
	path     string
	datePart string

	pending          []domain.TimestampedResponse
	lastFlush        time.Time
	minFlushInterval time.Duration
	clk              clock.Clock
}

func NewRecorder(dir, name string, minFlushInterval time.Duration, clk clock.Clock) (*Recorder, error) {
	r := &Recorder{
		dir:              dir,
		name:             name,
		minFlushInterval: minFlushInterval,
		clk:              clk,
	}
	if err := r.open(clk.Now().Format(dateLayout)); err != nil {
		return nil, err
	}
	return r, nil
}

// open creates the dated file, appending when a previous run already
// started today's file. datePart is committed only once the file is open,
// so a failed rotation is retried on the next call.
func (r *Recorder) open(datePart string) error {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("create events directory: %w", err)
	}
	path := filepath.Join(r.dir, fmt.Sprintf("%s %s events.log", datePart, r.name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if r.file != nil {
		_ = r.file.Close()
	}
	r.file = f
	r.path = path
	r.datePart = datePart
	return nil
}

// Append queues a response for the next flush.
func (r *Recorder) Append(resp domain.TimestampedResponse) {
	r.pending = append(r.pending, resp)
}

// Rotate reopens the file when the calendar date has changed since the
// current file was named.
func (r *Recorder) Rotate() error {
	datePart := r.clk.Now().Format(dateLayout)
	if datePart == r.datePart {
		return nil
	}
	return r.open(datePart)
}

// Flush writes the whole pending buffer, one JSON record per line, unless
// the minimum time between writes has not yet elapsed. Either every pending
// record is written and the buffer cleared, or the buffer stays intact.
func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	if !r.lastFlush.IsZero() && r.clk.Now().Sub(r.lastFlush) < r.minFlushInterval {
		return nil
	}

	var buf bytes.Buffer
	for _, resp := range r.pending {
		line, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("marshal response: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if _, err := r.file.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", r.path, err)
	}

	r.pending = r.pending[:0]
	r.lastFlush = r.clk.Now()
	return nil
}

// Path is where this target's records are currently written.
func (r *Recorder) Path() string { return r.path }

// PendingCount reports how many records await the next flush.
func (r *Recorder) PendingCount() int { return len(r.pending) }
