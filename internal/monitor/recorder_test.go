package monitor

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/rust-practice/conn-mon/internal/domain"
)

func stamped(clk clock.Clock, resp domain.Response) domain.TimestampedResponse {
	return domain.TimestampedResponse{
		Timestamp: domain.NewTimestamp(clk.Now()),
		Response:  resp,
	}
}

func readRecords(t *testing.T, path string) []domain.TimestampedResponse {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	var out []domain.TimestampedResponse
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec domain.TimestampedResponse
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("parse line %q: %v", sc.Text(), err)
		}
		out = append(out, rec)
	}
	return out
}

func TestRecorder_WriteAndRoundTrip(t *testing.T) {
	dir := t.TempDir()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC))

	rec, err := NewRecorder(dir, "Router", time.Minute, clk)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	wantPath := filepath.Join(dir, "2024-05-06 Router events.log")
	if rec.Path() != wantPath {
		t.Fatalf("path = %q, want %q", rec.Path(), wantPath)
	}

	want := []domain.TimestampedResponse{
		stamped(clk, domain.Response{Kind: domain.KindTime, TimeMS: 8}),
		stamped(clk, domain.Response{Kind: domain.KindPingError, Message: "Destination Host Unreachable"}),
	}
	for _, r := range want {
		rec.Append(r)
	}
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	got := readRecords(t, wantPath)
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRecorder_FlushPacing(t *testing.T) {
	dir := t.TempDir()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC))

	rec, err := NewRecorder(dir, "gw", time.Minute, clk)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	// The first flush is immediate.
	rec.Append(stamped(clk, domain.Response{Kind: domain.KindTimeout}))
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := rec.PendingCount(); n != 0 {
		t.Fatalf("pending = %d, want 0", n)
	}

	// Within the pacing interval nothing is written.
	clk.Add(30 * time.Second)
	rec.Append(stamped(clk, domain.Response{Kind: domain.KindTimeout}))
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := rec.PendingCount(); n != 1 {
		t.Fatalf("pending = %d, want 1 (paced)", n)
	}
	if got := readRecords(t, rec.Path()); len(got) != 1 {
		t.Fatalf("file has %d records, want 1", len(got))
	}

	// Once the interval has elapsed the whole buffer goes out.
	clk.Add(31 * time.Second)
	rec.Append(stamped(clk, domain.Response{Kind: domain.KindTime, TimeMS: 3}))
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if n := rec.PendingCount(); n != 0 {
		t.Fatalf("pending = %d, want 0", n)
	}
	if got := readRecords(t, rec.Path()); len(got) != 3 {
		t.Fatalf("file has %d records, want 3", len(got))
	}
}

func TestRecorder_RotatesWhenDateChanges(t *testing.T) {
	dir := t.TempDir()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC))

	rec, err := NewRecorder(dir, "gw", 0, clk)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	dayOne := rec.Path()
	rec.Append(stamped(clk, domain.Response{Kind: domain.KindTimeout}))
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	clk.Add(2 * time.Minute) // past midnight
	if err := rec.Rotate(); err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	wantPath := filepath.Join(dir, "2024-05-07 gw events.log")
	if rec.Path() != wantPath {
		t.Fatalf("path after rotation = %q, want %q", rec.Path(), wantPath)
	}

	rec.Append(stamped(clk, domain.Response{Kind: domain.KindTime, TimeMS: 4}))
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := readRecords(t, dayOne); len(got) != 1 {
		t.Fatalf("day one has %d records, want 1", len(got))
	}
	if got := readRecords(t, wantPath); len(got) != 1 {
		t.Fatalf("day two has %d records, want 1", len(got))
	}
}

// A rotation that fails keeps writing to the old file but is retried on
// the next call; once it succeeds, records land in the new day's file.
func TestRecorder_RetriesFailedRotation(t *testing.T) {
	dir := t.TempDir()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 6, 23, 59, 0, 0, time.UTC))

	rec, err := NewRecorder(dir, "gw", 0, clk)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	dayOne := rec.Path()

	// A directory squatting on day two's filename makes the open fail.
	dayTwo := filepath.Join(dir, "2024-05-07 gw events.log")
	if err := os.Mkdir(dayTwo, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	clk.Add(2 * time.Minute) // past midnight
	if err := rec.Rotate(); err == nil {
		t.Fatal("expected rotation to fail against the obstructed path")
	}
	if rec.Path() != dayOne {
		t.Fatalf("path = %q, want the old file %q after a failed rotation", rec.Path(), dayOne)
	}

	if err := os.Remove(dayTwo); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := rec.Rotate(); err != nil {
		t.Fatalf("Rotate after clearing obstruction: %v", err)
	}
	if rec.Path() != dayTwo {
		t.Fatalf("path = %q, want %q", rec.Path(), dayTwo)
	}

	rec.Append(stamped(clk, domain.Response{Kind: domain.KindTimeout}))
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := readRecords(t, dayTwo); len(got) != 1 {
		t.Fatalf("day two has %d records, want 1", len(got))
	}
	if got := readRecords(t, dayOne); len(got) != 0 {
		t.Fatalf("day one has %d records, want 0", len(got))
	}
}

// A failed write keeps the whole pending buffer for the next attempt.
func TestRecorder_KeepsBufferWhenWriteFails(t *testing.T) {
	dir := t.TempDir()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC))

	rec, err := NewRecorder(dir, "gw", 0, clk)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}

	rec.Append(stamped(clk, domain.Response{Kind: domain.KindTimeout}))
	rec.file.Close() // makes the next write fail
	if err := rec.Flush(); err == nil {
		t.Fatal("expected Flush to fail on the closed handle")
	}
	if n := rec.PendingCount(); n != 1 {
		t.Fatalf("pending = %d, want 1 (buffer retained)", n)
	}

	if err := rec.open(rec.datePart); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	rec.Append(stamped(clk, domain.Response{Kind: domain.KindTime, TimeMS: 4}))
	if err := rec.Flush(); err != nil {
		t.Fatalf("Flush after reopen: %v", err)
	}
	if n := rec.PendingCount(); n != 0 {
		t.Fatalf("pending = %d, want 0", n)
	}
	if got := readRecords(t, rec.Path()); len(got) != 2 {
		t.Fatalf("file has %d records, want both after the retry", len(got))
	}
}

// A second run on the same day appends to the existing file instead of
// truncating it.
func TestRecorder_AppendsAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	clk := clock.NewMock()
	clk.Set(time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC))

	first, err := NewRecorder(dir, "gw", 0, clk)
	if err != nil {
		t.Fatalf("NewRecorder: %v", err)
	}
	first.Append(stamped(clk, domain.Response{Kind: domain.KindTimeout}))
	if err := first.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	second, err := NewRecorder(dir, "gw", 0, clk)
	if err != nil {
		t.Fatalf("NewRecorder (second run): %v", err)
	}
	second.Append(stamped(clk, domain.Response{Kind: domain.KindTime, TimeMS: 2}))
	if err := second.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := readRecords(t, second.Path()); len(got) != 2 {
		t.Fatalf("file has %d records, want 2", len(got))
	}
}
