package ping

import (
	"fmt"
	"regexp"
	"strconv"
	"unicode/utf8"

	"github.com/rust-practice/conn-mon/internal/domain"
)

var (
	// A reply line: "64 bytes from 8.8.8.8: icmp_seq=1 ttl=117 time=5.32 ms".
	rePass = regexp.MustCompile(`icmp_seq=\d+ ttl=\d+ time=(\d+)\.?(\d+)? ms`)
	// The 0-received summary, with an optional diagnostic line between the
	// header and the statistics block.
	reFail = regexp.MustCompile(`bytes of data.\n(?:(.*)\n)?\n---.*\n1 packets transmitted, 0 received`)
)

// Classify turns the captured output of one ping invocation into exactly one
// Response. launchErr is a process launch or I/O failure; a non-zero exit
// status is not a launch failure, the output decides. Never panics past this
// boundary: anything ambiguous becomes an internal error response.
func Classify(stdout, stderr []byte, launchErr error) domain.Response {
	if launchErr != nil {
		return domain.Response{
			Kind:    domain.KindTransportError,
			Message: fmt.Sprintf("failed to execute ping: %v", launchErr),
		}
	}
	if !utf8.Valid(stdout) {
		return domain.Response{Kind: domain.KindTransportError, Message: "failed to decode stdout as text"}
	}
	if !utf8.Valid(stderr) {
		return domain.Response{Kind: domain.KindTransportError, Message: "failed to decode stderr as text"}
	}

	out, serr := string(stdout), string(stderr)
	switch {
	case out == "" && serr == "":
		// Never observed, but must be covered.
		return domain.Response{Kind: domain.KindTransportError, Message: "both stdout and stderr are empty"}
	case out == "":
		// ping reports its own failures on stderr with nothing on stdout.
		return domain.Response{Kind: domain.KindPingError, Message: serr}
	}

	return parseStdout(out)
}

func parseStdout(out string) domain.Response {
	if m := rePass.FindStringSubmatch(out); m != nil {
		return parseMilliseconds(m[1], m[2])
	}
	if m := reFail.FindStringSubmatch(out); m != nil {
		if m[1] != "" {
			return domain.Response{Kind: domain.KindPingError, Message: m[1]}
		}
		return domain.Response{Kind: domain.KindTimeout}
	}
	return domain.Response{
		Kind:    domain.KindInternalError,
		Message: fmt.Sprintf("ping output matched neither pass nor fail. Output: %q", out),
	}
}

// parseMilliseconds rounds the RTT to whole milliseconds. The fractional
// digits are compared literally against 50, not normalized to hundredths:
// "5.7" keeps 5 while "5.70" becomes 6.
func parseMilliseconds(ms, frac string) domain.Response {
	n, err := strconv.Atoi(ms)
	if err != nil {
		return domain.Response{
			Kind:    domain.KindInternalError,
			Message: fmt.Sprintf("failed to parse ms in ping output: %v", err),
		}
	}
	if frac != "" {
		f, err := strconv.Atoi(frac)
		if err != nil {
			return domain.Response{
				Kind:    domain.KindInternalError,
				Message: fmt.Sprintf("failed to parse fractional ms in ping output: %v", err),
			}
		}
		if f >= 50 {
			n++
		}
	}
	return domain.Response{Kind: domain.KindTime, TimeMS: n}
}
