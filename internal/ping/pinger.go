package ping

import (
	"bytes"
	"errors"
	"os/exec"
	"strconv"

	"go.uber.org/zap"

	"github.com/rust-practice/conn-mon/internal/domain"
)

// Pinger performs a single probe against a host and classifies the outcome.
type Pinger interface {
	Ping(host string, timeout domain.Seconds) domain.Response
}

// ExecPinger shells out to the system ping binary, one echo request per call.
// A probe that fails is simply a classified failure; there is no retry here.
type ExecPinger struct {
	Logger *zap.Logger
}

func NewExecPinger(logger *zap.Logger) *ExecPinger {
	return &ExecPinger{Logger: logger}
}

func (p *ExecPinger) Ping(host string, timeout domain.Seconds) domain.Response {
	cmd := exec.Command("ping", "-c", "1", "-W", strconv.Itoa(int(timeout)), host)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	var launchErr error
	if err := cmd.Run(); err != nil {
		// ping exits non-zero when the probe fails; only a failure to run
		// the process at all is a transport problem.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			launchErr = err
		}
	}

	resp := Classify(stdout.Bytes(), stderr.Bytes(), launchErr)
	if launchErr == nil && stdout.Len() > 0 && stderr.Len() > 0 {
		// Not expecting both streams populated. stdout won the
		// classification, keep the stderr text for diagnosis.
		p.Logger.Error("ping_stderr_alongside_stdout",
			zap.String("host", host),
			zap.String("stderr", stderr.String()),
		)
	}
	return resp
}
