package monitor

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/rust-practice/conn-mon/internal/domain"
	"github.com/rust-practice/conn-mon/internal/ping"
)

// Poller probes one target at a fixed interval and forwards classified
// results to the router. One goroutine per enabled target; pollers never
// talk to each other.
type Poller struct {
	id       domain.TargetID
	target   domain.Target
	timeout  domain.Seconds
	interval time.Duration
	pinger   ping.Pinger
	results  chan<- domain.ResponseMessage
	clk      clock.Clock
	logger   *zap.Logger
}

func NewPoller(
	id domain.TargetID,
	target domain.Target,
	defaultTimeout domain.Seconds,
	interval time.Duration,
	pinger ping.Pinger,
	results chan<- domain.ResponseMessage,
	clk clock.Clock,
	logger *zap.Logger,
) *Poller {
	timeout := target.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Poller{
		id:       id,
		target:   target,
		timeout:  timeout,
		interval: interval,
		pinger:   pinger,
		results:  results,
		clk:      clk,
		logger:   logger,
	}
}

// Run loops forever: probe, stamp, send, sleep. A failed probe is simply a
// classified failure result, corrected or reinforced next cycle.
func (p *Poller) Run() {
	p.logger.Debug("poller_started",
		zap.Int("target_id", int(p.id)),
		zap.String("name", p.target.Name()),
		zap.Int("timeout_s", int(p.timeout)),
	)
	for {
		resp := p.pinger.Ping(p.target.Host, p.timeout)
		p.logger.Debug("ping_response",
			zap.String("name", p.target.Name()),
			zap.String("kind", string(resp.Kind)),
		)
		p.results <- domain.ResponseMessage{
			ID: p.id,
			TimestampedResponse: domain.TimestampedResponse{
				Timestamp: domain.NewTimestamp(p.clk.Now()),
				Response:  resp,
			},
		}
		p.clk.Sleep(p.interval)
	}
}
