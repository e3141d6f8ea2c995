package monitor

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/rust-practice/conn-mon/internal/domain"
)

type fakePinger struct {
	resp     domain.Response
	hosts    chan string
	timeouts chan domain.Seconds
}

func (f *fakePinger) Ping(host string, timeout domain.Seconds) domain.Response {
	f.hosts <- host
	f.timeouts <- timeout
	return f.resp
}

func TestPoller_ProbesAndForwards(t *testing.T) {
	pinger := &fakePinger{
		resp:     domain.Response{Kind: domain.KindTime, TimeMS: 7},
		hosts:    make(chan string, 8),
		timeouts: make(chan domain.Seconds, 8),
	}
	results := make(chan domain.ResponseMessage, 8)

	p := NewPoller(3, domain.Target{Host: "8.8.8.8"}, 5, time.Millisecond, pinger, results, clock.New(), zap.NewNop())
	go p.Run()

	for i := 0; i < 2; i++ {
		select {
		case msg := <-results:
			if msg.ID != 3 || msg.Response != pinger.resp {
				t.Fatalf("got %+v, want id 3 with the pinger's response", msg)
			}
			if msg.Timestamp == "" {
				t.Fatal("missing timestamp")
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for result")
		}
	}
	if host := <-pinger.hosts; host != "8.8.8.8" {
		t.Fatalf("host = %q", host)
	}
	if timeout := <-pinger.timeouts; timeout != 5 {
		t.Fatalf("timeout = %d, want global default 5", timeout)
	}
}

func TestPoller_TargetTimeoutOverridesDefault(t *testing.T) {
	pinger := &fakePinger{
		resp:     domain.Response{Kind: domain.KindTimeout},
		hosts:    make(chan string, 8),
		timeouts: make(chan domain.Seconds, 8),
	}
	results := make(chan domain.ResponseMessage, 8)

	p := NewPoller(0, domain.Target{Host: "10.0.0.1", Timeout: 2}, 5, time.Millisecond, pinger, results, clock.New(), zap.NewNop())
	go p.Run()

	select {
	case <-results:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for result")
	}
	if timeout := <-pinger.timeouts; timeout != 2 {
		t.Fatalf("timeout = %d, want per-target override 2", timeout)
	}
}
