package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rust-practice/conn-mon/internal/domain"
)

// Metrics aggregates the monitor's Prometheus instrumentation. A nil
// *Metrics is valid and records nothing, which keeps unit tests quiet.
type Metrics struct {
	probeResults  *prometheus.CounterVec
	events        *prometheus.CounterVec
	notifications *prometheus.CounterVec
	targetUp      *prometheus.GaugeVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		probeResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connmon",
			Name:      "probe_results_total",
			Help:      "Classified probe results per target.",
		}, []string{"target", "kind"}),
		events: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connmon",
			Name:      "events_total",
			Help:      "Availability events by kind.",
		}, []string{"kind"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "connmon",
			Name:      "notifications_total",
			Help:      "Notification delivery attempts by transport and outcome.",
		}, []string{"transport", "outcome"}),
		targetUp: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "connmon",
			Name:      "target_up",
			Help:      "1 when the last probe replied, 0 otherwise.",
		}, []string{"target"}),
	}
}

func (m *Metrics) ObserveResponse(target string, resp domain.Response) {
	if m == nil {
		return
	}
	m.probeResults.WithLabelValues(target, string(resp.Kind)).Inc()
	up := 0.0
	if resp.Kind == domain.KindTime {
		up = 1.0
	}
	m.targetUp.WithLabelValues(target).Set(up)
}

func (m *Metrics) ObserveEvent(kind domain.EventKind) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) ObserveNotification(transport string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.notifications.WithLabelValues(transport, outcome).Inc()
}
