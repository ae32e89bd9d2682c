package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks delivery of audit events to Kafka.
type Metrics struct {
	Published *prometheus.CounterVec
	Failed    prometheus.Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		Published: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kinfolk_audit_events_published_total",
			Help: "Audit events acknowledged by the broker, by action",
		}, []string{"action"}),
		Failed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kinfolk_audit_events_failed_total",
			Help: "Audit events the broker rejected or that timed out",
		}),
	}
}

func (m *Metrics) IncPublished(action Action) {
	if m == nil {
		return
	}
	m.Published.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) IncFailed() {
	if m == nil {
		return
	}
	m.Failed.Inc()
}
