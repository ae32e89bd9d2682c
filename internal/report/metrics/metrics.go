package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers report exports and share-link downloads.
type Metrics struct {
	ExportsTotal        *prometheus.CounterVec
	ExportDuration      *prometheus.HistogramVec
	ExportBytes         prometheus.Histogram
	SharedDownloads     prometheus.Counter
	CyclesDetected      prometheus.Counter
	RejectedShareTokens prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		ExportsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kinfolk_report_exports_total",
			Help: "Total number of report exports by format",
		}, []string{"format"}),
		ExportDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kinfolk_report_export_duration_seconds",
			Help:    "Duration of building and rendering a report by format",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"format"}),
		ExportBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kinfolk_report_export_bytes",
			Help:    "Size of rendered report bodies",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		SharedDownloads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kinfolk_report_shared_downloads_total",
			Help: "Total number of reports served through share links",
		}),
		CyclesDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kinfolk_report_cycles_detected_total",
			Help: "Total number of exports refused because of cyclic parent links",
		}),
		RejectedShareTokens: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kinfolk_report_share_tokens_rejected_total",
			Help: "Total number of share tokens that failed validation",
		}),
	}
}

// ObserveExport records one successful export.
func (m *Metrics) ObserveExport(format string, start time.Time, size int) {
	m.ExportsTotal.WithLabelValues(format).Inc()
	m.ExportDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	m.ExportBytes.Observe(float64(size))
}

func (m *Metrics) IncrementSharedDownloads() {
	m.SharedDownloads.Inc()
}

func (m *Metrics) IncrementCyclesDetected() {
	m.CyclesDetected.Inc()
}

func (m *Metrics) IncrementRejectedShareTokens() {
	m.RejectedShareTokens.Inc()
}
