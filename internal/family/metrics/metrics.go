package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the family module: record changes and
// the cost of loading snapshots and building focal trees.
type Metrics struct {
	PeopleCreated    prometheus.Counter
	UnionsCreated    prometheus.Counter
	SnapshotDuration prometheus.Histogram
	SnapshotPeople   prometheus.Gauge
	BuildDuration    *prometheus.HistogramVec
	TreeNodes        *prometheus.HistogramVec
}

func New() *Metrics {
	return &Metrics{
		PeopleCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kinfolk_people_created_total",
			Help: "Total number of people created",
		}),
		UnionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kinfolk_unions_created_total",
			Help: "Total number of unions created (idempotent replays excluded)",
		}),
		SnapshotDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kinfolk_snapshot_load_duration_seconds",
			Help:    "Duration of loading all people and unions for a build",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SnapshotPeople: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "kinfolk_snapshot_people",
			Help: "Number of people in the most recent snapshot",
		}),
		BuildDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kinfolk_hierarchy_build_duration_seconds",
			Help:    "Duration of hierarchy builds by builder",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"builder"}),
		TreeNodes: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kinfolk_hierarchy_nodes",
			Help:    "Number of nodes in built hierarchies by builder",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}, []string{"builder"}),
	}
}

func (m *Metrics) IncrementPeopleCreated() {
	m.PeopleCreated.Inc()
}

func (m *Metrics) IncrementUnionsCreated() {
	m.UnionsCreated.Inc()
}

// ObserveSnapshot records a snapshot load. Call with time.Now() taken at the start.
func (m *Metrics) ObserveSnapshot(start time.Time, people int) {
	m.SnapshotDuration.Observe(time.Since(start).Seconds())
	m.SnapshotPeople.Set(float64(people))
}

// ObserveBuild records one builder run and the size of its result.
func (m *Metrics) ObserveBuild(builder string, start time.Time, nodes int) {
	m.BuildDuration.WithLabelValues(builder).Observe(time.Since(start).Seconds())
	m.TreeNodes.WithLabelValues(builder).Observe(float64(nodes))
}
