package reporting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for report queries.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

// NewMetrics registers the report collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "people_reports",
			Name:      "query_duration_seconds",
			Help:      "Duration of report queries, by report.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"report"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "people_reports",
			Name:      "query_errors_total",
			Help:      "Report queries that returned an error, by report.",
		}, []string{"report"}),
	}
}

func (m *Metrics) observe(report string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(report).Observe(elapsed.Seconds())
	if err != nil {
		m.errors.WithLabelValues(report).Inc()
	}
}
