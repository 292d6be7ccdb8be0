// Package observability provides metrics recorders and the JSON line
// logger consumed by the repository layer.
package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// PrometheusRecorder implements repo.MetricsRecorder over Prometheus
// collectors.
type PrometheusRecorder struct {
	durations *prometheus.HistogramVec
	results   *prometheus.CounterVec
	events    *prometheus.CounterVec
}

var _ repo.MetricsRecorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder constructs a recorder and registers its collectors
// with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) (*PrometheusRecorder, error) {
	r := &PrometheusRecorder{
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trc_repo_operation_duration_seconds",
			Help:    "Duration of repository operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trc_repo_operation_results_total",
			Help: "Repository operation outcomes.",
		}, []string{"operation", "status"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trc_repo_events_total",
			Help: "Repository counter events (cache hits, hook failures).",
		}, []string{"event"}),
	}
	for _, c := range []prometheus.Collector{r.durations, r.results, r.events} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records one completed operation.
func (r *PrometheusRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
	r.results.WithLabelValues(operation, status).Inc()
}

// Count increments a named counter event.
func (r *PrometheusRecorder) Count(_ context.Context, event string) {
	if event == "" {
		return
	}
	r.events.WithLabelValues(event).Inc()
}
