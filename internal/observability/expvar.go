package observability

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

var expvarSeq uint64

// ExpvarRecorder publishes aggregate timing and result counters via expvar
// for deployments that prefer process-local metrics over a scrape endpoint.
// Totals are kept in milliseconds per operation plus success/error and
// event counters.
type ExpvarRecorder struct {
	name      string
	mu        sync.Mutex
	durations map[string]float64
	results   map[string]map[string]int64
	events    map[string]int64
}

var _ repo.MetricsRecorder = (*ExpvarRecorder)(nil)

// ExpvarSnapshot captures a read-only view of the recorded metrics.
type ExpvarSnapshot struct {
	DurationsMS map[string]float64          `json:"durations_ms_total"`
	Results     map[string]map[string]int64 `json:"results_total"`
	Events      map[string]int64            `json:"events_total"`
	RecordedAt  time.Time                   `json:"recorded_at"`
}

// NewExpvarRecorder constructs a recorder published under the supplied
// name; an empty name gets a unique generated one.
func NewExpvarRecorder(name string) *ExpvarRecorder {
	if name == "" {
		id := atomic.AddUint64(&expvarSeq, 1)
		name = fmt.Sprintf("trc_repo_metrics_%d", id)
	}
	rec := &ExpvarRecorder{
		name:      name,
		durations: make(map[string]float64),
		results:   make(map[string]map[string]int64),
		events:    make(map[string]int64),
	}
	expvar.Publish(name, expvar.Func(func() any {
		return rec.Snapshot()
	}))
	return rec
}

// Name returns the expvar export name.
func (r *ExpvarRecorder) Name() string { return r.name }

// Snapshot returns an immutable copy of the aggregated metrics.
func (r *ExpvarRecorder) Snapshot() ExpvarSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	durations := make(map[string]float64, len(r.durations))
	for op, total := range r.durations {
		durations[op] = total
	}
	results := make(map[string]map[string]int64, len(r.results))
	for op, statusCounts := range r.results {
		cpy := make(map[string]int64, len(statusCounts))
		for status, count := range statusCounts {
			cpy[status] = count
		}
		results[op] = cpy
	}
	events := make(map[string]int64, len(r.events))
	for event, count := range r.events {
		events[event] = count
	}
	return ExpvarSnapshot{
		DurationsMS: durations,
		Results:     results,
		Events:      events,
		RecordedAt:  time.Now().UTC(),
	}
}

// Observe records one completed operation.
func (r *ExpvarRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := float64(duration) / float64(time.Millisecond)
	status := "error"
	if success {
		status = "success"
	}
	r.mu.Lock()
	r.durations[operation] += ms
	if _, ok := r.results[operation]; !ok {
		r.results[operation] = make(map[string]int64, 2)
	}
	r.results[operation][status]++
	r.mu.Unlock()
}

// Count increments a named counter event.
func (r *ExpvarRecorder) Count(_ context.Context, event string) {
	if event == "" {
		return
	}
	r.mu.Lock()
	r.events[event]++
	r.mu.Unlock()
}
