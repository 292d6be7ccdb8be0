package repo

import (
	"context"
	"time"
)

// MetricsRecorder receives operation outcomes and counter events from the
// repository. Implementations must be safe for concurrent use.
type MetricsRecorder interface {
	// Observe records one completed operation with its outcome and duration.
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
	// Count increments a named counter event (cache_hit, cache_miss,
	// cache_eviction, hook_failure, version_append_failure).
	Count(ctx context.Context, event string)
}

// Logger receives structured diagnostic events from the repository.
type Logger interface {
	Log(ctx context.Context, event string, fields map[string]any)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) Observe(context.Context, string, bool, time.Duration) {}
func (NopMetrics) Count(context.Context, string)                       {}

// NopLogger discards all events.
type NopLogger struct{}

func (NopLogger) Log(context.Context, string, map[string]any) {}

// Counter event names emitted by the repository.
const (
	EventCacheHit             = "cache_hit"
	EventCacheMiss            = "cache_miss"
	EventCacheEviction        = "cache_eviction"
	EventHookFailure          = "hook_failure"
	EventVersionAppendFailure = "version_append_failure"
)
