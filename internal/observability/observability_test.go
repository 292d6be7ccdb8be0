package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

func TestPrometheusRecorderCountsResultsAndEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()

	rec.Observe(ctx, "commit_create", true, 5*time.Millisecond)
	rec.Observe(ctx, "commit_create", true, 7*time.Millisecond)
	rec.Observe(ctx, "commit_update", false, time.Millisecond)
	rec.Count(ctx, repo.EventCacheHit)
	rec.Count(ctx, repo.EventCacheHit)
	rec.Count(ctx, repo.EventHookFailure)

	if got := testutil.ToFloat64(rec.results.WithLabelValues("commit_create", "success")); got != 2 {
		t.Fatalf("expected 2 successful creates, got %v", got)
	}
	if got := testutil.ToFloat64(rec.results.WithLabelValues("commit_update", "error")); got != 1 {
		t.Fatalf("expected 1 failed update, got %v", got)
	}
	if got := testutil.ToFloat64(rec.events.WithLabelValues(repo.EventCacheHit)); got != 2 {
		t.Fatalf("expected 2 cache hits, got %v", got)
	}
	if got := testutil.CollectAndCount(rec.durations); got != 2 {
		t.Fatalf("expected 2 duration series, got %d", got)
	}
}

func TestPrometheusRecorderIgnoresEmptyNames(t *testing.T) {
	rec, err := NewPrometheusRecorder(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	rec.Observe(context.Background(), "", true, time.Second)
	rec.Count(context.Background(), "")
	if got := testutil.CollectAndCount(rec.results); got != 0 {
		t.Fatalf("expected no series, got %d", got)
	}
}

func TestPrometheusRecorderDoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusRecorder(reg); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestExpvarRecorderAggregates(t *testing.T) {
	rec := NewExpvarRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "commit_create", true, 10*time.Millisecond)
	rec.Observe(ctx, "commit_create", false, 30*time.Millisecond)
	rec.Count(ctx, repo.EventCacheMiss)

	snap := rec.Snapshot()
	if got := snap.DurationsMS["commit_create"]; got != 40 {
		t.Fatalf("expected 40ms total, got %v", got)
	}
	if snap.Results["commit_create"]["success"] != 1 || snap.Results["commit_create"]["error"] != 1 {
		t.Fatalf("unexpected results: %+v", snap.Results)
	}
	if snap.Events[repo.EventCacheMiss] != 1 {
		t.Fatalf("unexpected events: %+v", snap.Events)
	}
	if !strings.HasPrefix(rec.Name(), "trc_repo_metrics_") {
		t.Fatalf("unexpected generated name %q", rec.Name())
	}
}

func TestExpvarRecorderSnapshotIsACopy(t *testing.T) {
	rec := NewExpvarRecorder("")
	rec.Count(context.Background(), "tampered")
	snap := rec.Snapshot()
	snap.Events["tampered"] = 99
	if rec.Snapshot().Events["tampered"] != 1 {
		t.Fatal("snapshot shares state with the recorder")
	}
}

func TestJSONLoggerWritesOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf)
	logger.Log(context.Background(), "cache_miss", map[string]any{"entry_id": "w1"})
	logger.Log(context.Background(), "hook_failure", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("parse line: %v", err)
	}
	if first["event"] != "cache_miss" || first["entry_id"] != "w1" {
		t.Fatalf("unexpected entry: %v", first)
	}
	if _, ok := first["ts"]; !ok {
		t.Fatal("expected a timestamp field")
	}
}

func TestJSONLoggerNilWriterDiscards(t *testing.T) {
	logger := NewJSONLogger(nil)
	logger.Log(context.Background(), "event", nil)
}
