package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

func appendVersion(t *testing.T, s *Store, entryID, versionID, actor string, at time.Time) repo.VersionMeta {
	t.Helper()
	meta, err := s.Append(context.Background(), repo.VersionMeta{
		EntryID:   entryID,
		VersionID: versionID,
		Actor:     actor,
		Action:    repo.ActionUpdate,
		CreatedAt: at,
	}, []byte(`{"v":"`+versionID+`"}`))
	if err != nil {
		t.Fatalf("append %s: %v", versionID, err)
	}
	return meta
}

func TestStoreNumbersAreGaplessPerEntry(t *testing.T) {
	s := New()
	now := time.Now().UTC()
	for i := 1; i <= 5; i++ {
		meta := appendVersion(t, s, "w1", fmt.Sprintf("u%d", i), "a", now)
		if meta.Number != int64(i) {
			t.Fatalf("append %d assigned number %d", i, meta.Number)
		}
	}
	// a second entry numbers independently
	if meta := appendVersion(t, s, "w2", "other", "a", now); meta.Number != 1 {
		t.Fatalf("second entry started at %d", meta.Number)
	}
}

func TestStoreConcurrentAppendsStayGapless(t *testing.T) {
	s := New()
	now := time.Now().UTC()
	const writers = 32
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			appendVersion(t, s, "w1", fmt.Sprintf("u%d", i), "a", now)
		}()
	}
	wg.Wait()

	metas, err := s.List(context.Background(), "w1", repo.VersionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != writers {
		t.Fatalf("expected %d versions, got %d", writers, len(metas))
	}
	for i, meta := range metas {
		if meta.Number != int64(i+1) {
			t.Fatalf("gap at position %d: number %d", i, meta.Number)
		}
	}
}

func TestStoreListFilters(t *testing.T) {
	s := New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	appendVersion(t, s, "w1", "u1", "alice", base)
	appendVersion(t, s, "w1", "u2", "bob", base.Add(time.Hour))
	appendVersion(t, s, "w1", "u3", "alice", base.Add(2*time.Hour))
	appendVersion(t, s, "w1", "u4", "alice", base.Add(3*time.Hour))

	ctx := context.Background()

	byActor, err := s.List(ctx, "w1", repo.VersionFilter{Actor: "alice"})
	if err != nil {
		t.Fatalf("list by actor: %v", err)
	}
	if len(byActor) != 3 {
		t.Fatalf("expected 3 alice versions, got %d", len(byActor))
	}

	cut := base.Add(90 * time.Minute)
	after, err := s.List(ctx, "w1", repo.VersionFilter{After: &cut})
	if err != nil {
		t.Fatalf("list after: %v", err)
	}
	if len(after) != 2 || after[0].VersionID != "u3" {
		t.Fatalf("unexpected after filter result: %+v", after)
	}

	ranged, err := s.List(ctx, "w1", repo.VersionFilter{AfterVersion: 1, BeforeVersion: 4})
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(ranged) != 2 || ranged[0].Number != 2 || ranged[1].Number != 3 {
		t.Fatalf("unexpected version range: %+v", ranged)
	}

	newest, err := s.List(ctx, "w1", repo.VersionFilter{Reverse: true, Limit: 2})
	if err != nil {
		t.Fatalf("list reversed: %v", err)
	}
	if len(newest) != 2 || newest[0].Number != 4 || newest[1].Number != 3 {
		t.Fatalf("unexpected reversed page: %+v", newest)
	}
}

func TestStoreGetReturnsSnapshot(t *testing.T) {
	s := New()
	appendVersion(t, s, "w1", "u1", "alice", time.Now().UTC())

	rec, err := s.Get(context.Background(), "w1", "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.VersionID != "u1" || string(rec.Data) != `{"v":"u1"}` {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if _, err := s.Get(context.Background(), "w1", "missing"); !repo.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.Get(context.Background(), "missing", "u1"); !repo.IsNotFound(err) {
		t.Fatalf("expected not found for unknown entry, got %v", err)
	}
}

func TestStoreListUnknownEntryIsEmpty(t *testing.T) {
	s := New()
	metas, err := s.List(context.Background(), "ghost", repo.VersionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 0 {
		t.Fatalf("expected empty history, got %d", len(metas))
	}
}
