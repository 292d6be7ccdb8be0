package archive

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tcat-tamu/trc-sub000/internal/blob"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

func appendSnapshot(t *testing.T, s *Store, entryID, versionID string, payload string) repo.VersionMeta {
	t.Helper()
	meta, err := s.Append(context.Background(), repo.VersionMeta{
		EntryID:   entryID,
		VersionID: versionID,
		Actor:     "archivist",
		Action:    repo.ActionUpdate,
		CreatedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}, []byte(payload))
	if err != nil {
		t.Fatalf("append %s: %v", versionID, err)
	}
	return meta
}

func TestStoreRoundTripsSnapshotsThroughBlobs(t *testing.T) {
	blobs := blob.NewMemory()
	s := New(blobs, "history")

	appendSnapshot(t, s, "w1", "u1", `{"title":"first"}`)
	appendSnapshot(t, s, "w1", "u2", `{"title":"second"}`)

	rec, err := s.Get(context.Background(), "w1", "u2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Number != 2 || string(rec.Data) != `{"title":"second"}` {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Actor != "archivist" || rec.Action != repo.ActionUpdate {
		t.Fatalf("metadata lost in the round trip: %+v", rec)
	}
}

func TestStoreWritesOneObjectPerVersionUnderPrefix(t *testing.T) {
	blobs := blob.NewMemory()
	s := New(blobs, "history")

	appendSnapshot(t, s, "w1", "u1", `{}`)
	appendSnapshot(t, s, "w1", "u2", `{}`)
	appendSnapshot(t, s, "w2", "u3", `{}`)

	infos, err := blobs.List(context.Background(), "history/w1/")
	if err != nil {
		t.Fatalf("list blobs: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 objects for w1, got %d", len(infos))
	}
	for _, info := range infos {
		if !strings.HasSuffix(info.Key, ".json") {
			t.Fatalf("unexpected object key %q", info.Key)
		}
	}
}

func TestStoreNumbersPerEntry(t *testing.T) {
	s := New(blob.NewMemory(), "")

	if meta := appendSnapshot(t, s, "w1", "u1", `{}`); meta.Number != 1 {
		t.Fatalf("first version numbered %d", meta.Number)
	}
	if meta := appendSnapshot(t, s, "w1", "u2", `{}`); meta.Number != 2 {
		t.Fatalf("second version numbered %d", meta.Number)
	}
	if meta := appendSnapshot(t, s, "w2", "u3", `{}`); meta.Number != 1 {
		t.Fatalf("independent entry numbered %d", meta.Number)
	}
}

func TestStoreListOrdersAndFilters(t *testing.T) {
	s := New(blob.NewMemory(), "")
	appendSnapshot(t, s, "w1", "u1", `{}`)
	appendSnapshot(t, s, "w1", "u2", `{}`)
	appendSnapshot(t, s, "w1", "u3", `{}`)

	metas, err := s.List(context.Background(), "w1", repo.VersionFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("expected 3 versions, got %d", len(metas))
	}
	for i, meta := range metas {
		if meta.Number != int64(i+1) {
			t.Fatalf("position %d has number %d", i, meta.Number)
		}
	}

	newest, err := s.List(context.Background(), "w1", repo.VersionFilter{Reverse: true, Limit: 1})
	if err != nil {
		t.Fatalf("list reversed: %v", err)
	}
	if len(newest) != 1 || newest[0].VersionID != "u3" {
		t.Fatalf("unexpected newest version: %+v", newest)
	}
}

func TestStoreGetMissingVersion(t *testing.T) {
	s := New(blob.NewMemory(), "")
	appendSnapshot(t, s, "w1", "u1", `{}`)
	if _, err := s.Get(context.Background(), "w1", "ghost"); !repo.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
