// Package memory provides an in-memory version store for tests and
// ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// Store keeps per-entry version logs in process memory.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]repo.VersionedRecord
}

var _ repo.VersionStore = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{entries: make(map[string][]repo.VersionedRecord)}
}

// Append records one snapshot, assigning the next version number for the
// entry.
func (s *Store) Append(_ context.Context, meta repo.VersionMeta, data []byte) (repo.VersionMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.entries[meta.EntryID]
	meta.Number = int64(len(log)) + 1
	record := repo.VersionedRecord{VersionMeta: meta, Data: append([]byte(nil), data...)}
	s.entries[meta.EntryID] = append(log, record)
	return meta, nil
}

// List returns version metadata matching the filter, chronological unless
// the filter reverses it.
func (s *Store) List(_ context.Context, entryID string, filter repo.VersionFilter) ([]repo.VersionMeta, error) {
	s.mu.RLock()
	log := s.entries[entryID]
	metas := make([]repo.VersionMeta, 0, len(log))
	for _, rec := range log {
		if filter.Matches(rec.VersionMeta) {
			metas = append(metas, rec.VersionMeta)
		}
	}
	s.mu.RUnlock()

	if filter.Reverse {
		for i, j := 0, len(metas)-1; i < j; i, j = i+1, j-1 {
			metas[i], metas[j] = metas[j], metas[i]
		}
	}
	if filter.Limit > 0 && len(metas) > filter.Limit {
		metas = metas[:filter.Limit]
	}
	return metas, nil
}

// Get returns the stored snapshot for one version id.
func (s *Store) Get(_ context.Context, entryID, versionID string) (repo.VersionedRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.entries[entryID] {
		if rec.VersionID == versionID {
			cp := rec
			cp.Data = append([]byte(nil), rec.Data...)
			return cp, nil
		}
	}
	return repo.VersionedRecord{}, repo.NotFoundError{ID: entryID + "@" + versionID}
}
