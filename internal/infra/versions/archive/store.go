// Package archive provides a version store that ships snapshots to a blob
// store (filesystem, S3, or memory), for deployments keeping history off
// the primary database.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"sync"

	"github.com/tcat-tamu/trc-sub000/internal/blob"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// Store writes one immutable JSON object per version under
// <prefix>/<entryID>/<number>.json. Numbering is derived from the existing
// objects and guarded by a per-process mutex; archive deployments assume a
// single writer per entry id.
type Store struct {
	blobs  blob.Store
	prefix string
	mu     sync.Mutex
}

var _ repo.VersionStore = (*Store)(nil)

// New builds an archive store over the given blob backend. An empty prefix
// defaults to "versions".
func New(blobs blob.Store, prefix string) *Store {
	if prefix == "" {
		prefix = "versions"
	}
	return &Store{blobs: blobs, prefix: prefix}
}

func (s *Store) entryPrefix(entryID string) string {
	return path.Join(s.prefix, entryID) + "/"
}

func (s *Store) key(entryID string, number int64) string {
	return path.Join(s.prefix, entryID, fmt.Sprintf("%012d.json", number))
}

// Append records one snapshot, assigning the next version number.
func (s *Store) Append(ctx context.Context, meta repo.VersionMeta, data []byte) (repo.VersionMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos, err := s.blobs.List(ctx, s.entryPrefix(meta.EntryID))
	if err != nil {
		return repo.VersionMeta{}, fmt.Errorf("list versions: %w", err)
	}
	meta.Number = int64(len(infos)) + 1

	record := repo.VersionedRecord{VersionMeta: meta, Data: data}
	payload, err := json.Marshal(record)
	if err != nil {
		return repo.VersionMeta{}, fmt.Errorf("encode version: %w", err)
	}
	_, err = s.blobs.Put(ctx, s.key(meta.EntryID, meta.Number), bytes.NewReader(payload), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"version_id": meta.VersionID, "actor": meta.Actor},
	})
	if err != nil {
		return repo.VersionMeta{}, fmt.Errorf("store version: %w", err)
	}
	return meta, nil
}

// List reads every archived snapshot for the entry and returns metadata
// matching the filter.
func (s *Store) List(ctx context.Context, entryID string, filter repo.VersionFilter) ([]repo.VersionMeta, error) {
	records, err := s.readAll(ctx, entryID)
	if err != nil {
		return nil, err
	}
	metas := make([]repo.VersionMeta, 0, len(records))
	for _, rec := range records {
		if filter.Matches(rec.VersionMeta) {
			metas = append(metas, rec.VersionMeta)
		}
	}
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

// Get returns the archived snapshot for one version id.
func (s *Store) Get(ctx context.Context, entryID, versionID string) (repo.VersionedRecord, error) {
	records, err := s.readAll(ctx, entryID)
	if err != nil {
		return repo.VersionedRecord{}, err
	}
	for _, rec := range records {
		if rec.VersionID == versionID {
			return rec, nil
		}
	}
	return repo.VersionedRecord{}, repo.NotFoundError{ID: entryID + "@" + versionID}
}

func (s *Store) readAll(ctx context.Context, entryID string) ([]repo.VersionedRecord, error) {
	infos, err := s.blobs.List(ctx, s.entryPrefix(entryID))
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })

	out := make([]repo.VersionedRecord, 0, len(infos))
	for _, info := range infos {
		_, body, err := s.blobs.Get(ctx, info.Key)
		if err != nil {
			return nil, fmt.Errorf("read version %s: %w", info.Key, err)
		}
		raw, err := io.ReadAll(body)
		_ = body.Close()
		if err != nil {
			return nil, fmt.Errorf("read version %s: %w", info.Key, err)
		}
		var rec repo.VersionedRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("decode version %s: %w", info.Key, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
