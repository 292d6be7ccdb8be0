package repo

import (
	"context"
	"time"
)

// VersionMeta describes one committed historical state of an entry. Numbers
// are assigned by the version store and strictly increase per entry.
type VersionMeta struct {
	EntryID   string    `json:"entryId"`
	VersionID string    `json:"versionId"`
	Number    int64     `json:"number"`
	Actor     string    `json:"actor,omitempty"`
	Action    Action    `json:"action"`
	CreatedAt time.Time `json:"createdAt"`
}

// VersionedRecord pairs a version's metadata with the serialized storage
// record as it stood at that commit.
type VersionedRecord struct {
	VersionMeta
	Data []byte `json:"data"`
}

// VersionFilter narrows and orders List results. The zero value selects the
// full history in chronological order.
type VersionFilter struct {
	Actor         string
	After         *time.Time
	Before        *time.Time
	AfterVersion  int64
	BeforeVersion int64
	Limit         int
	Reverse       bool
}

// Matches reports whether meta passes the filter's predicates. Limit and
// Reverse are ordering concerns handled by the store.
func (f VersionFilter) Matches(meta VersionMeta) bool {
	if f.Actor != "" && meta.Actor != f.Actor {
		return false
	}
	if f.After != nil && !meta.CreatedAt.After(*f.After) {
		return false
	}
	if f.Before != nil && !meta.CreatedAt.Before(*f.Before) {
		return false
	}
	if f.AfterVersion > 0 && meta.Number <= f.AfterVersion {
		return false
	}
	if f.BeforeVersion > 0 && meta.Number >= f.BeforeVersion {
		return false
	}
	return true
}

// VersionStore is the append-only snapshot log consulted for historical
// queries. Append assigns the per-entry version number; the pipeline calls
// it exactly once per successful commit.
type VersionStore interface {
	Append(ctx context.Context, meta VersionMeta, data []byte) (VersionMeta, error)
	List(ctx context.Context, entryID string, filter VersionFilter) ([]VersionMeta, error)
	Get(ctx context.Context, entryID, versionID string) (VersionedRecord, error)
}
