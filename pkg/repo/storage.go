package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Row is the raw storage representation of one entry: the identifier, the
// serialized record, and bookkeeping markers. Engines return ErrNoRow for
// identifiers without a live row.
type Row struct {
	ID       string
	Data     []byte
	Removed  bool
	Created  time.Time
	Modified time.Time
}

// Engine is the single-row-atomic storage backend consumed by a repository.
// ListRows returns live rows in id order; both it and LoadRow never return
// rows marked removed.
type Engine interface {
	LoadRow(ctx context.Context, id string) (Row, error)
	InsertRow(ctx context.Context, row Row) error
	UpdateRow(ctx context.Context, row Row) error
	// MarkRemoved soft-deletes the row; engines whose schema has no removed
	// column reject it with an UnsupportedError.
	MarkRemoved(ctx context.Context, id string, at time.Time) error
	DeleteRow(ctx context.Context, id string) error
	ListRows(ctx context.Context, offset, limit int) ([]Row, error)
}

// Codec serializes storage records. Unmarshal tolerates unknown fields so
// the stored representation can evolve.
type Codec[S any] interface {
	Marshal(record S) ([]byte, error)
	Unmarshal(data []byte) (S, error)
}

// JSONCodec is the default Codec, backed by encoding/json.
type JSONCodec[S any] struct{}

// Marshal encodes the record as JSON.
func (JSONCodec[S]) Marshal(record S) ([]byte, error) { return json.Marshal(record) }

// Unmarshal decodes a JSON payload, ignoring unknown fields.
func (JSONCodec[S]) Unmarshal(data []byte) (S, error) {
	var out S
	err := json.Unmarshal(data, &out)
	return out, err
}

// Adapter materializes the immutable domain record exposed to callers from
// a storage record. It must be pure.
type Adapter[S, D any] func(S) (D, error)

// IDSource produces identifiers for entries created without a client-chosen
// id, and for server-assigned child ids.
type IDSource interface {
	Next() string
}

// UUIDSource is the default IDSource.
type UUIDSource struct{}

// Next returns a random UUID string.
func (UUIDSource) Next() string { return uuid.NewString() }

// Actor identifies who initiated an update. A nil *Actor marks a
// system-initiated operation.
type Actor struct {
	ID   string
	Name string
}

// Action is the kind of update applied by one commit.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)
