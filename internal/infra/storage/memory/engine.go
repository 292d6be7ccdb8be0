// Package memory provides an in-memory storage engine for tests and
// ephemeral deployments. It mirrors the row semantics of the durable
// engines, including soft removal and id-ordered listing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

// Engine stores rows in a map guarded by a RWMutex.
type Engine struct {
	schema *repo.Schema
	mu     sync.RWMutex
	rows   map[string]repo.Row
}

// New constructs an empty engine for the given schema.
func New(schema *repo.Schema) *Engine {
	return &Engine{schema: schema, rows: make(map[string]repo.Row)}
}

var _ repo.Engine = (*Engine)(nil)

func cloneRow(row repo.Row) repo.Row {
	cp := row
	cp.Data = append([]byte(nil), row.Data...)
	return cp
}

// LoadRow returns the live row for id, or repo.ErrNoRow when the row is
// absent or marked removed.
func (e *Engine) LoadRow(_ context.Context, id string) (repo.Row, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	row, ok := e.rows[id]
	if !ok || row.Removed {
		return repo.Row{}, repo.ErrNoRow
	}
	return cloneRow(row), nil
}

// InsertRow stores a new row. An id whose previous row was soft-removed
// is reusable; the dead row is replaced in place. A live duplicate fails.
func (e *Engine) InsertRow(_ context.Context, row repo.Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if existing, ok := e.rows[row.ID]; ok && !existing.Removed {
		return fmt.Errorf("row %q already exists", row.ID)
	}
	e.rows[row.ID] = cloneRow(row)
	return nil
}

// UpdateRow overwrites the payload of an existing live row, preserving its
// created timestamp.
func (e *Engine) UpdateRow(_ context.Context, row repo.Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	existing, ok := e.rows[row.ID]
	if !ok || existing.Removed {
		return fmt.Errorf("update matched no row for %q: %w", row.ID, repo.ErrNoRow)
	}
	updated := cloneRow(row)
	updated.Created = existing.Created
	e.rows[row.ID] = updated
	return nil
}

// MarkRemoved soft-deletes the row. Engines for schemas without a removed
// column refuse it.
func (e *Engine) MarkRemoved(_ context.Context, id string, at time.Time) error {
	if _, ok := e.schema.RemovedColumn(); !ok {
		return repo.UnsupportedError{Op: "mark_removed", Reason: "schema has no removed column"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	row, ok := e.rows[id]
	if !ok || row.Removed {
		return fmt.Errorf("remove matched no row for %q: %w", id, repo.ErrNoRow)
	}
	row.Removed = true
	row.Modified = at
	e.rows[id] = row
	return nil
}

// DeleteRow drops the row entirely.
func (e *Engine) DeleteRow(_ context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rows[id]; !ok {
		return fmt.Errorf("delete matched no row for %q: %w", id, repo.ErrNoRow)
	}
	delete(e.rows, id)
	return nil
}

// ListRows returns live rows ordered by id.
func (e *Engine) ListRows(_ context.Context, offset, limit int) ([]repo.Row, error) {
	e.mu.RLock()
	ids := make([]string, 0, len(e.rows))
	for id, row := range e.rows {
		if !row.Removed {
			ids = append(ids, id)
		}
	}
	e.mu.RUnlock()
	sort.Strings(ids)

	if offset >= len(ids) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(ids) {
		end = len(ids)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]repo.Row, 0, end-offset)
	for _, id := range ids[offset:end] {
		if row, ok := e.rows[id]; ok && !row.Removed {
			out = append(out, cloneRow(row))
		}
	}
	return out, nil
}
