// Package sqlite provides a version store persisting snapshot logs to an
// embedded SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store appends version snapshots to a single table keyed by entry id and
// version number.
type Store struct {
	db    *sql.DB
	table string

	// mu serializes Append so number assignment and the insert commit as
	// one unit.
	mu sync.Mutex
}

var _ repo.VersionStore = (*Store)(nil)

// Open opens the SQLite database at path and ensures the versions table
// exists.
func Open(path, table string) (*Store, error) {
	if path == "" {
		path = "trc-versions.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection per handle; writers on sibling handles for the same
	// file wait out the lock instead of failing busy.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return Wrap(db, table)
}

// Wrap builds a store over an already-open database.
func Wrap(db *sql.DB, table string) (*Store, error) {
	if table == "" {
		table = "entry_versions"
	}
	s := &Store{db: db, table: table}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		entry_id TEXT NOT NULL,
		version_id TEXT NOT NULL,
		number INTEGER NOT NULL,
		actor TEXT,
		action TEXT NOT NULL,
		created_at TEXT NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (entry_id, number)
	)`, table)
	if _, err := db.Exec(ddl); err != nil {
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Append records one snapshot. Appends are serialized under the store
// mutex so assigned numbers stay gapless under concurrent commits.
func (s *Store) Append(ctx context.Context, meta repo.VersionMeta, data []byte) (repo.VersionMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return repo.VersionMeta{}, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var next int64
	query := fmt.Sprintf("SELECT COALESCE(MAX(number), 0) + 1 FROM %s WHERE entry_id = ?", s.table)
	if err := tx.QueryRowContext(ctx, query, meta.EntryID).Scan(&next); err != nil {
		return repo.VersionMeta{}, fmt.Errorf("next version: %w", err)
	}
	meta.Number = next

	stmt := fmt.Sprintf("INSERT INTO %s (entry_id, version_id, number, actor, action, created_at, data) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	if _, err := tx.ExecContext(ctx, stmt, meta.EntryID, meta.VersionID, meta.Number, meta.Actor, string(meta.Action), meta.CreatedAt.Format(time.RFC3339Nano), data); err != nil {
		return repo.VersionMeta{}, fmt.Errorf("insert version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return repo.VersionMeta{}, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return meta, nil
}

// List returns version metadata matching the filter, ordered by number.
func (s *Store) List(ctx context.Context, entryID string, filter repo.VersionFilter) ([]repo.VersionMeta, error) {
	where := []string{"entry_id = ?"}
	args := []any{entryID}
	if filter.Actor != "" {
		where = append(where, "actor = ?")
		args = append(args, filter.Actor)
	}
	if filter.After != nil {
		where = append(where, "created_at > ?")
		args = append(args, filter.After.Format(time.RFC3339Nano))
	}
	if filter.Before != nil {
		where = append(where, "created_at < ?")
		args = append(args, filter.Before.Format(time.RFC3339Nano))
	}
	if filter.AfterVersion > 0 {
		where = append(where, "number > ?")
		args = append(args, filter.AfterVersion)
	}
	if filter.BeforeVersion > 0 {
		where = append(where, "number < ?")
		args = append(args, filter.BeforeVersion)
	}
	order := "ASC"
	if filter.Reverse {
		order = "DESC"
	}
	query := fmt.Sprintf("SELECT version_id, number, actor, action, created_at FROM %s WHERE %s ORDER BY number %s", s.table, strings.Join(where, " AND "), order)
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []repo.VersionMeta
	for rows.Next() {
		meta := repo.VersionMeta{EntryID: entryID}
		var action, created string
		if err := rows.Scan(&meta.VersionID, &meta.Number, &meta.Actor, &action, &created); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		meta.Action = repo.Action(action)
		at, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("parse version time: %w", err)
		}
		meta.CreatedAt = at
		out = append(out, meta)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	return out, nil
}

// Get returns the stored snapshot for one version id.
func (s *Store) Get(ctx context.Context, entryID, versionID string) (repo.VersionedRecord, error) {
	query := fmt.Sprintf("SELECT number, actor, action, created_at, data FROM %s WHERE entry_id = ? AND version_id = ?", s.table)
	rec := repo.VersionedRecord{VersionMeta: repo.VersionMeta{EntryID: entryID, VersionID: versionID}}
	var action, created string
	err := s.db.QueryRowContext(ctx, query, entryID, versionID).Scan(&rec.Number, &rec.Actor, &action, &created, &rec.Data)
	if errors.Is(err, sql.ErrNoRows) {
		return repo.VersionedRecord{}, repo.NotFoundError{ID: entryID + "@" + versionID}
	}
	if err != nil {
		return repo.VersionedRecord{}, fmt.Errorf("select version: %w", err)
	}
	rec.Action = repo.Action(action)
	at, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return repo.VersionedRecord{}, fmt.Errorf("parse version time: %w", err)
	}
	rec.CreatedAt = at
	return rec, nil
}
