// Package sqlite provides a storage engine over an embedded SQLite file.
// Records are stored one row per entry with the serialized payload in a
// BLOB column named by the schema.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Engine persists rows in a single SQLite table shaped by the schema.
type Engine struct {
	schema *repo.Schema
	db     *sql.DB
}

var _ repo.Engine = (*Engine)(nil)

// OpenDB opens (creating if needed) the SQLite database at path and
// configures the handle for concurrent writers: a single pooled
// connection with a busy timeout, so contending writes queue instead of
// failing busy.
func OpenDB(path string) (*sql.DB, error) {
	if path == "" {
		path = "trc.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	return db, nil
}

// Open opens the database at path and ensures the schema's table exists.
func Open(path string, schema *repo.Schema) (*Engine, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	engine := &Engine{schema: schema, db: db}
	if err := engine.ensureTable(context.Background()); err != nil {
		return nil, err
	}
	return engine, nil
}

// Wrap builds an engine over an already-open database, for engines sharing
// one file across several schemas.
func Wrap(db *sql.DB, schema *repo.Schema) (*Engine, error) {
	engine := &Engine{schema: schema, db: db}
	if err := engine.ensureTable(context.Background()); err != nil {
		return nil, err
	}
	return engine, nil
}

// Close closes the underlying database handle.
func (e *Engine) Close() error { return e.db.Close() }

// DB exposes the handle for sharing with sibling engines.
func (e *Engine) DB() *sql.DB { return e.db }

func (e *Engine) ensureTable(ctx context.Context) error {
	s := e.schema
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY, %s BLOB NOT NULL", s.Table(), s.IDColumn(), s.DataColumn())
	if col, ok := s.RemovedColumn(); ok {
		ddl += fmt.Sprintf(", %s INTEGER NOT NULL DEFAULT 0", col)
	}
	if col, ok := s.CreatedColumn(); ok {
		ddl += fmt.Sprintf(", %s TEXT", col)
	}
	if col, ok := s.ModifiedColumn(); ok {
		ddl += fmt.Sprintf(", %s TEXT", col)
	}
	ddl += ")"
	if _, err := e.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.Table(), err)
	}
	return nil
}

// liveClause returns the WHERE fragment excluding removed rows.
func (e *Engine) liveClause() string {
	if col, ok := e.schema.RemovedColumn(); ok {
		return fmt.Sprintf(" AND %s = 0", col)
	}
	return ""
}

// LoadRow returns the live row for id, or repo.ErrNoRow.
func (e *Engine) LoadRow(ctx context.Context, id string) (repo.Row, error) {
	s := e.schema
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?%s", s.DataColumn(), s.Table(), s.IDColumn(), e.liveClause())
	var data []byte
	err := e.db.QueryRowContext(ctx, query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return repo.Row{}, repo.ErrNoRow
	}
	if err != nil {
		return repo.Row{}, fmt.Errorf("select %s: %w", s.Table(), err)
	}
	return repo.Row{ID: id, Data: data}, nil
}

// InsertRow stores a new row. An id whose previous row was soft-removed
// is reusable; the dead row is replaced in place. A live duplicate fails.
func (e *Engine) InsertRow(ctx context.Context, row repo.Row) error {
	s := e.schema
	if col, ok := s.RemovedColumn(); ok {
		set := fmt.Sprintf("%s = ?, %s = 0", s.DataColumn(), col)
		args := []any{row.Data}
		if c, ok := s.CreatedColumn(); ok {
			set += fmt.Sprintf(", %s = ?", c)
			args = append(args, row.Created.Format(time.RFC3339Nano))
		}
		if c, ok := s.ModifiedColumn(); ok {
			set += fmt.Sprintf(", %s = ?", c)
			args = append(args, row.Modified.Format(time.RFC3339Nano))
		}
		args = append(args, row.ID)
		stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? AND %s = 1", s.Table(), set, s.IDColumn(), col)
		res, err := e.db.ExecContext(ctx, stmt, args...)
		if err != nil {
			return fmt.Errorf("replace removed %s: %w", s.Table(), err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("replace removed %s rows affected: %w", s.Table(), err)
		} else if n == 1 {
			return nil
		}
	}
	cols := fmt.Sprintf("%s, %s", s.IDColumn(), s.DataColumn())
	args := []any{row.ID, row.Data}
	params := "?, ?"
	if col, ok := s.CreatedColumn(); ok {
		cols += ", " + col
		params += ", ?"
		args = append(args, row.Created.Format(time.RFC3339Nano))
	}
	if col, ok := s.ModifiedColumn(); ok {
		cols += ", " + col
		params += ", ?"
		args = append(args, row.Modified.Format(time.RFC3339Nano))
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", s.Table(), cols, params)
	if _, err := e.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert %s: %w", s.Table(), err)
	}
	return nil
}

// UpdateRow overwrites the payload of an existing live row.
func (e *Engine) UpdateRow(ctx context.Context, row repo.Row) error {
	s := e.schema
	set := fmt.Sprintf("%s = ?", s.DataColumn())
	args := []any{row.Data}
	if col, ok := s.ModifiedColumn(); ok {
		set += fmt.Sprintf(", %s = ?", col)
		args = append(args, row.Modified.Format(time.RFC3339Nano))
	}
	args = append(args, row.ID)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?%s", s.Table(), set, s.IDColumn(), e.liveClause())
	res, err := e.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.Table(), err)
	}
	return e.expectOneRow(res, "update", row.ID)
}

// MarkRemoved soft-deletes the row.
func (e *Engine) MarkRemoved(ctx context.Context, id string, at time.Time) error {
	s := e.schema
	col, ok := s.RemovedColumn()
	if !ok {
		return repo.UnsupportedError{Op: "mark_removed", Reason: "schema has no removed column"}
	}
	set := fmt.Sprintf("%s = 1", col)
	args := []any{}
	if mod, ok := s.ModifiedColumn(); ok {
		set += fmt.Sprintf(", %s = ?", mod)
		args = append(args, at.Format(time.RFC3339Nano))
	}
	args = append(args, id)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ? AND %s = 0", s.Table(), set, s.IDColumn(), col)
	res, err := e.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark removed %s: %w", s.Table(), err)
	}
	return e.expectOneRow(res, "mark removed", id)
}

// DeleteRow drops the row entirely.
func (e *Engine) DeleteRow(ctx context.Context, id string) error {
	s := e.schema
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = ?", s.Table(), s.IDColumn())
	res, err := e.db.ExecContext(ctx, stmt, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.Table(), err)
	}
	return e.expectOneRow(res, "delete", id)
}

// ListRows returns live rows ordered by id.
func (e *Engine) ListRows(ctx context.Context, offset, limit int) ([]repo.Row, error) {
	s := e.schema
	if limit <= 0 {
		limit = -1
	}
	where := "1 = 1" + e.liveClause()
	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s ORDER BY %s LIMIT ? OFFSET ?", s.IDColumn(), s.DataColumn(), s.Table(), where, s.IDColumn())
	rows, err := e.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Table(), err)
	}
	defer func() { _ = rows.Close() }()

	var out []repo.Row
	for rows.Next() {
		var row repo.Row
		if err := rows.Scan(&row.ID, &row.Data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.Table(), err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.Table(), err)
	}
	return out, nil
}

func (e *Engine) expectOneRow(res sql.Result, op, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %s rows affected: %w", op, e.schema.Table(), err)
	}
	if n == 0 {
		return fmt.Errorf("%s matched no row for %q: %w", op, id, repo.ErrNoRow)
	}
	if n != 1 {
		return fmt.Errorf("%s affected %d rows for %q", op, n, id)
	}
	return nil
}
