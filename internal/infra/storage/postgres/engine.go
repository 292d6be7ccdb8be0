// Package postgres provides a storage engine over PostgreSQL, one table per
// schema with the serialized payload in a JSONB column.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tcat-tamu/trc-sub000/pkg/repo"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const defaultDSN = "postgres://localhost/trc?sslmode=disable"

// Engine persists rows in a single Postgres table shaped by the schema.
type Engine struct {
	schema *repo.Schema
	db     *sql.DB
}

var _ repo.Engine = (*Engine)(nil)

// Open connects using the DSN (falling back to a local default), verifies
// connectivity, and ensures the schema's table exists.
func Open(ctx context.Context, dsn string, schema *repo.Schema) (*Engine, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return Wrap(ctx, db, schema)
}

// Wrap builds an engine over an already-open database handle.
func Wrap(ctx context.Context, db *sql.DB, schema *repo.Schema) (*Engine, error) {
	engine := &Engine{schema: schema, db: db}
	if err := engine.ensureTable(ctx); err != nil {
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
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s TEXT PRIMARY KEY, %s JSONB NOT NULL", s.Table(), s.IDColumn(), s.DataColumn())
	if col, ok := s.RemovedColumn(); ok {
		ddl += fmt.Sprintf(", %s BOOLEAN NOT NULL DEFAULT FALSE", col)
	}
	if col, ok := s.CreatedColumn(); ok {
		ddl += fmt.Sprintf(", %s TIMESTAMPTZ", col)
	}
	if col, ok := s.ModifiedColumn(); ok {
		ddl += fmt.Sprintf(", %s TIMESTAMPTZ", col)
	}
	ddl += ")"
	if _, err := e.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", s.Table(), err)
	}
	return nil
}

func (e *Engine) liveClause() string {
	if col, ok := e.schema.RemovedColumn(); ok {
		return fmt.Sprintf(" AND NOT %s", col)
	}
	return ""
}

// LoadRow returns the live row for id, or repo.ErrNoRow.
func (e *Engine) LoadRow(ctx context.Context, id string) (repo.Row, error) {
	s := e.schema
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1%s", s.DataColumn(), s.Table(), s.IDColumn(), e.liveClause())
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

// InsertRow stores a new row.
func (e *Engine) InsertRow(ctx context.Context, row repo.Row) error {
	s := e.schema
	cols := fmt.Sprintf("%s, %s", s.IDColumn(), s.DataColumn())
	args := []any{row.ID, row.Data}
	params := "$1, $2"
	if col, ok := s.CreatedColumn(); ok {
		cols += ", " + col
		params += fmt.Sprintf(", $%d", len(args)+1)
		args = append(args, row.Created)
	}
	if col, ok := s.ModifiedColumn(); ok {
		cols += ", " + col
		params += fmt.Sprintf(", $%d", len(args)+1)
		args = append(args, row.Modified)
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
	set := fmt.Sprintf("%s = $1", s.DataColumn())
	args := []any{row.Data}
	if col, ok := s.ModifiedColumn(); ok {
		set += fmt.Sprintf(", %s = $%d", col, len(args)+1)
		args = append(args, row.Modified)
	}
	args = append(args, row.ID)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d%s", s.Table(), set, s.IDColumn(), len(args), e.liveClause())
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
	set := fmt.Sprintf("%s = TRUE", col)
	args := []any{}
	if mod, ok := s.ModifiedColumn(); ok {
		set += fmt.Sprintf(", %s = $1", mod)
		args = append(args, at)
	}
	args = append(args, id)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d AND NOT %s", s.Table(), set, s.IDColumn(), len(args), col)
	res, err := e.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark removed %s: %w", s.Table(), err)
	}
	return e.expectOneRow(res, "mark removed", id)
}

// DeleteRow drops the row entirely.
func (e *Engine) DeleteRow(ctx context.Context, id string) error {
	s := e.schema
	stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", s.Table(), s.IDColumn())
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
		limit = 1000
	}
	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE TRUE%s ORDER BY %s LIMIT $1 OFFSET $2", s.IDColumn(), s.DataColumn(), s.Table(), e.liveClause(), s.IDColumn())
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
