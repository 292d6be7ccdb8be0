package storage_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/tcat-tamu/trc-sub000/internal/infra/storage/memory"
	"github.com/tcat-tamu/trc-sub000/internal/infra/storage/sqlite"
	"github.com/tcat-tamu/trc-sub000/pkg/repo"
)

func contractSchema(t *testing.T) *repo.Schema {
	t.Helper()
	schema, err := repo.NewSchemaBuilder("entry", "entries").
		IDColumn("entry_id").
		DataColumn("entry").
		RemovedColumn("removed").
		CreatedColumn("date_created").
		ModifiedColumn("date_modified").
		Build()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	return schema
}

// engineContract runs the row-level behavior every engine must share.
func engineContract(t *testing.T, open func(t *testing.T, schema *repo.Schema) repo.Engine) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("load missing row", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		if _, err := engine.LoadRow(ctx, "nope"); !errors.Is(err, repo.ErrNoRow) {
			t.Fatalf("expected ErrNoRow, got %v", err)
		}
	})

	t.Run("insert then load", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		row := repo.Row{ID: "a", Data: []byte(`{"v":1}`), Created: now, Modified: now}
		if err := engine.InsertRow(ctx, row); err != nil {
			t.Fatalf("insert: %v", err)
		}
		got, err := engine.LoadRow(ctx, "a")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if got.ID != "a" || string(got.Data) != `{"v":1}` {
			t.Fatalf("unexpected row: %+v", got)
		}
	})

	t.Run("duplicate insert fails", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		row := repo.Row{ID: "a", Data: []byte(`{}`), Created: now, Modified: now}
		if err := engine.InsertRow(ctx, row); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := engine.InsertRow(ctx, row); err == nil {
			t.Fatal("expected duplicate insert to fail")
		}
	})

	t.Run("update overwrites payload", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		if err := engine.InsertRow(ctx, repo.Row{ID: "a", Data: []byte(`{"v":1}`), Created: now, Modified: now}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := engine.UpdateRow(ctx, repo.Row{ID: "a", Data: []byte(`{"v":2}`), Modified: now}); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := engine.LoadRow(ctx, "a")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if string(got.Data) != `{"v":2}` {
			t.Fatalf("payload not overwritten: %s", got.Data)
		}
	})

	t.Run("update missing row fails", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		err := engine.UpdateRow(ctx, repo.Row{ID: "ghost", Data: []byte(`{}`), Modified: now})
		if !errors.Is(err, repo.ErrNoRow) {
			t.Fatalf("expected ErrNoRow, got %v", err)
		}
	})

	t.Run("mark removed hides row", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		if err := engine.InsertRow(ctx, repo.Row{ID: "a", Data: []byte(`{}`), Created: now, Modified: now}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := engine.MarkRemoved(ctx, "a", now); err != nil {
			t.Fatalf("mark removed: %v", err)
		}
		if _, err := engine.LoadRow(ctx, "a"); !errors.Is(err, repo.ErrNoRow) {
			t.Fatalf("removed row still loads: %v", err)
		}
		if err := engine.MarkRemoved(ctx, "a", now); !errors.Is(err, repo.ErrNoRow) {
			t.Fatalf("second removal should match nothing, got %v", err)
		}
		rows, err := engine.ListRows(ctx, 0, 10)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(rows) != 0 {
			t.Fatalf("removed row still listed: %+v", rows)
		}
	})

	t.Run("insert reuses removed id", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		if err := engine.InsertRow(ctx, repo.Row{ID: "a", Data: []byte(`{"v":1}`), Created: now, Modified: now}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := engine.MarkRemoved(ctx, "a", now); err != nil {
			t.Fatalf("mark removed: %v", err)
		}
		if err := engine.InsertRow(ctx, repo.Row{ID: "a", Data: []byte(`{"v":2}`), Created: now, Modified: now}); err != nil {
			t.Fatalf("insert over removed id: %v", err)
		}
		got, err := engine.LoadRow(ctx, "a")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if string(got.Data) != `{"v":2}` {
			t.Fatalf("removed row not replaced: %s", got.Data)
		}
		if err := engine.InsertRow(ctx, repo.Row{ID: "a", Data: []byte(`{"v":3}`), Created: now, Modified: now}); err == nil {
			t.Fatal("expected insert over live row to fail")
		}
	})

	t.Run("concurrent updates all land", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		if err := engine.InsertRow(ctx, repo.Row{ID: "a", Data: []byte(`{"v":0}`), Created: now, Modified: now}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		const writers = 8
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			go func(i int) {
				row := repo.Row{ID: "a", Data: []byte(fmt.Sprintf(`{"v":%d}`, i+1)), Modified: now}
				errs <- engine.UpdateRow(ctx, row)
			}(i)
		}
		for i := 0; i < writers; i++ {
			if err := <-errs; err != nil {
				t.Fatalf("concurrent update: %v", err)
			}
		}
		got, err := engine.LoadRow(ctx, "a")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if string(got.Data) == `{"v":0}` {
			t.Fatalf("no update landed: %s", got.Data)
		}
	})

	t.Run("delete drops row", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		if err := engine.InsertRow(ctx, repo.Row{ID: "a", Data: []byte(`{}`), Created: now, Modified: now}); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if err := engine.DeleteRow(ctx, "a"); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := engine.DeleteRow(ctx, "a"); !errors.Is(err, repo.ErrNoRow) {
			t.Fatalf("expected ErrNoRow, got %v", err)
		}
	})

	t.Run("list pages in id order", func(t *testing.T) {
		engine := open(t, contractSchema(t))
		for i := 0; i < 7; i++ {
			row := repo.Row{ID: fmt.Sprintf("id-%02d", i), Data: []byte(`{}`), Created: now, Modified: now}
			if err := engine.InsertRow(ctx, row); err != nil {
				t.Fatalf("insert %d: %v", i, err)
			}
		}
		var ids []string
		for offset := 0; ; offset += 3 {
			rows, err := engine.ListRows(ctx, offset, 3)
			if err != nil {
				t.Fatalf("list offset %d: %v", offset, err)
			}
			if len(rows) == 0 {
				break
			}
			for _, row := range rows {
				ids = append(ids, row.ID)
			}
		}
		if len(ids) != 7 {
			t.Fatalf("expected 7 ids, got %d", len(ids))
		}
		for i, id := range ids {
			if want := fmt.Sprintf("id-%02d", i); id != want {
				t.Fatalf("position %d: got %q want %q", i, id, want)
			}
		}
	})

	t.Run("mark removed without removed column unsupported", func(t *testing.T) {
		schema, err := repo.NewSchemaBuilder("bare", "bare_entries").
			IDColumn("entry_id").
			DataColumn("entry").
			Build()
		if err != nil {
			t.Fatalf("schema: %v", err)
		}
		engine := open(t, schema)
		var uerr repo.UnsupportedError
		if err := engine.MarkRemoved(ctx, "a", now); !errors.As(err, &uerr) {
			t.Fatalf("expected unsupported, got %v", err)
		}
	})
}

func TestMemoryEngineContract(t *testing.T) {
	engineContract(t, func(_ *testing.T, schema *repo.Schema) repo.Engine {
		return memory.New(schema)
	})
}

func TestSQLiteEngineContract(t *testing.T) {
	engineContract(t, func(t *testing.T, schema *repo.Schema) repo.Engine {
		engine, err := sqlite.Open(filepath.Join(t.TempDir(), "contract.db"), schema)
		if err != nil {
			t.Skipf("sqlite unavailable: %v", err)
		}
		t.Cleanup(func() { _ = engine.Close() })
		return engine
	})
}
