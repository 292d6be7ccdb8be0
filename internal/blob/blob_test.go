package blob

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fsStore,
	}
}

func put(t *testing.T, s Store, key, content string) Info {
	t.Helper()
	info, err := s.Put(context.Background(), key, strings.NewReader(content), PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"origin": "test"},
	})
	if err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
	return info
}

func TestStorePutGetRoundTrip(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			info := put(t, store, "versions/w1/000000000001.json", `{"v":1}`)
			if info.Size != int64(len(`{"v":1}`)) {
				t.Fatalf("unexpected size %d", info.Size)
			}

			got, body, err := store.Get(context.Background(), "versions/w1/000000000001.json")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			defer body.Close()
			raw, err := io.ReadAll(body)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(raw) != `{"v":1}` {
				t.Fatalf("content mismatch: %s", raw)
			}
			if got.ContentType != "application/json" {
				t.Fatalf("content type lost: %+v", got)
			}
			if got.Metadata["origin"] != "test" {
				t.Fatalf("metadata lost: %+v", got.Metadata)
			}
		})
	}
}

func TestStoreKeysAreWriteOnce(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			put(t, store, "k", "first")
			if _, err := store.Put(context.Background(), "k", strings.NewReader("second"), PutOptions{}); err == nil {
				t.Fatal("expected overwrite to fail")
			}
			_, body, err := store.Get(context.Background(), "k")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			defer body.Close()
			raw, _ := io.ReadAll(body)
			if string(raw) != "first" {
				t.Fatalf("original content clobbered: %s", raw)
			}
		})
	}
}

func TestStoreGetMissing(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, _, err := store.Get(context.Background(), "absent"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestStoreDelete(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			put(t, store, "k", "content")
			ok, err := store.Delete(context.Background(), "k")
			if err != nil || !ok {
				t.Fatalf("delete: %v %v", ok, err)
			}
			if _, _, err := store.Get(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("deleted key still readable: %v", err)
			}
			ok, err = store.Delete(context.Background(), "k")
			if err != nil || ok {
				t.Fatalf("second delete should be a no-op: %v %v", ok, err)
			}
		})
	}
}

func TestStoreListByPrefix(t *testing.T) {
	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			put(t, store, "versions/w1/a.json", "{}")
			put(t, store, "versions/w1/b.json", "{}")
			put(t, store, "versions/w2/c.json", "{}")

			infos, err := store.List(context.Background(), "versions/w1/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			keys := make([]string, 0, len(infos))
			for _, info := range infos {
				keys = append(keys, info.Key)
			}
			sort.Strings(keys)
			want := []string{"versions/w1/a.json", "versions/w1/b.json"}
			if len(keys) != len(want) || keys[0] != want[0] || keys[1] != want[1] {
				t.Fatalf("unexpected keys %v", keys)
			}
		})
	}
}

func TestFSStoreRejectsTraversalKeys(t *testing.T) {
	store, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	for _, key := range []string{"", "/abs", "../escape", "a/../../b"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("expected key %q to be rejected", key)
		}
	}
}
