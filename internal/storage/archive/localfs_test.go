// internal/storage/archive/localfs_test.go
package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalFS_ImplementsStorage(t *testing.T) {
	var _ Storage = (*LocalFS)(nil)
}

func TestLocalFS_PutGet(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}
	ctx := context.Background()
	doc := []byte(`{"strategy":"momentum"}`)

	if err := fs.Put(ctx, "reports/momentum/AAPL/a.json", doc); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := fs.Get(ctx, "reports/momentum/AAPL/a.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(doc) {
		t.Errorf("got %q, want %q", got, doc)
	}
}

func TestLocalFS_PutOverwrites(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Put(ctx, "reports/a.json", []byte("v1"))
	fs.Put(ctx, "reports/a.json", []byte("v2"))

	got, err := fs.Get(ctx, "reports/a.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v2" {
		t.Errorf("got %q, want latest version", got)
	}
}

func TestLocalFS_PutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewLocalFS(dir)

	fs.Put(context.Background(), "reports/a.json", []byte("data"))

	entries, err := os.ReadDir(filepath.Join(dir, "reports"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "a.json" {
		t.Errorf("unexpected directory contents: %v", entries)
	}
}

func TestLocalFS_List(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Put(ctx, "reports/momentum/AAPL/a.json", []byte("a"))
	fs.Put(ctx, "reports/momentum/AAPL/b.json", []byte("b"))
	fs.Put(ctx, "reports/momentum/MSFT/c.json", []byte("c"))

	keys, err := fs.List(ctx, "reports/momentum/AAPL")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", len(keys), keys)
	}
	for _, k := range keys {
		if k != "reports/momentum/AAPL/a.json" && k != "reports/momentum/AAPL/b.json" {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestLocalFS_ListMissingPrefix(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	keys, err := fs.List(context.Background(), "reports/unknown")
	if err != nil {
		t.Fatalf("missing prefix must not error: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expected no keys, got %v", keys)
	}
}
