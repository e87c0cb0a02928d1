// internal/storage/archive/localfs.go
package archive

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalFS archives reports as files under a base directory. Keys map to
// relative paths below the base.
type LocalFS struct {
	base string
}

// NewLocalFS creates the base directory if needed.
func NewLocalFS(base string) (*LocalFS, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}
	return &LocalFS{base: base}, nil
}

func (l *LocalFS) resolve(key string) string {
	return filepath.Join(l.base, filepath.FromSlash(key))
}

// Put writes the document through a temp file so a crash mid-write never
// leaves a truncated report behind.
func (l *LocalFS) Put(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := l.resolve(key)
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".report-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing report: %w", err)
	}
	return os.Rename(tmp.Name(), target)
}

func (l *LocalFS) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(l.resolve(key))
}

// List walks the prefix directory and returns slash-separated keys. A prefix
// with no archived reports yields an empty list, not an error.
func (l *LocalFS) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var keys []string
	err := filepath.WalkDir(l.resolve(prefix), func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.base, p)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	return keys, err
}
