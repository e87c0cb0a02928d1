// internal/storage/archive/interface.go
package archive

import "context"

// Storage is the cold archive backend for report documents. Keys are
// slash-separated and relative; documents are written whole. Backends only
// need the three operations the archiver performs.
type Storage interface {
	// Put stores a JSON document at the given key, overwriting any
	// previous version.
	Put(ctx context.Context, key string, data []byte) error

	// Get retrieves the document stored at the key.
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns the keys under the prefix, relative to the backend root.
	List(ctx context.Context, prefix string) ([]string, error)
}
