// Package marketdata supplies ordered bar series to the execution core.
// Providers adapt external data sources; the cache decorator bounds how
// often a source is hit.
package marketdata

import (
	"context"
	"sync"

	"github.com/newthinker/tradewind/internal/core"
)

// Provider fetches recent bars for an instrument, oldest first.
type Provider interface {
	Name() string

	// FetchBars returns up to limit bars for the symbol at the given
	// interval, ordered by timestamp ascending.
	FetchBars(ctx context.Context, symbol, interval string, limit int) ([]core.Bar, error)
}

// Registry manages provider plugins.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}
