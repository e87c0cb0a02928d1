package notifier

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/newthinker/tradewind/internal/core"
)

// Registry manages notifier plugins and fans signals out to all of them.
type Registry struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	logger    *zap.Logger
}

// NewRegistry creates an empty registry. The logger defaults to a nop logger.
func NewRegistry(logger ...*zap.Logger) *Registry {
	log := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	}
	return &Registry{
		notifiers: make(map[string]Notifier),
		logger:    log,
	}
}

// Register adds a notifier to the registry.
func (r *Registry) Register(n Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifiers[n.Name()] = n
}

// Get retrieves a notifier by name.
func (r *Registry) Get(name string) (Notifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.notifiers[name]
	return n, ok
}

// Notify delivers the signal to every registered notifier. Delivery failures
// are logged, never propagated; notification is best-effort.
func (r *Registry) Notify(ctx context.Context, signal core.Signal) {
	r.mu.RLock()
	targets := make([]Notifier, 0, len(r.notifiers))
	for _, n := range r.notifiers {
		targets = append(targets, n)
	}
	r.mu.RUnlock()

	for _, n := range targets {
		if err := n.Send(ctx, signal); err != nil {
			r.logger.Warn("notification failed",
				zap.String("notifier", n.Name()),
				zap.String("symbol", signal.Symbol),
				zap.Error(err))
		}
	}
}
