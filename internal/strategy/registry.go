package strategy

import (
	"sync"

	"go.uber.org/zap"
)

// Registry holds the strategy configurations known to the process.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]*Config
	logger     *zap.Logger
}

// NewRegistry creates a new strategy registry
func NewRegistry(logger ...*zap.Logger) *Registry {
	var l *zap.Logger
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0]
	} else {
		l = zap.NewNop()
	}
	return &Registry{
		strategies: make(map[string]*Config),
		logger:     l,
	}
}

// Register adds a strategy after validation.
func (r *Registry) Register(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[cfg.Name] = cfg
	r.logger.Debug("strategy registered", zap.String("strategy", cfg.Name))
	return nil
}

// Get retrieves a strategy by name
func (r *Registry) Get(name string) (*Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.strategies[name]
	return cfg, ok
}

// GetAll returns all registered strategies
func (r *Registry) GetAll() []*Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Config, 0, len(r.strategies))
	for _, cfg := range r.strategies {
		result = append(result, cfg)
	}
	return result
}

// Enabled returns the strategies eligible for live evaluation.
func (r *Registry) Enabled() []*Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Config, 0, len(r.strategies))
	for _, cfg := range r.strategies {
		if cfg.Enabled {
			result = append(result, cfg)
		}
	}
	return result
}

// SetEnabled toggles a strategy. Returns false if the name is unknown.
func (r *Registry) SetEnabled(name string, enabled bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.strategies[name]
	if !ok {
		return false
	}
	cfg.Enabled = enabled
	return true
}
