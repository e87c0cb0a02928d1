package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/newthinker/tradewind/internal/core"
)

// DefaultCapacity bounds the in-memory history per record kind.
const DefaultCapacity = 10000

// Memory is an in-memory Store. Oldest records are evicted once the capacity
// is reached; the fingerprint index survives eviction.
type Memory struct {
	mu           sync.RWMutex
	signals      []core.Signal
	trades       []Trade
	fingerprints map[string]string
	capacity     int
}

// NewMemory creates an in-memory store holding at most capacity records of
// each kind.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Memory{
		fingerprints: make(map[string]string),
		capacity:     capacity,
	}
}

func key(strategy, symbol string) string {
	return strategy + "|" + symbol
}

// LastFingerprint returns the most recent fingerprint for the key.
func (m *Memory) LastFingerprint(ctx context.Context, strategy, symbol string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.fingerprints[key(strategy, symbol)], nil
}

// SaveSignal persists the signal, assigns an ID, and advances the
// fingerprint index for its key.
func (m *Memory) SaveSignal(ctx context.Context, signal *core.Signal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	signal.ID = uuid.NewString()
	if signal.GeneratedAt.IsZero() {
		signal.GeneratedAt = time.Now()
	}
	m.signals = append(m.signals, *signal)
	if len(m.signals) > m.capacity {
		m.signals = m.signals[len(m.signals)-m.capacity:]
	}
	if signal.Fingerprint != "" {
		m.fingerprints[key(signal.Strategy, signal.Symbol)] = signal.Fingerprint
	}
	return nil
}

// UpdateSignalResult records the order outcome against a saved signal.
func (m *Memory) UpdateSignalResult(ctx context.Context, id string, executed bool, result string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.signals {
		if m.signals[i].ID == id {
			m.signals[i].Executed = executed
			m.signals[i].Result = result
			return nil
		}
	}
	return core.WrapError(core.ErrStoreFailed, fmt.Errorf("signal %s not found", id))
}

// SaveTrade persists the trade and assigns an ID.
func (m *Memory) SaveTrade(ctx context.Context, trade *Trade) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	trade.ID = uuid.NewString()
	if trade.SavedAt.IsZero() {
		trade.SavedAt = time.Now()
	}
	m.trades = append(m.trades, *trade)
	if len(m.trades) > m.capacity {
		m.trades = m.trades[len(m.trades)-m.capacity:]
	}
	return nil
}

// ListSignals returns matching signals oldest first.
func (m *Memory) ListSignals(ctx context.Context, filter SignalFilter) ([]core.Signal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []core.Signal
	for _, sig := range m.signals {
		if matchesSignal(sig, filter) {
			result = append(result, sig)
		}
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// ListTrades returns matching trades oldest first.
func (m *Memory) ListTrades(ctx context.Context, filter TradeFilter) ([]Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []Trade
	for _, trade := range m.trades {
		if matchesTrade(trade, filter) {
			result = append(result, trade)
		}
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func matchesSignal(sig core.Signal, filter SignalFilter) bool {
	if filter.Strategy != "" && sig.Strategy != filter.Strategy {
		return false
	}
	if filter.Symbol != "" && sig.Symbol != filter.Symbol {
		return false
	}
	if filter.Action != "" && sig.Action != filter.Action {
		return false
	}
	if !filter.From.IsZero() && sig.GeneratedAt.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && sig.GeneratedAt.After(filter.To) {
		return false
	}
	return true
}

func matchesTrade(trade Trade, filter TradeFilter) bool {
	if filter.Strategy != "" && trade.Strategy != filter.Strategy {
		return false
	}
	if filter.Symbol != "" && trade.Symbol != filter.Symbol {
		return false
	}
	if !filter.From.IsZero() && trade.Event.Time.Before(filter.From) {
		return false
	}
	if !filter.To.IsZero() && trade.Event.Time.After(filter.To) {
		return false
	}
	return true
}
