// Package store persists signals and trades and answers the fingerprint
// lookups the live driver deduplicates against.
package store

import (
	"context"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

// Trade is a persisted trade event attributed to a strategy and symbol.
type Trade struct {
	ID       string          `json:"id"`
	Strategy string          `json:"strategy"`
	Symbol   string          `json:"symbol"`
	Event    core.TradeEvent `json:"event"`
	SavedAt  time.Time       `json:"saved_at"`
}

// SignalFilter selects signals for listing.
type SignalFilter struct {
	Strategy string
	Symbol   string
	Action   core.Action
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

// TradeFilter selects trades for listing.
type TradeFilter struct {
	Strategy string
	Symbol   string
	From     time.Time
	To       time.Time
	Limit    int
}

// Store is the persistence collaborator of the execution core.
type Store interface {
	// LastFingerprint returns the fingerprint of the most recent signal for
	// the (strategy, symbol) key, or "" when none exists.
	LastFingerprint(ctx context.Context, strategy, symbol string) (string, error)

	// SaveSignal persists a signal and assigns its ID.
	SaveSignal(ctx context.Context, signal *core.Signal) error

	// UpdateSignalResult records the order outcome against a saved signal.
	UpdateSignalResult(ctx context.Context, id string, executed bool, result string) error

	// SaveTrade persists a trade and assigns its ID.
	SaveTrade(ctx context.Context, trade *Trade) error

	// ListSignals retrieves signals matching the filter, oldest first.
	ListSignals(ctx context.Context, filter SignalFilter) ([]core.Signal, error)

	// ListTrades retrieves trades matching the filter, oldest first.
	ListTrades(ctx context.Context, filter TradeFilter) ([]Trade, error)
}
