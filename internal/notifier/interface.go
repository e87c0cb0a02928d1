// Package notifier delivers signal notifications to external channels.
package notifier

import (
	"context"

	"github.com/newthinker/tradewind/internal/core"
)

// Config holds notifier configuration.
type Config struct {
	Type   string         `mapstructure:"type"`
	Params map[string]any `mapstructure:"params"`
}

// Notifier delivers signal notifications.
type Notifier interface {
	// Name returns the unique identifier for this notifier.
	Name() string

	// Send delivers a single signal notification.
	Send(ctx context.Context, signal core.Signal) error
}
