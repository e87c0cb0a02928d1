package strategy

import (
	"fmt"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

// SizingMode determines how a strategy's trade amount is interpreted.
type SizingMode string

const (
	// SizingQuantity treats TradeAmount as a fixed dollar amount converted
	// to a share quantity at order time.
	SizingQuantity SizingMode = "quantity"
	// SizingNotional submits the dollar amount itself.
	SizingNotional SizingMode = "notional"
	// SizingPercent sizes the order as a percentage of account cash.
	SizingPercent SizingMode = "percent_of_balance"
)

// AutomationMode controls how far the live driver takes a confirmed signal.
type AutomationMode string

const (
	// ModeManual records signals only.
	ModeManual AutomationMode = "Manual"
	// ModeNotifyOnly records signals and notifies.
	ModeNotifyOnly AutomationMode = "NotifyOnly"
	// ModeSemiAuto prepares a sizing-validated order but does not submit it.
	ModeSemiAuto AutomationMode = "SemiAuto"
	// ModeFullAuto submits validated orders to the broker.
	ModeFullAuto AutomationMode = "FullAuto"
)

// OrderType mirrors the broker order types a strategy may request.
type OrderType string

const (
	OrderMarket OrderType = "market"
	OrderLimit  OrderType = "limit"
)

// DefaultMinConfidence gates predictor-based signals.
const DefaultMinConfidence = 0.4

// Config is a complete strategy configuration. It is created and updated by
// the management layer and read-only to the execution core during a pass.
type Config struct {
	Name    string   `mapstructure:"name"`
	Symbols []string `mapstructure:"symbols"`
	Enabled bool     `mapstructure:"enabled"`

	// Rule-based classification. Ignored when Predictor is set.
	BuyRules  RuleSet `mapstructure:"buy_rules"`
	SellRules RuleSet `mapstructure:"sell_rules"`

	// Predictor names an external model collaborator instead of rules.
	Predictor     string  `mapstructure:"predictor"`
	MinConfidence float64 `mapstructure:"min_confidence"`

	// ConfirmationWindow is the number of consecutive agreeing bars required
	// before a directional signal is acted on. Minimum 1.
	ConfirmationWindow int `mapstructure:"confirmation_window"`

	// Sizing and risk policy.
	SizingMode    SizingMode `mapstructure:"sizing_mode"`
	TradeAmount   float64    `mapstructure:"trade_amount"`
	StopLoss      float64    `mapstructure:"stop_loss"`   // 0 disables
	TakeProfit    float64    `mapstructure:"take_profit"` // 0 disables
	SLTPIsPercent bool       `mapstructure:"sl_tp_is_percent"`
	CooldownBars  int        `mapstructure:"cooldown_bars"`
	OrderType     OrderType  `mapstructure:"order_type"`

	// Live automation.
	AutomationMode AutomationMode `mapstructure:"automation_mode"`
	CheckInterval  time.Duration  `mapstructure:"check_interval"`
	Interval       string         `mapstructure:"interval"`    // bar timeframe
	WindowBars     int            `mapstructure:"window_bars"` // recent window fetched per tick
}

// UsesPredictor reports whether classification delegates to a model.
func (c *Config) UsesPredictor() bool {
	return c.Predictor != ""
}

// HasBracket reports whether the strategy attaches stop-loss or take-profit.
func (c *Config) HasBracket() bool {
	return c.StopLoss > 0 || c.TakeProfit > 0
}

// Confirmation returns the confirmation window, never below 1.
func (c *Config) Confirmation() int {
	if c.ConfirmationWindow < 1 {
		return 1
	}
	return c.ConfirmationWindow
}

// Gate returns the predictor confidence gate, defaulting when unset.
func (c *Config) Gate() float64 {
	if c.MinConfidence <= 0 {
		return DefaultMinConfidence
	}
	return c.MinConfidence
}

// Window returns the bounded recent bar window fetched per live tick.
func (c *Config) Window() int {
	if c.WindowBars <= 0 {
		return 60
	}
	return c.WindowBars
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Name == "" {
		return core.WrapError(core.ErrConfigMissing, fmt.Errorf("strategy name required"))
	}
	if !c.UsesPredictor() && c.BuyRules.Empty() && c.SellRules.Empty() {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("strategy %q needs rules or a predictor", c.Name))
	}
	if err := c.BuyRules.Validate(); err != nil {
		return fmt.Errorf("buy rules: %w", err)
	}
	if err := c.SellRules.Validate(); err != nil {
		return fmt.Errorf("sell rules: %w", err)
	}
	switch c.SizingMode {
	case SizingQuantity, SizingNotional, SizingPercent:
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unsupported sizing mode %q", c.SizingMode))
	}
	if c.TradeAmount <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("trade_amount must be positive, got %v", c.TradeAmount))
	}
	if c.StopLoss < 0 || c.TakeProfit < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("stop_loss/take_profit cannot be negative"))
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_confidence must be between 0 and 1, got %v", c.MinConfidence))
	}
	switch c.AutomationMode {
	case "", ModeManual, ModeNotifyOnly, ModeSemiAuto, ModeFullAuto:
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unsupported automation mode %q", c.AutomationMode))
	}
	return nil
}
