package core

import "time"

// Action represents a classified trading decision for one bar
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Side represents the direction of an open position or trade
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// EventAction distinguishes position opens from closes
type EventAction string

const (
	EventOpen  EventAction = "open"
	EventClose EventAction = "close"
)

// CloseReason explains why a trade event was emitted
type CloseReason string

const (
	ReasonSignalEntry    CloseReason = "signal_entry"
	ReasonOppositeSignal CloseReason = "opposite_signal"
	ReasonStopLoss       CloseReason = "stop_loss"
	ReasonTakeProfit     CloseReason = "take_profit"
)

// Bar is one OHLCV sample enriched with indicator values.
// Bars are immutable once produced and strictly increasing in time.
type Bar struct {
	Symbol     string
	Interval   string // "1m", "5m", "1h", "1d"
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     int64
	Time       time.Time
	Indicators map[string]float64
}

// Indicator returns the named indicator value and whether it is present.
func (b Bar) Indicator(name string) (float64, bool) {
	v, ok := b.Indicators[name]
	return v, ok
}

// IsValid checks if the bar has required fields.
func (b Bar) IsValid() bool {
	return b.Symbol != "" && b.Close > 0 && !b.Time.IsZero()
}

// TradeEvent is an append-only record emitted by the position state machine.
// PnLPct is 0 for opens and the realized percentage return for closes.
type TradeEvent struct {
	Action EventAction
	Side   Side
	Price  float64
	Time   time.Time
	PnLPct float64
	Reason CloseReason
}

// IsClose returns true if the event closed a position.
func (e TradeEvent) IsClose() bool {
	return e.Action == EventClose
}

// IsWin returns true for a close with positive realized PnL.
func (e TradeEvent) IsWin() bool {
	return e.Action == EventClose && e.PnLPct > 0
}

// EquityPoint is one sample of the cumulative PnL curve, one per evaluated bar.
type EquityPoint struct {
	Time   time.Time
	PnLPct float64
}

// Signal is a persisted evaluation decision for one (strategy, symbol, bar).
type Signal struct {
	ID          string
	Strategy    string
	Symbol      string
	Action      Action
	Price       float64
	Confidence  float64
	Fingerprint string
	Executed    bool
	Result      string
	GeneratedAt time.Time
}
