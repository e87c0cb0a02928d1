// Package position owns the flat/long/short state machine that turns
// classified signals into trade events with realized PnL.
package position

import (
	"time"

	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/strategy"
)

// State is the current position state.
type State string

const (
	StateFlat  State = "flat"
	StateLong  State = "long"
	StateShort State = "short"
)

// Side maps a non-flat state to its trade side.
func (s State) Side() core.Side {
	if s == StateShort {
		return core.SideShort
	}
	return core.SideLong
}

// Machine holds exactly one position per (strategy, instrument) pair.
// Transitions: Flat→Long, Flat→Short, Long→Flat, Short→Flat. A direct flip
// is modeled as close-then-open across two bars, never within one.
type Machine struct {
	state      State
	entryPrice float64
	entryTime  time.Time

	stopLoss      float64
	takeProfit    float64
	slTpIsPercent bool
	cooldownBars  int
	cooldown      int
}

// New creates a machine in the Flat state with the strategy's risk policy.
func New(cfg *strategy.Config) *Machine {
	return &Machine{
		state:         StateFlat,
		stopLoss:      cfg.StopLoss,
		takeProfit:    cfg.TakeProfit,
		slTpIsPercent: cfg.SLTPIsPercent,
		cooldownBars:  cfg.CooldownBars,
	}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// EntryPrice returns the open position's entry price (0 when flat).
func (m *Machine) EntryPrice() float64 {
	return m.entryPrice
}

// EntryTime returns the open position's entry time (zero when flat).
func (m *Machine) EntryTime() time.Time {
	return m.entryTime
}

// Seed overrides local state with an externally reported position. The live
// driver uses this to treat the broker's position as ground truth.
func (m *Machine) Seed(state State, entryPrice float64, entryTime time.Time) {
	m.state = state
	m.entryPrice = entryPrice
	m.entryTime = entryTime
	if state == StateFlat {
		m.entryPrice = 0
		m.entryTime = time.Time{}
	}
}

// Step processes one bar in the fixed order the state machine requires:
// stop-loss/take-profit exits, then opposite-signal exits, then entries.
// A bar that closes a position never also opens one.
func (m *Machine) Step(bar core.Bar, action core.Action) []core.TradeEvent {
	if m.state != StateFlat {
		if ev, triggered := m.checkStops(bar); triggered {
			m.flatten()
			return []core.TradeEvent{ev}
		}

		if m.isOpposite(action) {
			ev := core.TradeEvent{
				Action: core.EventClose,
				Side:   m.state.Side(),
				Price:  bar.Close,
				Time:   bar.Time,
				PnLPct: m.realized(bar.Close),
				Reason: core.ReasonOppositeSignal,
			}
			m.flatten()
			return []core.TradeEvent{ev}
		}
		return nil
	}

	// Flat: honor the post-exit cooldown before considering entries.
	if m.cooldown > 0 {
		m.cooldown--
		return nil
	}

	var side core.Side
	switch action {
	case core.ActionBuy:
		side = core.SideLong
		m.state = StateLong
	case core.ActionSell:
		side = core.SideShort
		m.state = StateShort
	default:
		return nil
	}

	m.entryPrice = bar.Close
	m.entryTime = bar.Time
	return []core.TradeEvent{{
		Action: core.EventOpen,
		Side:   side,
		Price:  bar.Close,
		Time:   bar.Time,
		PnLPct: 0,
		Reason: core.ReasonSignalEntry,
	}}
}

// isOpposite reports whether the action trades against the open position.
func (m *Machine) isOpposite(action core.Action) bool {
	return (m.state == StateLong && action == core.ActionSell) ||
		(m.state == StateShort && action == core.ActionBuy)
}

// UnrealizedPct returns the open position's mark-to-market PnL percentage
// at the given price, 0 when flat.
func (m *Machine) UnrealizedPct(price float64) float64 {
	if m.state == StateFlat || m.entryPrice == 0 {
		return 0
	}
	return m.realized(price)
}

// checkStops evaluates stop-loss and take-profit thresholds against the bar
// close. Take-profit wins when both are crossed on the same bar.
func (m *Machine) checkStops(bar core.Bar) (core.TradeEvent, bool) {
	slHit := m.stopLoss > 0 && m.crossed(bar.Close, m.stopLoss, false)
	tpHit := m.takeProfit > 0 && m.crossed(bar.Close, m.takeProfit, true)

	if !slHit && !tpHit {
		return core.TradeEvent{}, false
	}

	reason := core.ReasonStopLoss
	if tpHit {
		reason = core.ReasonTakeProfit
	}
	return core.TradeEvent{
		Action: core.EventClose,
		Side:   m.state.Side(),
		Price:  bar.Close,
		Time:   bar.Time,
		PnLPct: m.realized(bar.Close),
		Reason: reason,
	}, true
}

// crossed reports whether price has reached the profit or loss threshold
// computed from the entry price and the percent-or-absolute policy.
func (m *Machine) crossed(price, value float64, profit bool) bool {
	var threshold float64
	long := m.state == StateLong

	// For longs the profit threshold sits above entry and the loss threshold
	// below; shorts mirror both.
	up := profit == long
	if m.slTpIsPercent {
		if up {
			threshold = m.entryPrice * (1 + value/100)
		} else {
			threshold = m.entryPrice * (1 - value/100)
		}
	} else {
		if up {
			threshold = m.entryPrice + value
		} else {
			threshold = m.entryPrice - value
		}
	}

	if up {
		return price >= threshold
	}
	return price <= threshold
}

// realized computes the percentage PnL of closing at price.
func (m *Machine) realized(price float64) float64 {
	if m.state == StateShort {
		return (m.entryPrice - price) / m.entryPrice * 100
	}
	return (price - m.entryPrice) / m.entryPrice * 100
}

func (m *Machine) flatten() {
	m.state = StateFlat
	m.entryPrice = 0
	m.entryTime = time.Time{}
	m.cooldown = m.cooldownBars
}
