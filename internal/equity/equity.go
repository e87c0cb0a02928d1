// Package equity accumulates the realized equity curve of a strategy run and
// derives its performance metrics.
package equity

import (
	"math"

	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/position"
)

// tradingDaysPerYear annualizes the Sharpe ratio.
const tradingDaysPerYear = 252

// Accumulator folds per-bar trade events into a cumulative PnL curve.
// The canonical curve moves only on realized closes; mark-to-market is an
// opt-in display mode and never feeds the metrics.
type Accumulator struct {
	cumulative   float64
	markToMarket bool
	curve        []core.EquityPoint
}

// NewAccumulator creates an empty accumulator. With markToMarket the reported
// points include the open position's unrealized PnL.
func NewAccumulator(markToMarket bool) *Accumulator {
	return &Accumulator{markToMarket: markToMarket}
}

// Fold applies one bar's trade events and appends the resulting point.
func (a *Accumulator) Fold(bar core.Bar, machine *position.Machine, events []core.TradeEvent) core.EquityPoint {
	for _, ev := range events {
		if ev.IsClose() {
			a.cumulative += ev.PnLPct
		}
	}

	value := a.cumulative
	if a.markToMarket {
		value += machine.UnrealizedPct(bar.Close)
	}

	point := core.EquityPoint{Time: bar.Time, PnLPct: value}
	a.curve = append(a.curve, point)
	return point
}

// Cumulative returns the realized PnL accumulated so far.
func (a *Accumulator) Cumulative() float64 {
	return a.cumulative
}

// Curve returns the accumulated equity curve.
func (a *Accumulator) Curve() []core.EquityPoint {
	return a.curve
}

// Metrics summarizes a completed run.
type Metrics struct {
	TotalPnL    float64 `json:"total_pnl"`
	WinRate     float64 `json:"win_rate"`
	AveragePnL  float64 `json:"average_pnl"`
	MaxDrawdown float64 `json:"max_drawdown"`
	SharpeRatio float64 `json:"sharpe_ratio"`
	TradeCount  int     `json:"trade_count"`
}

// ComputeMetrics derives the run metrics from its trade events and equity
// curve. Degenerate inputs (no closed trades, flat variance, empty curve)
// yield zeros rather than NaN.
func ComputeMetrics(events []core.TradeEvent, curve []core.EquityPoint) Metrics {
	var pnls []float64
	wins := 0
	for _, ev := range events {
		if !ev.IsClose() {
			continue
		}
		pnls = append(pnls, ev.PnLPct)
		if ev.IsWin() {
			wins++
		}
	}

	var m Metrics
	m.TradeCount = len(pnls)
	m.MaxDrawdown = maxDrawdown(curve)
	if len(pnls) == 0 {
		return m
	}

	for _, p := range pnls {
		m.TotalPnL += p
	}
	m.AveragePnL = m.TotalPnL / float64(len(pnls))
	m.WinRate = float64(wins) / float64(len(pnls)) * 100
	m.SharpeRatio = sharpe(pnls, m.AveragePnL)
	return m
}

// maxDrawdown is the largest peak-to-trough fall over the curve, 0 for an
// empty or non-decreasing curve.
func maxDrawdown(curve []core.EquityPoint) float64 {
	var peak, worst float64
	peak = math.Inf(-1)
	for _, point := range curve {
		if point.PnLPct > peak {
			peak = point.PnLPct
		}
		if dd := peak - point.PnLPct; dd > worst {
			worst = dd
		}
	}
	return worst
}

// sharpe annualizes mean/stddev of per-trade returns, 0 when fewer than two
// trades or the sample deviation is 0.
func sharpe(pnls []float64, mean float64) float64 {
	if len(pnls) < 2 {
		return 0
	}
	var sum float64
	for _, p := range pnls {
		d := p - mean
		sum += d * d
	}
	std := math.Sqrt(sum / float64(len(pnls)-1))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(tradingDaysPerYear)
}
