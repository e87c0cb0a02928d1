// Package engine runs a strategy over an ordered bar series. Replay and the
// live driver share the same evaluation path so both produce identical
// decisions for identical input.
package engine

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/newthinker/tradewind/internal/classifier"
	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/equity"
	"github.com/newthinker/tradewind/internal/position"
	"github.com/newthinker/tradewind/internal/predictor"
	"github.com/newthinker/tradewind/internal/strategy"
)

// Result is the outcome of evaluating a strategy over a bar series.
type Result struct {
	Events        []core.TradeEvent  `json:"events"`
	Curve         []core.EquityPoint `json:"curve"`
	FinalPosition position.State     `json:"final_position"`
	Metrics       equity.Metrics     `json:"metrics"`
}

// Engine evaluates strategies over bar series.
type Engine struct {
	predictors map[string]predictor.Predictor
	logger     *zap.Logger
}

// New creates an engine. Predictors are looked up by the name a strategy
// references; a strategy without a predictor runs rule-based.
func New(predictors map[string]predictor.Predictor, logger ...*zap.Logger) *Engine {
	log := zap.NewNop()
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	}
	return &Engine{predictors: predictors, logger: log}
}

// Evaluate replays the strategy over the bars, strictly in timestamp order,
// single-threaded. An empty series yields an empty result, not an error.
func (e *Engine) Evaluate(ctx context.Context, cfg *strategy.Config, bars []core.Bar) (*Result, error) {
	c, err := classifier.ForStrategy(cfg, e.predictors[cfg.Predictor])
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		e.logger.Debug("no bars to evaluate, skipping", zap.String("strategy", cfg.Name))
		return &Result{FinalPosition: position.StateFlat}, nil
	}

	ordered := make([]core.Bar, len(bars))
	copy(ordered, bars)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Time.Before(ordered[j].Time)
	})

	machine := position.New(cfg)
	acc := equity.NewAccumulator(false)
	window := cfg.Window()

	result := &Result{}
	for i, bar := range ordered {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := i + 1 - window
		if start < 0 {
			start = 0
		}
		action, confidence, err := c.Classify(ctx, ordered[start:i+1])
		if err != nil {
			// A failed classification is a hold, never a trade.
			e.logger.Warn("classification failed, holding",
				zap.String("strategy", cfg.Name),
				zap.Time("bar", bar.Time),
				zap.Error(err))
			action = core.ActionHold
		}

		events := machine.Step(bar, action)
		acc.Fold(bar, machine, events)
		result.Events = append(result.Events, events...)

		for _, ev := range events {
			e.logger.Debug("trade event",
				zap.String("strategy", cfg.Name),
				zap.String("action", string(ev.Action)),
				zap.String("side", string(ev.Side)),
				zap.Float64("price", ev.Price),
				zap.Float64("pnl_pct", ev.PnLPct),
				zap.Float64("confidence", confidence),
				zap.String("reason", string(ev.Reason)))
		}
	}

	result.Curve = acc.Curve()
	result.FinalPosition = machine.State()
	result.Metrics = equity.ComputeMetrics(result.Events, result.Curve)
	return result, nil
}
