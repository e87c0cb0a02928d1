// Package classifier turns a bar window into one of {buy, sell, hold}.
// The rule-based and model-based variants share one interface so the replay
// and live drivers run the same code path.
package classifier

import (
	"context"

	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/predictor"
	"github.com/newthinker/tradewind/internal/strategy"
)

// Classifier classifies the most recent bar of a window.
type Classifier interface {
	Classify(ctx context.Context, window []core.Bar) (core.Action, float64, error)
}

// RuleBased evaluates a strategy's buy and sell rule sets on the last bar.
type RuleBased struct {
	buy  strategy.RuleSet
	sell strategy.RuleSet
}

// NewRuleBased creates a rule-based classifier.
func NewRuleBased(buy, sell strategy.RuleSet) *RuleBased {
	return &RuleBased{buy: buy, sell: sell}
}

// Classify returns buy when only the buy rules trigger, sell when only the
// sell rules trigger, and hold otherwise. Both sides triggering at once is a
// hold, not an error.
func (r *RuleBased) Classify(_ context.Context, window []core.Bar) (core.Action, float64, error) {
	if len(window) == 0 {
		return core.ActionHold, 0, nil
	}
	bar := window[len(window)-1]

	buy := r.buy.Evaluate(bar)
	sell := r.sell.Evaluate(bar)

	switch {
	case buy && !sell:
		return core.ActionBuy, 1, nil
	case sell && !buy:
		return core.ActionSell, 1, nil
	default:
		return core.ActionHold, 0, nil
	}
}

// ModelBased delegates to an external predictor, downgrading low-confidence
// directional labels to hold.
type ModelBased struct {
	predictor predictor.Predictor
	gate      float64
}

// NewModelBased creates a model-based classifier with a confidence gate.
func NewModelBased(p predictor.Predictor, gate float64) *ModelBased {
	if gate <= 0 {
		gate = strategy.DefaultMinConfidence
	}
	return &ModelBased{predictor: p, gate: gate}
}

// Classify returns the predictor's label, gated by confidence.
func (m *ModelBased) Classify(ctx context.Context, window []core.Bar) (core.Action, float64, error) {
	if len(window) == 0 {
		return core.ActionHold, 0, nil
	}

	pred, err := m.predictor.Predict(ctx, window)
	if err != nil {
		return core.ActionHold, 0, err
	}

	if pred.Action != core.ActionHold && pred.Confidence < m.gate {
		return core.ActionHold, pred.Confidence, nil
	}
	return pred.Action, pred.Confidence, nil
}
