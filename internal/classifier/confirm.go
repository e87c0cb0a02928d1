package classifier

import (
	"context"
	"fmt"

	"github.com/newthinker/tradewind/internal/core"
	"github.com/newthinker/tradewind/internal/predictor"
	"github.com/newthinker/tradewind/internal/strategy"
)

// Confirming wraps a classifier with a confirmation window: a directional
// signal passes through only when the last N bars all classify to the same
// direction. One disagreeing bar resets confirmation entirely.
type Confirming struct {
	inner  Classifier
	window int
}

// WithConfirmation wraps c. A window of 1 (or less) is a no-op wrapper.
func WithConfirmation(c Classifier, window int) Classifier {
	if window <= 1 {
		return c
	}
	return &Confirming{inner: c, window: window}
}

// Classify classifies each of the last N window prefixes and requires
// unanimous agreement on a directional action.
func (c *Confirming) Classify(ctx context.Context, window []core.Bar) (core.Action, float64, error) {
	if len(window) < c.window {
		return core.ActionHold, 0, nil
	}

	action, confidence, err := c.inner.Classify(ctx, window)
	if err != nil || action == core.ActionHold {
		return core.ActionHold, confidence, err
	}

	for i := 1; i < c.window; i++ {
		prev, _, err := c.inner.Classify(ctx, window[:len(window)-i])
		if err != nil {
			return core.ActionHold, 0, err
		}
		if prev != action {
			return core.ActionHold, confidence, nil
		}
	}
	return action, confidence, nil
}

// ForStrategy builds the classifier a strategy configuration asks for,
// including its confirmation window. A predictor is required only for
// predictor-backed strategies.
func ForStrategy(cfg *strategy.Config, p predictor.Predictor) (Classifier, error) {
	var inner Classifier
	if cfg.UsesPredictor() {
		if p == nil {
			return nil, core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("strategy %q references predictor %q but none is wired", cfg.Name, cfg.Predictor))
		}
		inner = NewModelBased(p, cfg.Gate())
	} else {
		inner = NewRuleBased(cfg.BuyRules, cfg.SellRules)
	}
	return WithConfirmation(inner, cfg.Confirmation()), nil
}
