// Package predictor defines the interface to external model collaborators.
// Training is out of scope; only the prediction surface is consumed.
package predictor

import (
	"context"

	"github.com/newthinker/tradewind/internal/core"
)

// Prediction is one model output for a bar window.
type Prediction struct {
	Action     core.Action
	Confidence float64
}

// Predictor produces a classified label with confidence for a bar window.
type Predictor interface {
	// Name returns the predictor identifier.
	Name() string

	// Predict classifies the most recent bar of the window.
	Predict(ctx context.Context, window []core.Bar) (Prediction, error)
}
