package onnx

import (
	"testing"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

func TestFeatures_Shape(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	window := make([]core.Bar, 10)
	for i := range window {
		window[i] = core.Bar{
			Symbol: "BTC-USD",
			Open:   100 + float64(i),
			High:   101 + float64(i),
			Low:    99 + float64(i),
			Close:  100.5 + float64(i),
			Volume: int64(1000 * (i + 1)),
			Time:   base.Add(time.Duration(i) * time.Minute),
		}
	}

	features := Features(window)
	if len(features) != len(window)*featuresPerBar {
		t.Fatalf("feature length = %d, want %d", len(features), len(window)*featuresPerBar)
	}

	// Volumes are normalized against the window maximum
	lastVol := features[len(features)-2]
	if lastVol != 1 {
		t.Errorf("max-volume bar should normalize to 1, got %v", lastVol)
	}

	// First bar has no previous close, change must be 0
	if features[5] != 0 {
		t.Errorf("first bar change should be 0, got %v", features[5])
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		out        []float32
		action     core.Action
		confidence float64
	}{
		{[]float32{0.7, 0.2, 0.1}, core.ActionHold, 0.7},
		{[]float32{0.1, 0.8, 0.1}, core.ActionBuy, 0.8},
		{[]float32{0.2, 0.2, 0.6}, core.ActionSell, 0.6},
	}

	for _, c := range cases {
		got := decode(c.out)
		if got.Action != c.action {
			t.Errorf("decode(%v) action = %v, want %v", c.out, got.Action, c.action)
		}
		if got.Confidence != c.confidence {
			t.Errorf("decode(%v) confidence = %v, want %v", c.out, got.Confidence, c.confidence)
		}
	}
}
