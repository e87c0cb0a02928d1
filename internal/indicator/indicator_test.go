package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/newthinker/tradewind/internal/core"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}
	result := SMA(prices, 3)

	expected := []float64{2, 3, 4}
	if len(result) != len(expected) {
		t.Fatalf("expected %d values, got %d", len(expected), len(result))
	}
	for i := range expected {
		if !almostEqual(result[i], expected[i]) {
			t.Errorf("SMA[%d] = %v, want %v", i, result[i], expected[i])
		}
	}
}

func TestSMA_NotEnoughData(t *testing.T) {
	if got := SMA([]float64{1, 2}, 5); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

func TestEMA_FirstValueIsSMA(t *testing.T) {
	prices := []float64{2, 4, 6, 8}
	result := EMA(prices, 2)

	if len(result) != 3 {
		t.Fatalf("expected 3 values, got %d", len(result))
	}
	if !almostEqual(result[0], 3) {
		t.Errorf("first EMA should equal SMA seed 3, got %v", result[0])
	}
}

func TestRSI_AllGains(t *testing.T) {
	// Strictly rising prices should push RSI close to 100
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}
	result := RSI(prices, 14)

	if len(result) != len(prices)-14 {
		t.Fatalf("expected %d values, got %d", len(prices)-14, len(result))
	}
	last := result[len(result)-1]
	if last < 99 {
		t.Errorf("RSI of strictly rising series should be near 100, got %v", last)
	}
}

func TestRSI_AllLosses(t *testing.T) {
	prices := make([]float64, 20)
	for i := range prices {
		prices[i] = 200 - float64(i)
	}
	result := RSI(prices, 14)
	last := result[len(result)-1]
	if last > 1 {
		t.Errorf("RSI of strictly falling series should be near 0, got %v", last)
	}
}

func TestMACD_Alignment(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + math.Sin(float64(i)/5)*10
	}

	macd, signal := MACD(prices, 12, 26, 9)
	if len(macd) == 0 || len(signal) == 0 {
		t.Fatal("expected MACD output for 60 bars")
	}
	if len(macd) != len(signal) {
		t.Errorf("macd and signal should be aligned: %d vs %d", len(macd), len(signal))
	}
}

func TestBollinger_BandsSurroundMean(t *testing.T) {
	prices := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16,
		15, 17, 16, 18, 17, 19, 18, 20, 19, 21, 20, 22}

	upper, lower := Bollinger(prices, 20, 2)
	if len(upper) != 3 || len(lower) != 3 {
		t.Fatalf("expected 3 band values, got %d/%d", len(upper), len(lower))
	}
	for i := range upper {
		if upper[i] <= lower[i] {
			t.Errorf("upper band must exceed lower band at %d", i)
		}
	}
}

func TestATR_ConstantRange(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 102
		lows[i] = 100
		closes[i] = 101
	}

	result := ATR(highs, lows, closes, 14)
	if len(result) != n-1-14+1 {
		t.Fatalf("unexpected length %d", len(result))
	}
	for _, v := range result {
		if !almostEqual(v, 2) {
			t.Errorf("constant 2-point range should give ATR 2, got %v", v)
		}
	}
}

func TestEnrich(t *testing.T) {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]core.Bar, 60)
	for i := range bars {
		price := 100 + float64(i%10)
		bars[i] = core.Bar{
			Symbol: "AAPL",
			Open:   price - 0.5,
			High:   price + 1,
			Low:    price - 1,
			Close:  price,
			Volume: 1000,
			Time:   base.Add(time.Duration(i) * time.Hour),
		}
	}

	enriched := Enrich(bars)
	if len(enriched) != len(bars) {
		t.Fatalf("expected %d bars, got %d", len(bars), len(enriched))
	}

	// Input bars must stay untouched
	if bars[len(bars)-1].Indicators != nil {
		t.Error("Enrich must not mutate input bars")
	}

	last := enriched[len(enriched)-1]
	for _, name := range []string{NameSMA10, NameEMA10, NameRSI14, NameMACD, NameMACDSignal, NameBBUpper, NameBBLower, NameATR14} {
		if _, ok := last.Indicator(name); !ok {
			t.Errorf("last bar missing %s", name)
		}
	}

	// First bar is inside every warmup window
	if _, ok := enriched[0].Indicator(NameSMA10); ok {
		t.Error("first bar should have no SMA_10 yet")
	}
}

func TestEnrich_Empty(t *testing.T) {
	if got := Enrich(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
