package indicator

import "github.com/newthinker/tradewind/internal/core"

// Indicator names as referenced by strategy conditions.
const (
	NameSMA10      = "SMA_10"
	NameEMA10      = "EMA_10"
	NameRSI14      = "RSI_14"
	NameMACD       = "MACD"
	NameMACDSignal = "MACD_SIGNAL"
	NameBBUpper    = "BB_UPPER"
	NameBBLower    = "BB_LOWER"
	NameATR14      = "ATR_14"
)

// Enrich returns a copy of bars with the Indicators map populated for every
// bar whose warmup window is satisfied. Bars inside a warmup window simply
// lack that key; the rule evaluator treats a missing value as a false
// condition, never an error.
func Enrich(bars []core.Bar) []core.Bar {
	if len(bars) == 0 {
		return nil
	}

	closes := make([]float64, len(bars))
	highs := make([]float64, len(bars))
	lows := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		highs[i] = b.High
		lows[i] = b.Low
	}

	out := make([]core.Bar, len(bars))
	for i, b := range bars {
		out[i] = b
		out[i].Indicators = make(map[string]float64, 8)
		for k, v := range b.Indicators {
			out[i].Indicators[k] = v
		}
	}

	apply(out, NameSMA10, SMA(closes, 10))
	apply(out, NameEMA10, EMA(closes, 10))
	apply(out, NameRSI14, RSI(closes, 14))

	macd, macdSignal := MACD(closes, 12, 26, 9)
	apply(out, NameMACD, macd)
	apply(out, NameMACDSignal, macdSignal)

	upper, lower := Bollinger(closes, 20, 2)
	apply(out, NameBBUpper, upper)
	apply(out, NameBBLower, lower)

	apply(out, NameATR14, ATR(highs, lows, closes, 14))

	return out
}

// apply writes a trailing-aligned value series into the bars' indicator maps.
func apply(bars []core.Bar, name string, values []float64) {
	offset := len(bars) - len(values)
	if offset < 0 {
		return
	}
	for i, v := range values {
		bars[offset+i].Indicators[name] = v
	}
}
