// Package indicator computes the technical indicators the rule evaluator
// consumes. All functions return trailing-aligned slices: the result covers
// the last len(result) input bars, earlier bars fall in the warmup window.
package indicator

import "math"

// SMA calculates Simple Moving Average
// Returns slice of length: len(prices) - period + 1
func SMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	result = append(result, sum/float64(period))

	// Rolling calculation
	for i := period; i < len(prices); i++ {
		sum = sum - prices[i-period] + prices[i]
		result = append(result, sum/float64(period))
	}

	return result
}

// EMA calculates Exponential Moving Average, seeded with the first SMA value
func EMA(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) < period {
		return []float64{}
	}

	result := make([]float64, 0, len(prices)-period+1)
	multiplier := 2.0 / float64(period+1)

	var sum float64
	for i := 0; i < period; i++ {
		sum += prices[i]
	}
	ema := sum / float64(period)
	result = append(result, ema)

	for i := period; i < len(prices); i++ {
		ema = (prices[i]-ema)*multiplier + ema
		result = append(result, ema)
	}

	return result
}

// RSI calculates the Relative Strength Index over rolling average gains and
// losses. Returns slice of length: len(prices) - period
func RSI(prices []float64, period int) []float64 {
	if period <= 0 || len(prices) <= period {
		return []float64{}
	}

	gains := make([]float64, len(prices)-1)
	losses := make([]float64, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > 0 {
			gains[i-1] = delta
		} else {
			losses[i-1] = -delta
		}
	}

	avgGain := SMA(gains, period)
	avgLoss := SMA(losses, period)

	result := make([]float64, len(avgGain))
	for i := range avgGain {
		rs := avgGain[i] / (avgLoss[i] + 1e-10)
		result[i] = 100 - (100 / (1 + rs))
	}
	return result
}

// MACD calculates the MACD line (EMA fast - EMA slow) and its signal line.
// Both returned slices share the signal line's trailing alignment.
func MACD(prices []float64, fast, slow, signal int) (macd, macdSignal []float64) {
	emaFast := EMA(prices, fast)
	emaSlow := EMA(prices, slow)
	if len(emaSlow) == 0 || len(emaFast) < len(emaSlow) {
		return nil, nil
	}

	// Align the fast EMA tail against the slow EMA
	offset := len(emaFast) - len(emaSlow)
	line := make([]float64, len(emaSlow))
	for i := range emaSlow {
		line[i] = emaFast[i+offset] - emaSlow[i]
	}

	sig := EMA(line, signal)
	if len(sig) == 0 {
		return line, nil
	}
	return line[len(line)-len(sig):], sig
}

// Bollinger calculates Bollinger Bands: SMA(period) +/- numStd sample
// standard deviations. Returns slices of length: len(prices) - period + 1
func Bollinger(prices []float64, period int, numStd float64) (upper, lower []float64) {
	mid := SMA(prices, period)
	if len(mid) == 0 {
		return nil, nil
	}

	upper = make([]float64, len(mid))
	lower = make([]float64, len(mid))
	for i := range mid {
		window := prices[i : i+period]
		var variance float64
		for _, p := range window {
			variance += (p - mid[i]) * (p - mid[i])
		}
		std := math.Sqrt(variance / float64(period-1))
		upper[i] = mid[i] + numStd*std
		lower[i] = mid[i] - numStd*std
	}
	return upper, lower
}

// ATR calculates the Average True Range as a rolling mean of true ranges.
// Requires highs, lows and closes of equal length.
// Returns slice of length: len(closes) - period
func ATR(highs, lows, closes []float64, period int) []float64 {
	n := len(closes)
	if period <= 0 || n <= period || len(highs) != n || len(lows) != n {
		return []float64{}
	}

	tr := make([]float64, n-1)
	for i := 1; i < n; i++ {
		hl := highs[i] - lows[i]
		hc := math.Abs(highs[i] - closes[i-1])
		lc := math.Abs(lows[i] - closes[i-1])
		tr[i-1] = math.Max(hl, math.Max(hc, lc))
	}
	return SMA(tr, period)
}
