// Package indicator provides stateless technical indicator transforms over
// price series. All functions are pure: same input, same output, no shared
// state.
//
// Rolling indicators return NaN until their window fills, mirroring the
// warm-up behaviour of the research environment the strategies were
// validated in. The underlying arithmetic comes from
// github.com/cinar/indicator; parametrized composites (MACD, Bollinger,
// Stochastic) are assembled here because the library's own variants
// hard-code their periods.
package indicator

import (
	"math"

	cinar "github.com/cinar/indicator"
)

// SMA returns the simple moving average of values with the given period.
// The first period-1 entries are NaN.
func SMA(period int, values []float64) []float64 {
	return maskWarmup(period-1, cinar.Sma(period, values))
}

// EMA returns the exponential moving average with the given period, seeded
// from the first value.
func EMA(period int, values []float64) []float64 {
	return cinar.Ema(period, values)
}

// ATR returns the average true range over highs/lows/closes. The first
// period-1 entries are NaN.
func ATR(period int, highs, lows, closes []float64) []float64 {
	_, atr := cinar.Atr(period, highs, lows, closes)
	return maskWarmup(period-1, atr)
}

// RSI returns the relative strength index with the given period. The first
// period entries are NaN.
func RSI(period int, closes []float64) []float64 {
	_, rsi := cinar.RsiPeriod(period, closes)
	return maskWarmup(period, rsi)
}

// MACD returns the MACD line, signal line, and histogram for the given
// fast/slow/signal periods.
func MACD(fast, slow, signal int, closes []float64) (macd, signalLine, hist []float64) {
	fastEma := cinar.Ema(fast, closes)
	slowEma := cinar.Ema(slow, closes)

	macd = make([]float64, len(closes))
	for i := range closes {
		macd[i] = fastEma[i] - slowEma[i]
	}
	signalLine = cinar.Ema(signal, macd)

	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = macd[i] - signalLine[i]
	}
	return macd, signalLine, hist
}

// Bollinger returns the upper band, middle band (SMA), lower band, and
// relative band width for the given period and deviation factor k. Entries
// are NaN until the window fills.
func Bollinger(period int, k float64, closes []float64) (upper, mid, lower, width []float64) {
	mid = SMA(period, closes)
	std := rollingStd(period, closes)

	n := len(closes)
	upper = make([]float64, n)
	lower = make([]float64, n)
	width = make([]float64, n)
	for i := 0; i < n; i++ {
		upper[i] = mid[i] + k*std[i]
		lower[i] = mid[i] - k*std[i]
		width[i] = (upper[i] - lower[i]) / mid[i]
	}
	return upper, mid, lower, width
}

// Stochastic returns the %K and %D oscillator lines for the given lookback
// periods. The first kPeriod-1 entries of %K (and correspondingly more of
// %D) are NaN.
func Stochastic(kPeriod, dPeriod int, highs, lows, closes []float64) (k, d []float64) {
	hh := cinar.Max(kPeriod, highs)
	ll := cinar.Min(kPeriod, lows)

	k = make([]float64, len(closes))
	for i := range closes {
		k[i] = 100 * (closes[i] - ll[i]) / (hh[i] - ll[i])
	}
	k = maskWarmup(kPeriod-1, k)

	d = maskWarmup(kPeriod+dPeriod-2, cinar.Sma(dPeriod, unmaskNaN(k)))
	return k, d
}

// Highest returns the rolling maximum of values over the given period, NaN
// until the window fills.
func Highest(period int, values []float64) []float64 {
	return maskWarmup(period-1, cinar.Max(period, values))
}

// Lowest returns the rolling minimum of values over the given period, NaN
// until the window fills.
func Lowest(period int, values []float64) []float64 {
	return maskWarmup(period-1, cinar.Min(period, values))
}

// rollingStd computes the rolling sample standard deviation (ddof=1) over
// the given period, NaN until the window fills.
func rollingStd(period int, values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < period-1 || period < 2 {
			out[i] = math.NaN()
			continue
		}
		window := values[i-period+1 : i+1]
		var sum float64
		for _, v := range window {
			sum += v
		}
		mean := sum / float64(period)
		var ss float64
		for _, v := range window {
			diff := v - mean
			ss += diff * diff
		}
		out[i] = math.Sqrt(ss / float64(period-1))
	}
	return out
}

// maskWarmup overwrites the first n entries with NaN and returns the slice.
func maskWarmup(n int, values []float64) []float64 {
	if n > len(values) {
		n = len(values)
	}
	for i := 0; i < n; i++ {
		values[i] = math.NaN()
	}
	return values
}

// unmaskNaN replaces NaN entries with zero in a copy. Used before feeding a
// masked series back into a running-sum primitive, which a NaN would poison.
func unmaskNaN(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = 0
		} else {
			out[i] = v
		}
	}
	return out
}
