package indicator

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMA(t *testing.T) {
	got := SMA(3, []float64{1, 2, 3, 4, 5})

	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("SMA warmup entries = %v, want NaN", got[:2])
	}
	want := []float64{2, 3, 4}
	for i, w := range want {
		if !almostEqual(got[i+2], w) {
			t.Errorf("SMA[%d] = %v, want %v", i+2, got[i+2], w)
		}
	}
}

func TestEMAConstantSeries(t *testing.T) {
	got := EMA(5, []float64{3, 3, 3, 3, 3, 3})
	for i, v := range got {
		if !almostEqual(v, 3) {
			t.Errorf("EMA[%d] = %v, want 3 for constant input", i, v)
		}
	}
}

func TestMACDSign(t *testing.T) {
	// Steadily rising series: fast EMA above slow EMA, positive MACD line.
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	macd, signal, hist := MACD(12, 26, 9, closes)

	last := len(closes) - 1
	if macd[last] <= 0 {
		t.Errorf("MACD line = %v on rising series, want > 0", macd[last])
	}
	if !almostEqual(hist[last], macd[last]-signal[last]) {
		t.Errorf("hist = %v, want macd-signal = %v", hist[last], macd[last]-signal[last])
	}
}

func TestBollinger(t *testing.T) {
	upper, mid, lower, _ := Bollinger(3, 2, []float64{1, 2, 3, 4, 5})

	if !math.IsNaN(upper[1]) {
		t.Error("Bollinger should be NaN before the window fills")
	}
	// Window [1,2,3]: mean 2, sample std 1.
	if !almostEqual(mid[2], 2) {
		t.Errorf("mid[2] = %v, want 2", mid[2])
	}
	if !almostEqual(upper[2], 4) {
		t.Errorf("upper[2] = %v, want 4", upper[2])
	}
	if !almostEqual(lower[2], 0) {
		t.Errorf("lower[2] = %v, want 0", lower[2])
	}
}

func TestHighestLowest(t *testing.T) {
	values := []float64{5, 1, 4, 2, 8}

	hi := Highest(3, values)
	if !math.IsNaN(hi[1]) {
		t.Error("Highest warmup should be NaN")
	}
	if hi[2] != 5 || hi[4] != 8 {
		t.Errorf("Highest = [_ _ %v _ %v], want [_ _ 5 _ 8]", hi[2], hi[4])
	}

	lo := Lowest(3, values)
	if lo[2] != 1 || lo[4] != 2 {
		t.Errorf("Lowest = [_ _ %v _ %v], want [_ _ 1 _ 2]", lo[2], lo[4])
	}
}

func TestStochasticBounds(t *testing.T) {
	highs := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}
	lows := []float64{9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	closes := []float64{9.5, 10.5, 11.5, 12.5, 13.5, 14.5, 15.5, 16.5, 17.5, 19}

	k, d := Stochastic(5, 3, highs, lows, closes)

	last := len(closes) - 1
	if math.IsNaN(k[last]) || k[last] < 0 || k[last] > 100 {
		t.Errorf("%%K = %v, want in [0,100]", k[last])
	}
	if math.IsNaN(d[last]) {
		t.Error("%D should be defined once both windows fill")
	}
	// Close at the top of the range: %K must be 100.
	if !almostEqual(k[last], 100) {
		t.Errorf("%%K = %v with close at range high, want 100", k[last])
	}
}

func TestATRWarmup(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i] = 102
		lows[i] = 98
		closes[i] = 100
	}

	atr := ATR(14, highs, lows, closes)
	if !math.IsNaN(atr[12]) {
		t.Error("ATR should be NaN before the window fills")
	}
	// Constant 4-point range: ATR equals 4 once warm.
	if !almostEqual(atr[n-1], 4) {
		t.Errorf("ATR = %v, want 4", atr[n-1])
	}
}

func TestRSIExtremes(t *testing.T) {
	// Monotonically rising closes: RSI near 100.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = float64(i + 1)
	}
	rsi := RSI(14, closes)
	if rsi[len(rsi)-1] < 90 {
		t.Errorf("RSI = %v on monotonic rise, want > 90", rsi[len(rsi)-1])
	}
}
