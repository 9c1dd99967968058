package strategy

import (
	"testing"
	"time"

	"tradelab/internal/domain"
)

// seriesFromCloses builds a series with the given closes; highs/lows track
// the close with a small spread.
func seriesFromCloses(closes []float64) domain.Series {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(domain.Series, len(closes))
	for i, c := range closes {
		s[i] = domain.Bar{
			Symbol:    "TEST",
			Timestamp: base.AddDate(0, 0, i),
			Open:      c,
			High:      c * 1.01,
			Low:       c * 0.99,
			Close:     c,
			AdjClose:  c,
			Volume:    1000,
		}
	}
	return s
}

func TestKindForName(t *testing.T) {
	tests := []struct {
		name string
		want Kind
	}{
		{"SMA Cross", SMACross},
		{"EMA Cross", EMACross},
		{"Donchian Breakout", DonchianBreakout},
		{"MACD Trend", MACDTrend},
		{"RSI(2) @ Bollinger", RSIBollinger},
		{"does-not-exist", SMACross}, // unknown names fall back to the default
		{"", SMACross},
	}
	for _, tt := range tests {
		if got := KindForName(tt.name); got != tt.want {
			t.Errorf("KindForName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDefaultParamsPerKind(t *testing.T) {
	cross := DefaultParams(SMACross)
	if cross.Fast != 10 || cross.Slow != 20 {
		t.Errorf("SMACross defaults = %d/%d, want 10/20", cross.Fast, cross.Slow)
	}

	macd := DefaultParams(MACDTrend)
	if macd.Fast != 12 || macd.Slow != 26 || macd.Signal != 9 {
		t.Errorf("MACDTrend defaults = %d/%d/%d, want 12/26/9", macd.Fast, macd.Slow, macd.Signal)
	}
}

func TestFromValues(t *testing.T) {
	p := FromValues(SMACross, map[string]any{
		"fast":       8.0, // grid values arrive as float64
		"slow":       40,
		"bb_k":       2.5,
		"use_regime": true,
		"bogus":      99, // unknown keys ignored
	})

	if p.Fast != 8 {
		t.Errorf("Fast = %d, want 8", p.Fast)
	}
	if p.Slow != 40 {
		t.Errorf("Slow = %d, want 40", p.Slow)
	}
	if p.BBK != 2.5 {
		t.Errorf("BBK = %v, want 2.5", p.BBK)
	}
	if !p.UseRegime {
		t.Error("UseRegime should be true")
	}
	// Untouched fields keep defaults.
	if p.EMATrend != 200 {
		t.Errorf("EMATrend = %d, want default 200", p.EMATrend)
	}
}

func TestCrossoverRules(t *testing.T) {
	// Downtrend then sharp uptrend: the fast SMA must overtake the slow one.
	closes := make([]float64, 40)
	for i := 0; i < 20; i++ {
		closes[i] = 100 - float64(i)
	}
	for i := 20; i < 40; i++ {
		closes[i] = 81 + 3*float64(i-20)
	}

	s, err := New(SMACross, DefaultParams(SMACross), seriesFromCloses(closes))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if s.EnterLong(5) {
		t.Error("EnterLong should not fire during indicator warm-up")
	}
	if !s.EnterLong(39) {
		t.Error("EnterLong should fire once the fast SMA is above the slow")
	}
	if s.ExitLong(39) {
		t.Error("ExitLong should not fire while the fast SMA is above the slow")
	}
}

func TestDonchianBreakoutRules(t *testing.T) {
	// Flat channel then a breakout close above the prior 20-bar high.
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	closes[29] = 110

	series := seriesFromCloses(closes)
	s, err := New(DonchianBreakout, DefaultParams(DonchianBreakout), series)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if !s.EnterLong(29) {
		t.Error("EnterLong should fire on a close above the prior channel high")
	}
	if s.EnterLong(25) {
		t.Error("EnterLong should not fire inside the channel")
	}
}

func TestRSIBollingerRules(t *testing.T) {
	// Steady prices then a waterfall: RSI(2) pinned low, close under the band.
	closes := make([]float64, 40)
	for i := 0; i < 30; i++ {
		closes[i] = 100 + float64(i%3)
	}
	for i := 30; i < 40; i++ {
		closes[i] = 100 - 4*float64(i-29)
	}

	s, err := New(RSIBollinger, DefaultParams(RSIBollinger), seriesFromCloses(closes))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if !s.EnterLong(39) {
		t.Error("EnterLong should fire with oversold RSI at the lower band")
	}
}

func TestNewEmptySeries(t *testing.T) {
	if _, err := New(SMACross, DefaultParams(SMACross), nil); err == nil {
		t.Error("New should fail for an empty series")
	}
}
