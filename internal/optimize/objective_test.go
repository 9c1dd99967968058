package optimize

import (
	"errors"
	"math"
	"testing"

	"tradelab/internal/backtest"
)

func TestScoreSelectors(t *testing.T) {
	s := &backtest.Summary{
		Sharpe:     1.2,
		CAGRPct:    15.0,
		MaxDDPct:   10.0,
		WinRatePct: 55.0,
		Trades:     42,
	}
	tests := []struct {
		obj  Objective
		want float64
	}{
		{Sharpe, 1.2},
		{CAGR, 15.0},
		{ReturnOverDD, 1.5},
		{WinRate, 55.0},
		{Trades, 42.0},
	}
	for _, tt := range tests {
		if got := Score(s, tt.obj); got != tt.want {
			t.Errorf("Score(%v) = %v, want %v", tt.obj, got, tt.want)
		}
	}
}

func TestScoreNilSummary(t *testing.T) {
	if got := Score(nil, Sharpe); got != SentinelScore {
		t.Errorf("Score(nil) = %v, want %v", got, SentinelScore)
	}
}

func TestScoreZeroDrawdown(t *testing.T) {
	s := &backtest.Summary{CAGRPct: 10.0, MaxDDPct: 0.0}
	got := Score(s, ReturnOverDD)
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("Score(Return/DD, dd=0) = %v, want finite", got)
	}
	if got != 10.0/1e-6 {
		t.Errorf("Score = %v, want %v", got, 10.0/1e-6)
	}
}

func TestScoreNaNSharpe(t *testing.T) {
	s := &backtest.Summary{Sharpe: math.NaN()}
	if got := Score(s, Sharpe); got != 0 {
		t.Errorf("Score(NaN Sharpe) = %v, want 0", got)
	}
}

func TestObjectiveFromOrdinal(t *testing.T) {
	for i := 0; i < 5; i++ {
		if _, err := ObjectiveFromOrdinal(i); err != nil {
			t.Errorf("ObjectiveFromOrdinal(%d) = %v, want nil", i, err)
		}
	}
	for _, i := range []int{-1, 5, 99} {
		if _, err := ObjectiveFromOrdinal(i); !errors.Is(err, ErrBadObjective) {
			t.Errorf("ObjectiveFromOrdinal(%d) = %v, want ErrBadObjective", i, err)
		}
	}
}

func TestParseObjective(t *testing.T) {
	tests := []struct {
		name string
		want Objective
	}{
		{"Sharpe", Sharpe},
		{"CAGR", CAGR},
		{"Return/DD", ReturnOverDD},
		{"WinRate", WinRate},
		{"Trades", Trades},
	}
	for _, tt := range tests {
		got, err := ParseObjective(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("ParseObjective(%q) = %v, %v, want %v, nil", tt.name, got, err, tt.want)
		}
	}
	if _, err := ParseObjective("sortino"); !errors.Is(err, ErrBadObjective) {
		t.Errorf("ParseObjective(sortino) = %v, want ErrBadObjective", err)
	}
}
