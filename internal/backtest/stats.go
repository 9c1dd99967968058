package backtest

import "math"

// barsPerYear is the trading-day annualization factor for daily series.
const barsPerYear = 252.0

// statsFromEquity derives the performance metrics of a per-bar equity
// curve. Sharpe is the annualized mean/stddev of daily equity returns and
// is NaN when undefined (fewer than two returns, or zero variance).
func statsFromEquity(equity []float64, startCash float64) *Summary {
	s := &Summary{
		FinalValue: startCash,
		Sharpe:     math.NaN(),
	}
	if len(equity) == 0 {
		s.CAGRPct = math.NaN()
		return s
	}
	s.FinalValue = equity[len(equity)-1]

	// Daily returns.
	returns := make([]float64, 0, len(equity)-1)
	for i := 1; i < len(equity); i++ {
		if equity[i-1] != 0 {
			returns = append(returns, equity[i]/equity[i-1]-1)
		}
	}
	s.Sharpe = annualizedSharpe(returns)

	// Max drawdown depth and length from the running peak.
	peak := equity[0]
	ddLen := 0
	for _, eq := range equity {
		if eq >= peak {
			peak = eq
			ddLen = 0
			continue
		}
		ddLen++
		if peak > 0 {
			dd := (peak - eq) / peak * 100.0
			if dd > s.MaxDDPct {
				s.MaxDDPct = dd
				s.MaxDDLen = ddLen
			}
		}
	}

	// Annualized growth rate over the simulated span.
	years := float64(len(equity)) / barsPerYear
	if years > 0 && startCash > 0 && s.FinalValue > 0 {
		s.CAGRPct = (math.Pow(s.FinalValue/startCash, 1.0/years) - 1.0) * 100.0
	} else {
		s.CAGRPct = math.NaN()
	}

	return s
}

// annualizedSharpe computes mean/stddev of the returns scaled by √252.
// Returns NaN when the ratio is undefined.
func annualizedSharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return math.NaN()
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var ss float64
	for _, r := range returns {
		diff := r - mean
		ss += diff * diff
	}
	std := math.Sqrt(ss / float64(len(returns)-1))
	if std == 0 {
		return math.NaN()
	}

	return mean / std * math.Sqrt(barsPerYear)
}
