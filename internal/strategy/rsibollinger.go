package strategy

import (
	"tradelab/internal/domain"
	"tradelab/internal/indicator"
)

// rsiBollinger is a short-period RSI mean-reversion rule: enter when RSI is
// oversold and price touches the lower Bollinger band, exit when RSI
// recovers or price reaches the upper band.
type rsiBollinger struct {
	warmup  int
	rsiBuy  float64
	rsiExit float64
	closes  []float64
	rsi     []float64
	upper   []float64
	lower   []float64
}

func newRSIBollinger(p Params, series domain.Series) *rsiBollinger {
	closes := series.Closes()
	upper, _, lower, _ := indicator.Bollinger(p.BBPeriod, p.BBK, closes)

	warmup := p.BBPeriod
	if p.RSIPeriod+1 > warmup {
		warmup = p.RSIPeriod + 1
	}

	return &rsiBollinger{
		warmup:  warmup,
		rsiBuy:  p.RSIBuy,
		rsiExit: p.RSIExit,
		closes:  closes,
		rsi:     indicator.RSI(p.RSIPeriod, closes),
		upper:   upper,
		lower:   lower,
	}
}

func (r *rsiBollinger) Kind() Kind  { return RSIBollinger }
func (r *rsiBollinger) Warmup() int { return r.warmup }

func (r *rsiBollinger) EnterLong(i int) bool {
	return r.rsi[i] <= r.rsiBuy && r.closes[i] <= r.lower[i]
}

func (r *rsiBollinger) ExitLong(i int) bool {
	return r.rsi[i] >= r.rsiExit || r.closes[i] >= r.upper[i]
}
