package strategy

import (
	"tradelab/internal/domain"
	"tradelab/internal/indicator"
)

// macdTrend enters on a MACD cross above its signal line while price is
// above a long trend EMA, and exits when the cross reverses or price drops
// below the trend EMA.
type macdTrend struct {
	warmup   int
	closes   []float64
	macd     []float64
	signal   []float64
	emaTrend []float64
}

func newMACDTrend(p Params, series domain.Series) *macdTrend {
	closes := series.Closes()
	macd, signal, _ := indicator.MACD(p.Fast, p.Slow, p.Signal, closes)

	warmup := p.EMATrend
	if w := p.Slow + p.Signal; w > warmup {
		warmup = w
	}

	return &macdTrend{
		warmup:   warmup,
		closes:   closes,
		macd:     macd,
		signal:   signal,
		emaTrend: indicator.EMA(p.EMATrend, closes),
	}
}

func (m *macdTrend) Kind() Kind  { return MACDTrend }
func (m *macdTrend) Warmup() int { return m.warmup }

func (m *macdTrend) EnterLong(i int) bool {
	if i == 0 {
		return false
	}
	return m.closes[i] > m.emaTrend[i] &&
		m.macd[i] > m.signal[i] &&
		m.macd[i-1] <= m.signal[i-1]
}

func (m *macdTrend) ExitLong(i int) bool {
	return m.macd[i] < m.signal[i] || m.closes[i] < m.emaTrend[i]
}
