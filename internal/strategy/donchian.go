package strategy

import (
	"tradelab/internal/domain"
	"tradelab/internal/indicator"
)

// donchian is a channel breakout: enter on a close above the prior upper
// channel, exit on a close below the prior lower channel.
type donchian struct {
	upper   int
	closes  []float64
	highest []float64
	lowest  []float64
}

func newDonchian(p Params, series domain.Series) *donchian {
	return &donchian{
		upper:   p.Upper,
		closes:  series.Closes(),
		highest: indicator.Highest(p.Upper, series.Highs()),
		lowest:  indicator.Lowest(p.Lower, series.Lows()),
	}
}

func (d *donchian) Kind() Kind  { return DonchianBreakout }
func (d *donchian) Warmup() int { return d.upper + 1 }

// EnterLong compares against the channel value of the previous bar so the
// breakout bar itself does not move the channel it breaks.
func (d *donchian) EnterLong(i int) bool {
	return i > 0 && d.closes[i] > d.highest[i-1]
}

func (d *donchian) ExitLong(i int) bool {
	return i > 0 && d.closes[i] < d.lowest[i-1]
}
