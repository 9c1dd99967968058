// Package scanner evaluates strategy entry rules against the latest bars of
// a universe, reporting for each symbol the current signal, how many bars
// ago it fired, the reference price at that point, and a reward/risk
// estimate for a fresh entry.
package scanner

import (
	"math"
	"sort"

	"tradelab/internal/domain"
	"tradelab/internal/indicator"
	"tradelab/internal/strategy"
)

// Options controls the filter conditions applied on top of the raw signal.
// A zero Options applies no filters, so every scanned symbol passes.
type Options struct {
	MACDCross   bool    // require a MACD cross above signal on the last bar
	BBSqueeze   bool    // require Bollinger band width at or below BBThreshold
	BBThreshold float64 // width threshold; values > 1 are read as percent
	Breakout    bool    // require a close above the upper Bollinger band
	StochCross  bool    // require %K crossing above %D on the last bar
	ATRMinPct   float64 // require ATR as % of close to be at least this
	RRMin       float64 // require reward/risk at or above this
	RRTarget    string  // "atr" (default), "boll_mid", or "donchian_high"
}

// Row is one symbol's scan outcome.
type Row struct {
	Symbol  string
	Pass    bool
	Signal  domain.SignalKind
	Age     int
	PriceAt float64
	RR      float64
	Note    string
}

// MinBars returns the bar count a series needs before the configured rules
// can be evaluated meaningfully.
func MinBars(p strategy.Params) int {
	min := 60
	for _, v := range []int{p.Fast, p.Slow, p.EMATrend, p.Upper, p.Lower, p.BBPeriod, p.RSIPeriod} {
		if v > min {
			min = v
		}
	}
	return min + 5
}

// Evaluate scans one symbol: the strategy's signal state plus the filter
// conditions. Symbols with too little history produce a non-passing row
// marked "few bars".
func Evaluate(symbol string, series domain.Series, kind strategy.Kind, p strategy.Params, opts Options) Row {
	if len(series) < MinBars(p) {
		return Row{
			Symbol:  symbol,
			Pass:    false,
			Signal:  domain.SignalHold,
			PriceAt: math.NaN(),
			Note:    "few bars",
		}
	}

	sig, age, priceAt := Signal(series, kind, p)
	rr := rewardRisk(series, p, opts.RRTarget)

	pass := true
	for _, ok := range conditions(series, p, opts, rr) {
		if !ok {
			pass = false
			break
		}
	}

	return Row{
		Symbol:  symbol,
		Pass:    pass,
		Signal:  sig,
		Age:     age,
		PriceAt: round4(priceAt),
		RR:      math.Round(rr*100) / 100,
	}
}

// Rank orders rows for presentation: passing rows first, then by
// reward/risk descending, then by symbol.
func Rank(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Pass != rows[j].Pass {
			return rows[i].Pass
		}
		if rows[i].RR != rows[j].RR {
			return rows[i].RR > rows[j].RR
		}
		return rows[i].Symbol < rows[j].Symbol
	})
}

// Signal evaluates the variant's rule state on the series: the signal on
// the last bar, the number of bars since the signal state last changed, and
// the close at that change point.
func Signal(series domain.Series, kind strategy.Kind, p strategy.Params) (domain.SignalKind, int, float64) {
	closes := series.Closes()
	last := len(closes) - 1

	switch kind {
	case strategy.SMACross, strategy.EMACross:
		var fast, slow []float64
		if kind == strategy.SMACross {
			fast = indicator.SMA(p.Fast, closes)
			slow = indicator.SMA(p.Slow, closes)
		} else {
			fast = indicator.EMA(p.Fast, closes)
			slow = indicator.EMA(p.Slow, closes)
		}
		cr := make([]float64, len(closes))
		for i := range closes {
			cr[i] = sign(fast[i] - slow[i])
		}

		now := domain.SignalHold
		if cr[last] > 0 && cr[last-1] <= 0 {
			now = domain.SignalBuy
		} else if cr[last] < 0 && cr[last-1] >= 0 {
			now = domain.SignalSell
		}

		idx := lastChange(cr)
		return now, last - idx, closes[idx]

	case strategy.DonchianBreakout:
		hh := shift1(indicator.Highest(p.Upper, series.Highs()))
		ll := shift1(indicator.Lowest(p.Lower, series.Lows()))

		now := domain.SignalHold
		if closes[last] > hh[last] {
			now = domain.SignalBuy
		} else if closes[last] < ll[last] {
			now = domain.SignalSell
		}

		sig := make([]float64, len(closes))
		for i := range closes {
			switch {
			case closes[i] > hh[i]:
				sig[i] = 1
			case closes[i] < ll[i]:
				sig[i] = -1
			}
		}

		idx := lastChange(sig)
		return now, last - idx, closes[idx]

	case strategy.MACDTrend:
		m, s, _ := indicator.MACD(p.Fast, p.Slow, p.Signal, closes)
		emaTr := indicator.EMA(p.EMATrend, closes)

		now := domain.SignalHold
		if closes[last] > emaTr[last] && m[last] > s[last] && m[last-1] <= s[last-1] {
			now = domain.SignalBuy
		} else if (m[last] < s[last] && m[last-1] >= s[last-1]) || closes[last] < emaTr[last] {
			now = domain.SignalSell
		}

		for i := last; i >= 1; i-- {
			crossUp := m[i] > s[i] && m[i-1] <= s[i-1]
			crossDown := m[i] < s[i] && m[i-1] >= s[i-1]
			if crossUp || crossDown {
				return now, last - i, closes[i]
			}
		}
		return now, 0, closes[last]

	case strategy.RSIBollinger:
		rsi := indicator.RSI(p.RSIPeriod, closes)
		_, _, lower, _ := indicator.Bollinger(p.BBPeriod, p.BBK, closes)

		now := domain.SignalHold
		if rsi[last] <= p.RSIBuy && closes[last] <= lower[last] {
			now = domain.SignalBuy
		}

		for i := last; i >= 0; i-- {
			if rsi[i] <= p.RSIBuy && closes[i] <= lower[i] {
				return now, last - i, closes[i]
			}
		}
		return now, 0, closes[last]
	}

	return domain.SignalHold, 0, closes[last]
}

// conditions evaluates the enabled filter set on the last bar.
func conditions(series domain.Series, p strategy.Params, opts Options, rr float64) []bool {
	closes := series.Closes()
	highs := series.Highs()
	lows := series.Lows()
	last := len(closes) - 1

	var conds []bool

	if opts.MACDCross {
		m, s, _ := indicator.MACD(12, 26, 9, closes)
		conds = append(conds, m[last] > s[last] && m[last-1] <= s[last-1])
	}
	if opts.BBSqueeze {
		_, _, _, width := indicator.Bollinger(p.BBPeriod, p.BBK, closes)
		thr := opts.BBThreshold
		if thr > 1 {
			thr /= 100.0
		}
		conds = append(conds, width[last] <= thr)
	}
	if opts.Breakout {
		upper, _, _, _ := indicator.Bollinger(p.BBPeriod, p.BBK, closes)
		u := upper[last]
		if math.IsNaN(u) {
			u = math.Inf(1)
		}
		conds = append(conds, closes[last] > u)
	}
	if opts.StochCross {
		k, d := indicator.Stochastic(14, 3, highs, lows, closes)
		conds = append(conds, k[last] > d[last] && k[last-1] <= d[last-1])
	}
	if opts.ATRMinPct > 0 {
		atr := indicator.ATR(p.ATRPeriod, highs, lows, closes)
		atrPct := atr[last] / math.Max(1e-9, closes[last]) * 100.0
		conds = append(conds, atrPct >= opts.ATRMinPct)
	}
	if opts.RRMin > 0 {
		conds = append(conds, rr >= opts.RRMin)
	}

	return conds
}

// rewardRisk estimates the reward/risk of entering at the last close with
// an ATR-multiple stop and the configured target level.
func rewardRisk(series domain.Series, p strategy.Params, target string) float64 {
	closes := series.Closes()
	last := len(closes) - 1

	atr := indicator.ATR(p.ATRPeriod, series.Highs(), series.Lows(), closes)
	stopDist := atr[last] * p.ATRMult
	entry := closes[last]
	stop := math.Max(0.0001, entry-stopDist)

	var targetPrice float64
	switch target {
	case "boll_mid":
		mid := indicator.SMA(p.BBPeriod, closes)
		targetPrice = mid[last]
	case "donchian_high":
		hh := indicator.Highest(p.Upper, series.Highs())
		targetPrice = hh[last]
	default:
		targetPrice = entry + 2.0*atr[last]
	}
	if math.IsNaN(targetPrice) {
		targetPrice = entry + stopDist
	}

	return (targetPrice - entry) / math.Max(1e-9, entry-stop)
}

// sign returns -1, 0, or +1; NaN stays NaN.
func sign(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return math.NaN()
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// lastChange returns the index of the most recent state change in the
// sequence. NaN compares unequal to everything, including itself, so the
// boundary out of indicator warm-up counts as a change. Index 0 is the
// fallback when no change exists.
func lastChange(seq []float64) int {
	for i := len(seq) - 1; i >= 1; i-- {
		a, b := seq[i], seq[i-1]
		if math.IsNaN(a) || math.IsNaN(b) {
			if !(math.IsNaN(a) && math.IsNaN(b)) {
				return i
			}
			continue
		}
		if a != b {
			return i
		}
	}
	return 0
}

// shift1 shifts values right by one slot, inserting NaN at the front.
func shift1(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	out[0] = math.NaN()
	copy(out[1:], values[:len(values)-1])
	return out
}

func round4(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*10000) / 10000
}
