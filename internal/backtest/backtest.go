// Package backtest simulates a strategy over a price series under a fixed
// broker model (starting cash, commission, slippage) and reports summary
// performance metrics.
package backtest

import (
	"fmt"
	"math"

	"tradelab/internal/domain"
	"tradelab/internal/indicator"
	"tradelab/internal/strategy"
)

// Config is the broker simulation configuration.
type Config struct {
	StartCash    float64
	Commission   float64 // rate on traded notional, both sides
	SlippagePerc float64 // adverse price slip on fills
}

// DefaultConfig returns the standard research setup: $10k cash, 5 bps
// commission, 5 bps slippage.
func DefaultConfig() Config {
	return Config{
		StartCash:    10000.0,
		Commission:   0.0005,
		SlippagePerc: 0.0005,
	}
}

// Request describes one backtest invocation. Benchmark and Weekly are
// optional auxiliary feeds; when nil the corresponding entry filters fall
// back to "no filter". Unrecognized strategy names run the default variant.
type Request struct {
	Series    domain.Series
	Strategy  string
	Values    map[string]any
	Benchmark domain.Series
	Weekly    domain.Series
}

// Summary is the fixed metric record produced by one backtest. Metrics that
// are undefined for the run (for example Sharpe on a flat equity curve) are
// NaN.
type Summary struct {
	FinalValue float64
	Sharpe     float64
	MaxDDPct   float64
	MaxDDLen   int
	Trades     int
	WinRatePct float64
	CAGRPct    float64
}

// Run executes the strategy over the request's series. A run with zero
// trades is not an error: it returns a Summary with Trades == 0 and NaN
// performance fields where undefined. Run errors only when the input is
// unusable.
func Run(req Request, cfg Config) (*Summary, error) {
	if len(req.Series) < 2 {
		return nil, fmt.Errorf("backtest: series too short (%d bars)", len(req.Series))
	}

	kind := strategy.KindForName(req.Strategy)
	params := strategy.FromValues(kind, req.Values)

	strat, err := strategy.New(kind, params, req.Series)
	if err != nil {
		return nil, err
	}

	sim := newSimulation(req, params, cfg)
	equity := sim.run(strat)

	s := statsFromEquity(equity, cfg.StartCash)
	s.Trades = sim.closedTrades + sim.openTrades()
	s.WinRatePct = 100.0 * float64(sim.wins) / math.Max(1, float64(s.Trades))
	return s, nil
}

// simulation holds the mutable broker state for one run.
type simulation struct {
	series domain.Series
	params strategy.Params
	cfg    Config

	cash       float64
	qty        int
	entryPrice float64
	entryComm  float64

	closedTrades int
	wins         int

	atr      []float64
	regimeOK func(i int) bool
	weeklyOK func(i int) bool
}

func newSimulation(req Request, params strategy.Params, cfg Config) *simulation {
	sim := &simulation{
		series: req.Series,
		params: params,
		cfg:    cfg,
		cash:   cfg.StartCash,
	}

	if params.UseATRSizer || params.StopLossPct > 0 {
		sim.atr = indicator.ATR(params.ATRPeriod, req.Series.Highs(), req.Series.Lows(), req.Series.Closes())
	}

	sim.regimeOK = allowAll
	if params.UseRegime && len(req.Benchmark) > 0 {
		sim.regimeOK = newFeedFilter(req.Series, req.Benchmark, params.RegimeMA)
	}

	sim.weeklyOK = allowAll
	if params.UseWeeklyFilter {
		weekly := req.Weekly
		if len(weekly) == 0 {
			weekly = ResampleWeekly(req.Series)
		}
		if len(weekly) > 0 {
			sim.weeklyOK = newFeedFilter(req.Series, weekly, params.WeeklyMA)
		}
	}

	return sim
}

// run walks the series bar by bar and returns the per-bar equity curve.
func (sim *simulation) run(strat strategy.Strategy) []float64 {
	n := len(sim.series)
	equity := make([]float64, n)

	for i := 0; i < n; i++ {
		bar := sim.series[i]

		if sim.qty > 0 {
			// Protective exits fire intra-bar off the entry price.
			if exited := sim.checkProtectiveExits(bar); !exited {
				if strat.ExitLong(i) {
					sim.sell(bar.Close)
				}
			}
		} else if i >= strat.Warmup() && strat.EnterLong(i) && sim.regimeOK(i) && sim.weeklyOK(i) {
			sim.buy(i, bar.Close)
		}

		equity[i] = sim.cash + float64(sim.qty)*bar.Close
	}

	return equity
}

// positionSize computes the share count for an entry: a fixed stake, or ATR
// risk sizing when enabled. Returns zero when no affordable size exists.
func (sim *simulation) positionSize(i int, price float64) int {
	if price <= 0 {
		return 0
	}

	qty := sim.params.Stake
	if sim.params.UseATRSizer {
		if sim.atr == nil || math.IsNaN(sim.atr[i]) || sim.atr[i] <= 0 {
			return 0
		}
		accountValue := sim.cash
		riskPerTrade := accountValue * sim.params.RiskPct
		riskPerShare := math.Max(1e-9, sim.atr[i]*sim.params.ATRMult)
		qty = int(riskPerTrade / riskPerShare)
	}

	// Clamp to what the cash balance can actually carry.
	maxAffordable := int(sim.cash / (price * (1 + sim.cfg.Commission)))
	if qty > maxAffordable {
		qty = maxAffordable
	}
	if qty < 0 {
		qty = 0
	}
	return qty
}

func (sim *simulation) buy(i int, close float64) {
	price := close * (1 + sim.cfg.SlippagePerc)
	qty := sim.positionSize(i, price)
	if qty <= 0 {
		return
	}

	notional := price * float64(qty)
	comm := notional * sim.cfg.Commission
	sim.cash -= notional + comm
	sim.qty = qty
	sim.entryPrice = price
	sim.entryComm = comm
}

func (sim *simulation) sell(close float64) {
	sim.sellAt(close * (1 - sim.cfg.SlippagePerc))
}

// sellAt closes the open position at the given fill price (already slipped
// or a protective stop/limit level) and books the round trip.
func (sim *simulation) sellAt(price float64) {
	notional := price * float64(sim.qty)
	comm := notional * sim.cfg.Commission
	sim.cash += notional - comm

	pnl := (price-sim.entryPrice)*float64(sim.qty) - sim.entryComm - comm
	sim.closedTrades++
	if pnl > 0 {
		sim.wins++
	}

	sim.qty = 0
	sim.entryPrice = 0
	sim.entryComm = 0
}

// checkProtectiveExits applies stop-loss and take-profit levels against the
// bar's range. Reports whether the position was closed.
func (sim *simulation) checkProtectiveExits(bar domain.Bar) bool {
	if sim.params.StopLossPct > 0 {
		stop := sim.entryPrice * (1 - sim.params.StopLossPct)
		if bar.Low <= stop {
			sim.sellAt(stop)
			return true
		}
	}
	if sim.params.TakeProfitPct > 0 {
		target := sim.entryPrice * (1 + sim.params.TakeProfitPct)
		if bar.High >= target {
			sim.sellAt(target)
			return true
		}
	}
	return false
}

// openTrades reports whether a position is still open at the end of the run
// (counted as a trade, matching the trade analyzer's total).
func (sim *simulation) openTrades() int {
	if sim.qty > 0 {
		return 1
	}
	return 0
}

func allowAll(int) bool { return true }

// newFeedFilter builds an entry filter from an auxiliary feed: entries are
// allowed while the feed's close sits above its own moving average. Bars
// with no feed history yet, and feed bars still inside the moving-average
// warm-up, do not block entries (no-filter fallback).
func newFeedFilter(main, feed domain.Series, maPeriod int) func(i int) bool {
	closes := feed.Closes()
	ma := indicator.SMA(maPeriod, closes)

	// Precompute, for every main bar, the latest feed bar at or before it.
	idx := make([]int, len(main))
	j := -1
	for i, bar := range main {
		for j+1 < len(feed) && !feed[j+1].Timestamp.After(bar.Timestamp) {
			j++
		}
		idx[i] = j
	}

	return func(i int) bool {
		k := idx[i]
		if k < 0 || math.IsNaN(ma[k]) {
			return true
		}
		return closes[k] > ma[k]
	}
}
