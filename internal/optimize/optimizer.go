// Package optimize runs a grid search with walk-forward validation: every
// parameter combination is backtested on every fold of every symbol with
// enough history, scored by a selectable objective, aggregated, and ranked.
package optimize

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"runtime"
	"sort"
	"sync"

	"tradelab/internal/backtest"
	"tradelab/internal/domain"
	"tradelab/internal/strategy"
)

// Fatal run conditions. Anything below these is absorbed per triple and
// only shows up as fewer contributing samples.
var (
	ErrEmptyGrid     = errors.New("optimize: empty parameter grid")
	ErrEmptyUniverse = errors.New("optimize: empty symbol universe")
	ErrBadObjective  = errors.New("optimize: invalid objective")
)

// Settings are the run-level optimization knobs.
type Settings struct {
	UniverseLimit int     // cap on symbols taken from the universe, 0 = all
	Folds         int     // walk-forward fold count
	OOSFrac       float64 // out-of-sample fraction per fold
	MinTrades     int     // folds trading less than this do not contribute
	Objective     Objective
	MaxResults    int // ranked combinations kept
	MinBars       int // symbols with fewer bars are skipped
	Workers       int // concurrent combinations, 0 = NumCPU
}

// DefaultSettings mirrors the standard research run.
func DefaultSettings() Settings {
	return Settings{
		Folds:      3,
		OOSFrac:    0.2,
		Objective:  Sharpe,
		MaxResults: 50,
		MinBars:    150,
	}
}

// Result is one ranked combination. Params is the combination serialized as
// JSON in range-spec key order. Aggregated metrics are unweighted means
// over every (symbol, fold) that passed the trade-count filter.
type Result struct {
	Rank       int
	Params     string
	Score      float64
	Sharpe     float64
	CAGRPct    float64
	MaxDDPct   float64
	WinRatePct float64
	Trades     int
	Universe   int
	Folds      int
}

// Optimizer drives one optimization run. Benchmark is the optional regime
// feed shared across all backtests; combinations that do not enable the
// regime filter ignore it.
type Optimizer struct {
	Strategy  string
	Ranges    *Ranges
	Settings  Settings
	Backtest  backtest.Config
	Benchmark domain.Series
	Logger    *slog.Logger
}

// Run evaluates the full grid over the universe and returns the ranked
// results. Symbols are taken in the given order; series with fewer than
// MinBars bars are skipped. An empty grid or empty universe aborts the run
// with no partial results, as does context cancellation.
func (o *Optimizer) Run(ctx context.Context, symbols []string, data map[string]domain.Series) ([]Result, error) {
	log := o.Logger
	if log == nil {
		log = slog.Default()
	}

	grid := Grid(o.Ranges)
	if len(grid) == 0 {
		return nil, ErrEmptyGrid
	}
	if limit := o.Settings.UniverseLimit; limit > 0 && limit < len(symbols) {
		symbols = symbols[:limit]
	}
	if len(symbols) == 0 {
		return nil, ErrEmptyUniverse
	}

	log.Info("optimize run",
		"strategy", o.Strategy,
		"combinations", len(grid),
		"universe", len(symbols),
		"objective", o.Settings.Objective.String())

	// Combination results land in a grid-indexed slice so worker
	// completion order cannot perturb the output.
	rows := make([]*comboStats, len(grid))

	workers := o.Settings.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(grid) {
		workers = len(grid)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rows[i] = o.evalCombo(log, grid[i], symbols, data)
			}
		}()
	}

feed:
	for i := range grid {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Fold count is reported nominally, from a reference series length,
	// not per symbol.
	nominalFolds := len(Splits(1000, o.Settings.Folds, o.Settings.OOSFrac))

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		results = append(results, Result{
			Params:     row.params,
			Score:      round4(row.score),
			Sharpe:     round4(row.sharpe),
			CAGRPct:    round4(row.cagr),
			MaxDDPct:   round4(row.maxDD),
			WinRatePct: round2(row.winRate),
			Trades:     int(row.trades),
			Universe:   len(symbols),
			Folds:      nominalFolds,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if keep := o.Settings.MaxResults; keep > 0 && len(results) > keep {
		results = results[:keep]
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	log.Info("optimize done", "ranked", len(results))
	return results, nil
}

// comboStats accumulates one combination's contributing samples.
type comboStats struct {
	params  string
	score   float64
	sharpe  float64
	cagr    float64
	maxDD   float64
	winRate float64
	trades  float64
}

// evalCombo backtests one combination over every (symbol, fold) triple and
// aggregates. Returns nil when no triple produced a usable, trade-count
// passing summary, which drops the combination from the ranking.
func (o *Optimizer) evalCombo(log *slog.Logger, combo Combo, symbols []string, data map[string]domain.Series) *comboStats {
	kind := strategy.KindForName(o.Strategy)
	params := strategy.FromValues(kind, combo)

	var scores []float64
	var agg comboStats

	for _, sym := range symbols {
		series := data[sym]
		n := len(series)
		if n < o.Settings.MinBars {
			continue
		}
		for _, fold := range Splits(n, o.Settings.Folds, o.Settings.OOSFrac) {
			sub := series.Slice(fold.TrainStart, fold.TestEnd)
			summ := o.runOne(log, sym, sub, combo, params)
			if summ == nil {
				continue
			}
			if summ.Trades < o.Settings.MinTrades {
				continue
			}
			scores = append(scores, Score(summ, o.Settings.Objective))
			agg.sharpe += nz(summ.Sharpe)
			agg.cagr += nz(summ.CAGRPct)
			agg.maxDD += nz(summ.MaxDDPct)
			agg.winRate += nz(summ.WinRatePct)
			agg.trades += float64(summ.Trades)
		}
	}
	if len(scores) == 0 {
		return nil
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	count := float64(len(scores))
	agg.score = sum / count
	agg.sharpe /= count
	agg.cagr /= count
	agg.maxDD /= count
	agg.winRate /= count
	agg.trades /= count
	agg.params = encodeParams(o.Ranges.Keys(), combo)
	return &agg
}

// runOne executes a single (symbol, fold) backtest. Errors and panics are
// absorbed: the triple simply contributes nothing.
func (o *Optimizer) runOne(log *slog.Logger, sym string, sub domain.Series, combo Combo, p strategy.Params) (s *backtest.Summary) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("backtest panic", "symbol", sym, "panic", r)
			s = nil
		}
	}()

	req := backtest.Request{
		Series:   sub,
		Strategy: o.Strategy,
		Values:   combo,
	}
	if p.UseRegime {
		req.Benchmark = o.Benchmark
	}
	if p.UseWeeklyFilter {
		req.Weekly = backtest.ResampleWeekly(sub)
	}

	summ, err := backtest.Run(req, o.Backtest)
	if err != nil {
		log.Debug("backtest failed", "symbol", sym, "err", err)
		return nil
	}
	return summ
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }
func round2(v float64) float64 { return math.Round(v*1e2) / 1e2 }
