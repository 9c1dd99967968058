// Grid-search a strategy's parameters with walk-forward validation over a
// folder of daily bars, print the ranked combinations, and record the run
// in SQLite.
//
// Usage:
//
//	tradelab-optimize -data ./csv -strategy "SMA Cross" \
//	    -ranges '{"fast":[8,20,4],"slow":[20,60,10]}' -objective Sharpe
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"tradelab/internal/backtest"
	"tradelab/internal/config"
	"tradelab/internal/optimize"
	"tradelab/internal/store"
	"tradelab/internal/util"
)

func main() {
	var (
		cfgPath   = flag.String("config", defaultConfigPath(), "config file path")
		dataDir   = flag.String("data", "", "folder of <SYMBOL>.csv files (defaults to storage.data_dir)")
		useAdj    = flag.Bool("adj", false, "use adjusted close")
		startDate = flag.String("start", "", "cut bars before this date (YYYY-MM-DD)")
		strat     = flag.String("strategy", "SMA Cross", "strategy name")
		rangesStr = flag.String("ranges", "", "parameter ranges as JSON")
		objName   = flag.String("objective", "", "objective: Sharpe, CAGR, Return/DD, WinRate, Trades (or ordinal 0-4)")
		folds     = flag.Int("folds", -1, "walk-forward folds (overrides config)")
		oosFrac   = flag.Float64("oos", -1, "out-of-sample fraction per fold (overrides config)")
		minTrades = flag.Int("min-trades", -1, "minimum trades per fold (overrides config)")
		limit     = flag.Int("limit", -1, "universe symbol limit (overrides config)")
		workers   = flag.Int("workers", -1, "concurrent combinations (overrides config)")
		benchmark = flag.String("benchmark", "", "symbol whose bars feed the regime filter")
		noSave    = flag.Bool("no-save", false, "skip recording the run in SQLite")
	)
	flag.Parse()

	cfg := loadConfig(*cfgPath)
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	util.SetDefault(logger)

	dir := *dataDir
	if dir == "" {
		dir = cfg.Storage.DataDir
	}

	settings := optimize.Settings{
		UniverseLimit: cfg.Optimize.UniverseLimit,
		Folds:         cfg.Optimize.Folds,
		OOSFrac:       cfg.Optimize.OOSFrac,
		MinTrades:     cfg.Optimize.MinTrades,
		MaxResults:    cfg.Optimize.MaxResults,
		MinBars:       cfg.Optimize.MinBars,
		Workers:       cfg.Optimize.Workers,
	}
	if *folds >= 0 {
		settings.Folds = *folds
	}
	if *oosFrac >= 0 {
		settings.OOSFrac = *oosFrac
	}
	if *minTrades >= 0 {
		settings.MinTrades = *minTrades
	}
	if *limit >= 0 {
		settings.UniverseLimit = *limit
	}
	if *workers >= 0 {
		settings.Workers = *workers
	}

	obj, err := resolveObjective(*objName, cfg.Optimize.Objective)
	if err != nil {
		log.Fatalf("%v", err)
	}
	settings.Objective = obj

	ranges, err := optimize.ParseRanges(*rangesStr)
	if err != nil {
		log.Fatalf("bad -ranges: %v", err)
	}

	start := time.Time{}
	if *startDate != "" {
		t, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			log.Fatalf("bad -start: %v", err)
		}
		start = t
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cs := store.NewCSVStore(dir, *useAdj)
	symbols, data, err := store.LoadUniverse(ctx, cs, start)
	if err != nil {
		log.Fatalf("loading universe: %v", err)
	}
	sort.Strings(symbols)

	opt := &optimize.Optimizer{
		Strategy: *strat,
		Ranges:   ranges,
		Settings: settings,
		Backtest: backtest.Config{
			StartCash:    cfg.Backtest.StartCash,
			Commission:   cfg.Backtest.Commission,
			SlippagePerc: cfg.Backtest.SlippagePerc,
		},
		Logger: logger,
	}
	if *benchmark != "" {
		opt.Benchmark = data[*benchmark]
		if opt.Benchmark == nil {
			logger.Warn("benchmark symbol not in universe, regime filter disabled", "symbol", *benchmark)
		}
	}

	startedAt := time.Now().UTC()
	results, err := opt.Run(ctx, symbols, data)
	if err != nil {
		log.Fatalf("optimize: %v", err)
	}
	finishedAt := time.Now().UTC()

	printResults(results)
	fmt.Printf("\nOptimize done: %d combos\n", len(results))

	if *noSave || len(results) == 0 {
		return
	}
	rs, err := store.NewResultStore(cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatalf("opening result store: %v", err)
	}
	defer rs.Close()

	runID, err := rs.SaveRun(ctx, store.Run{
		Strategy:      *strat,
		Ranges:        *rangesStr,
		Objective:     settings.Objective.String(),
		Folds:         settings.Folds,
		OOSFrac:       settings.OOSFrac,
		MinTrades:     settings.MinTrades,
		UniverseLimit: settings.UniverseLimit,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
	}, results)
	if err != nil {
		log.Fatalf("saving run: %v", err)
	}
	fmt.Printf("Saved as run %d in %s\n", runID, cfg.Storage.SQLitePath)
}

// resolveObjective accepts a name, an ordinal string, or falls back to the
// configured ordinal.
func resolveObjective(flagVal string, cfgOrdinal int) (optimize.Objective, error) {
	if flagVal == "" {
		return optimize.ObjectiveFromOrdinal(cfgOrdinal)
	}
	if n, err := strconv.Atoi(flagVal); err == nil {
		return optimize.ObjectiveFromOrdinal(n)
	}
	obj, err := optimize.ParseObjective(flagVal)
	if err != nil && errors.Is(err, optimize.ErrBadObjective) {
		return 0, fmt.Errorf("bad -objective %q: %v", flagVal, err)
	}
	return obj, err
}

func printResults(results []optimize.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Rank\tScore\tSharpe\tCAGR%\tMaxDD%\tWin%\tTrades\tParams")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%.2f\t%.2f\t%.2f\t%d\t%s\n",
			r.Rank, r.Score, r.Sharpe, r.CAGRPct, r.MaxDDPct, r.WinRatePct, r.Trades, r.Params)
	}
	w.Flush()
}

func defaultConfigPath() string {
	if p := os.Getenv("TRADELAB_CONFIG"); p != "" {
		return p
	}
	return "config/tradelab.yaml"
}

func loadConfig(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default()
		}
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
