// Scan a folder of daily bars for fresh strategy signals, apply filter
// conditions, and print the ranked rows.
//
// Usage:
//
//	tradelab-scan -data ./csv -strategy "Donchian Breakout" -rr-min 1.5
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"text/tabwriter"
	"time"

	"tradelab/internal/config"
	"tradelab/internal/scanner"
	"tradelab/internal/store"
	"tradelab/internal/strategy"
	"tradelab/internal/util"
)

func main() {
	var (
		cfgPath   = flag.String("config", defaultConfigPath(), "config file path")
		dataDir   = flag.String("data", "", "folder of <SYMBOL>.csv files (defaults to storage.data_dir)")
		useAdj    = flag.Bool("adj", false, "use adjusted close")
		startDate = flag.String("start", "", "cut bars before this date (YYYY-MM-DD)")
		strat     = flag.String("strategy", "SMA Cross", "strategy name")
		paramsStr = flag.String("params", "{}", "strategy parameters as JSON")

		macdCross  = flag.Bool("macd-cross", false, "require a fresh MACD cross up")
		bbSqueeze  = flag.Bool("bb-squeeze", false, "require a Bollinger band squeeze")
		bbThr      = flag.Float64("bb-thr", 0.05, "band width threshold for -bb-squeeze")
		breakout   = flag.Bool("breakout", false, "require a close above the upper Bollinger band")
		stochCross = flag.Bool("stoch-cross", false, "require a fresh stochastic cross up")
		atrMin     = flag.Float64("atr-min", 0, "minimum ATR as % of price")
		rrMin      = flag.Float64("rr-min", -1, "minimum reward/risk (overrides config)")
		rrTarget   = flag.String("rr-target", "", "target level: atr, boll_mid, donchian_high (overrides config)")
	)
	flag.Parse()

	cfg := loadConfig(*cfgPath)
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	util.SetDefault(logger)

	dir := *dataDir
	if dir == "" {
		dir = cfg.Storage.DataDir
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(*paramsStr), &values); err != nil {
		log.Fatalf("bad -params: %v", err)
	}
	kind := strategy.KindForName(*strat)
	params := strategy.FromValues(kind, values)

	opts := scanner.Options{
		MACDCross:   *macdCross,
		BBSqueeze:   *bbSqueeze,
		BBThreshold: *bbThr,
		Breakout:    *breakout,
		StochCross:  *stochCross,
		ATRMinPct:   *atrMin,
		RRMin:       cfg.Scan.RRMin,
		RRTarget:    cfg.Scan.RRTarget,
	}
	if *rrMin >= 0 {
		opts.RRMin = *rrMin
	}
	if *rrTarget != "" {
		opts.RRTarget = *rrTarget
	}

	start := time.Time{}
	if *startDate != "" {
		t, err := time.Parse("2006-01-02", *startDate)
		if err != nil {
			log.Fatalf("bad -start: %v", err)
		}
		start = t
	}

	ctx := context.Background()
	cs := store.NewCSVStore(dir, *useAdj)
	symbols, data, err := store.LoadUniverse(ctx, cs, start)
	if err != nil {
		log.Fatalf("loading universe: %v", err)
	}
	if len(symbols) == 0 {
		log.Fatalf("no symbols found in %s", dir)
	}

	rows := make([]scanner.Row, 0, len(symbols))
	for _, sym := range symbols {
		rows = append(rows, scanner.Evaluate(sym, data[sym], kind, params, opts))
	}
	scanner.Rank(rows)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Symbol\tPass\tSignal\tAge\tPrice@Signal\tRR\tNote")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%t\t%s\t%d\t%s\t%.2f\t%s\n",
			r.Symbol, r.Pass, r.Signal, r.Age, fmtPrice(r.PriceAt), r.RR, r.Note)
	}
	w.Flush()

	var passed int
	for _, r := range rows {
		if r.Pass {
			passed++
		}
	}
	fmt.Printf("\nScan done: %d/%d passed\n", passed, len(rows))
}

func fmtPrice(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
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
