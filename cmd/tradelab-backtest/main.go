// Run one strategy over every symbol in a data folder and print per-symbol
// summary rows.
//
// Usage:
//
//	tradelab-backtest -data ./csv -strategy "SMA Cross" -params '{"fast":10,"slow":20}'
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"tradelab/internal/backtest"
	"tradelab/internal/config"
	"tradelab/internal/store"
	"tradelab/internal/util"
)

type row struct {
	Symbol     string
	FinalValue float64
	Sharpe     float64
	MaxDDPct   float64
	WinRatePct float64
	Trades     int
	CAGRPct    float64
}

func main() {
	var (
		cfgPath   = flag.String("config", defaultConfigPath(), "config file path")
		dataDir   = flag.String("data", "", "folder of <SYMBOL>.csv files (defaults to storage.data_dir)")
		useAdj    = flag.Bool("adj", false, "use adjusted close")
		startDate = flag.String("start", "", "cut bars before this date (YYYY-MM-DD)")
		strat     = flag.String("strategy", "SMA Cross", "strategy name")
		paramsStr = flag.String("params", "{}", "strategy parameters as JSON")
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

	btCfg := backtest.Config{
		StartCash:    cfg.Backtest.StartCash,
		Commission:   cfg.Backtest.Commission,
		SlippagePerc: cfg.Backtest.SlippagePerc,
	}

	var rows []row
	for _, sym := range symbols {
		summ, err := backtest.Run(backtest.Request{
			Series:   data[sym],
			Strategy: *strat,
			Values:   values,
		}, btCfg)
		if err != nil {
			logger.Warn("backtest failed", "symbol", sym, "err", err)
			continue
		}
		rows = append(rows, row{
			Symbol:     sym,
			FinalValue: round2(summ.FinalValue),
			Sharpe:     summ.Sharpe,
			MaxDDPct:   round2(summ.MaxDDPct),
			WinRatePct: round2(summ.WinRatePct),
			Trades:     summ.Trades,
			CAGRPct:    round2(summ.CAGRPct),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		si, sj := sortSharpe(rows[i].Sharpe), sortSharpe(rows[j].Sharpe)
		if si != sj {
			return si > sj
		}
		return rows[i].Symbol < rows[j].Symbol
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Symbol\tFinal\tSharpe\tMaxDD%\tWin%\tTrades\tCAGR%")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%.2f\t%s\t%.2f\t%.2f\t%d\t%.2f\n",
			r.Symbol, r.FinalValue, fmtSharpe(r.Sharpe), r.MaxDDPct, r.WinRatePct, r.Trades, r.CAGRPct)
	}
	w.Flush()
	fmt.Printf("\nBacktest done: %d rows\n", len(rows))
}

// sortSharpe mirrors the ranking key: NaN sorts as zero, rounded to six
// decimals so near-ties fall back to the symbol order.
func sortSharpe(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*1e6) / 1e6
}

func fmtSharpe(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.4f", v)
}

func round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Round(v*100) / 100
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
