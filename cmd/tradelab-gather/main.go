// Fetch daily bars from the Alpaca market-data API into the Parquet bar
// store.
//
// Usage:
//
//	tradelab-gather -symbols AAPL,MSFT,SPY -start 2020-01-01
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tradelab/internal/config"
	"tradelab/internal/gather"
	"tradelab/internal/store"
	"tradelab/internal/util"
)

func main() {
	var (
		cfgPath     = flag.String("config", defaultConfigPath(), "config file path")
		symbolsCSV  = flag.String("symbols", "", "comma-separated symbol list")
		symbolsFile = flag.String("symbols-file", "", "file with one symbol per line")
		startDate   = flag.String("start", "2015-01-01", "fetch window start (YYYY-MM-DD)")
		endDate     = flag.String("end", "", "fetch window end (YYYY-MM-DD), default today")
		batchSize   = flag.Int("batch", 200, "symbols per API call")
	)
	flag.Parse()

	cfg := loadConfig(*cfgPath)
	logger := util.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	util.SetDefault(logger)

	symbols := splitSymbols(*symbolsCSV)
	if *symbolsFile != "" {
		fromFile, err := readSymbolsFile(*symbolsFile)
		if err != nil {
			log.Fatalf("reading -symbols-file: %v", err)
		}
		symbols = append(symbols, fromFile...)
	}
	if len(symbols) == 0 {
		log.Fatal("no symbols: pass -symbols or -symbols-file")
	}

	window, err := parseWindow(*startDate, *endDate)
	if err != nil {
		log.Fatalf("%v", err)
	}

	pstore := store.NewParquetStore(cfg.Storage.DataDir)
	g := gather.NewDailyBarGatherer(
		cfg.Alpaca.APIKey,
		cfg.Alpaca.APISecret,
		cfg.Alpaca.DataURL,
		pstore,
		symbols,
		window,
		*batchSize,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := g.Run(ctx); err != nil {
		log.Fatalf("gatherer error: %v", err)
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if sym := strings.TrimSpace(part); sym != "" {
			out = append(out, sym)
		}
	}
	return out
}

func readSymbolsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if sym := strings.TrimSpace(line); sym != "" && !strings.HasPrefix(sym, "#") {
			out = append(out, sym)
		}
	}
	return out, nil
}

func parseWindow(start, end string) (gather.DateRange, error) {
	var w gather.DateRange
	var err error
	if w.Start, err = time.Parse("2006-01-02", start); err != nil {
		return w, err
	}
	if end != "" {
		if w.End, err = time.Parse("2006-01-02", end); err != nil {
			return w, err
		}
	}
	return w, nil
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
