package gather

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"tradelab/internal/domain"
	"tradelab/internal/store"
	"tradelab/internal/util"
)

// Compile-time interface check.
var _ Gatherer = (*DailyBarGatherer)(nil)

// DailyBarGatherer fetches daily OHLCV bars for an explicit symbol list via
// the Alpaca market-data API and writes them to the bar store.
type DailyBarGatherer struct {
	client    *marketdata.Client
	store     store.BarStore
	symbols   []string
	window    DateRange
	batchSize int
	limiter   *util.RateLimiter
	log       *slog.Logger
}

// NewDailyBarGatherer creates a DailyBarGatherer for the given credentials,
// symbol list, and date window. batchSize caps the symbols per API call.
func NewDailyBarGatherer(apiKey, apiSecret, dataURL string, s store.BarStore, symbols []string, window DateRange, batchSize int) *DailyBarGatherer {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	if batchSize <= 0 {
		batchSize = 200
	}

	upper := make([]string, len(symbols))
	for i, sym := range symbols {
		upper[i] = strings.ToUpper(strings.TrimSpace(sym))
	}

	return &DailyBarGatherer{
		client:    marketdata.NewClient(opts),
		store:     s,
		symbols:   upper,
		window:    window,
		batchSize: batchSize,
		limiter:   util.NewRateLimiter(200),
		log:       slog.Default().With("gatherer", "daily"),
	}
}

// Name returns the gatherer identifier.
func (g *DailyBarGatherer) Name() string { return "daily" }

// Run fetches the configured window for every symbol, batch by batch. A
// batch that still fails after retries is logged and skipped so the rest of
// the universe is not lost with it.
func (g *DailyBarGatherer) Run(ctx context.Context) error {
	if len(g.symbols) == 0 {
		return fmt.Errorf("gather: no symbols configured")
	}

	end := g.window.End
	if end.IsZero() {
		end = time.Now().UTC()
	}

	g.log.Info("starting daily gather",
		"symbols", len(g.symbols),
		"start", g.window.Start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"))

	var fetched, failed int
	for i := 0; i < len(g.symbols); i += g.batchSize {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		j := i + g.batchSize
		if j > len(g.symbols) {
			j = len(g.symbols)
		}
		batch := g.symbols[i:j]

		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}

		var bars []domain.Bar
		err := util.Retry(ctx, 3, 2*time.Second, func() error {
			var ferr error
			bars, ferr = g.fetchMultiBars(batch, g.window.Start, end)
			return ferr
		})
		if err != nil {
			g.log.Error("batch fetch failed", "first", batch[0], "count", len(batch), "err", err)
			failed += len(batch)
			continue
		}

		if len(bars) > 0 {
			if err := g.store.WriteBars(ctx, bars); err != nil {
				return fmt.Errorf("writing bars: %w", err)
			}
		}
		fetched += len(bars)
		g.log.Info("batch done", "first", batch[0], "count", len(batch), "bars", len(bars))
	}

	g.log.Info("daily gather done", "bars", fetched, "failedSymbols", failed)
	return nil
}

func (g *DailyBarGatherer) fetchMultiBars(symbols []string, start, end time.Time) ([]domain.Bar, error) {
	multiBars, err := g.client.GetMultiBars(symbols, marketdata.GetBarsRequest{
		TimeFrame: marketdata.OneDay,
		Start:     start,
		End:       end,
		Feed:      "sip",
	})
	if err != nil {
		return nil, fmt.Errorf("GetMultiBars: %w", err)
	}

	var bars []domain.Bar
	for symbol, alpacaBars := range multiBars {
		for _, ab := range alpacaBars {
			bars = append(bars, domain.Bar{
				Symbol:    strings.ToUpper(symbol),
				Timestamp: ab.Timestamp,
				Open:      ab.Open,
				High:      ab.High,
				Low:       ab.Low,
				Close:     ab.Close,
				AdjClose:  ab.Close,
				Volume:    int64(ab.Volume),
			})
		}
	}
	return bars, nil
}
