// Package store persists and retrieves the application's durable data:
// daily OHLCV bars (Parquet or CSV folders) and optimization runs with
// their ranked results (SQLite).
package store

import (
	"context"
	"time"

	"tradelab/internal/domain"
)

// BarStore persists and retrieves daily OHLCV bar data.
type BarStore interface {
	// WriteBars persists a batch of bars, merging with existing data.
	WriteBars(ctx context.Context, bars []domain.Bar) error

	// ReadBars returns the symbol's bars within [start, end], ordered by
	// timestamp.
	ReadBars(ctx context.Context, symbol string, start, end time.Time) (domain.Series, error)

	// ListSymbols returns all distinct symbols available, sorted.
	ListSymbols(ctx context.Context) ([]string, error)
}

// LoadUniverse reads every symbol's full history from a BarStore. Symbols
// whose reads fail are skipped. The returned slice preserves the store's
// symbol ordering for the symbols that loaded.
func LoadUniverse(ctx context.Context, bs BarStore, start time.Time) ([]string, map[string]domain.Series, error) {
	symbols, err := bs.ListSymbols(ctx)
	if err != nil {
		return nil, nil, err
	}
	end := time.Now().UTC().AddDate(1, 0, 0)

	var kept []string
	data := make(map[string]domain.Series, len(symbols))
	for _, sym := range symbols {
		series, err := bs.ReadBars(ctx, sym, start, end)
		if err != nil || len(series) == 0 {
			continue
		}
		kept = append(kept, sym)
		data[sym] = series
	}
	return kept, data, nil
}
