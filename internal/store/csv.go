package store

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"tradelab/internal/domain"
)

// Compile-time interface check.
var _ BarStore = (*CSVStore)(nil)

// CSVStore implements BarStore over a folder of <SYMBOL>.csv files with the
// header Date,Open,High,Low,Close,Adj Close,Volume. With UseAdj set, the
// adjusted close is served as the close so backtests see split/dividend
// adjusted prices.
type CSVStore struct {
	Dir    string
	UseAdj bool
}

// NewCSVStore creates a CSVStore over the given folder.
func NewCSVStore(dir string, useAdj bool) *CSVStore {
	return &CSVStore{Dir: dir, UseAdj: useAdj}
}

var csvHeader = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

// ListSymbols returns the symbols of every .csv file in the folder, sorted.
func (s *CSVStore) ListSymbols(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(name), ".csv") {
			continue
		}
		symbols = append(symbols, strings.ToUpper(strings.TrimSuffix(name, filepath.Ext(name))))
	}
	sort.Strings(symbols)
	return symbols, nil
}

// ReadBars reads the symbol's file and returns bars within [start, end].
func (s *CSVStore) ReadBars(_ context.Context, symbol string, start, end time.Time) (domain.Series, error) {
	rows, err := s.readFile(symbol)
	if err != nil {
		return nil, err
	}

	var bars domain.Series
	for _, b := range rows {
		if b.Timestamp.Before(start) || b.Timestamp.After(end) {
			continue
		}
		if s.UseAdj {
			b.Close = b.AdjClose
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// WriteBars merges bars into the per-symbol files, deduplicating on
// timestamp with incoming bars winning.
func (s *CSVStore) WriteBars(_ context.Context, bars []domain.Bar) error {
	groups := make(map[string][]domain.Bar)
	for _, b := range bars {
		groups[strings.ToUpper(b.Symbol)] = append(groups[strings.ToUpper(b.Symbol)], b)
	}

	for sym, incoming := range groups {
		existing, err := s.readFile(sym)
		if err != nil && !os.IsNotExist(err) {
			return err
		}

		byTS := make(map[int64]domain.Bar, len(existing)+len(incoming))
		for _, b := range existing {
			byTS[b.Timestamp.Unix()] = b
		}
		for _, b := range incoming {
			byTS[b.Timestamp.Unix()] = b
		}
		merged := make(domain.Series, 0, len(byTS))
		for _, b := range byTS {
			merged = append(merged, b)
		}
		sort.Slice(merged, func(i, j int) bool {
			return merged[i].Timestamp.Before(merged[j].Timestamp)
		})

		if err := s.writeFile(sym, merged); err != nil {
			return fmt.Errorf("writing bars for %s: %w", sym, err)
		}
	}
	return nil
}

func (s *CSVStore) path(symbol string) string {
	return filepath.Join(s.Dir, strings.ToUpper(symbol)+".csv")
}

func (s *CSVStore) readFile(symbol string) (domain.Series, error) {
	f, err := os.Open(s.path(symbol))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path(symbol), err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	col := columnIndex(records[0])
	var bars domain.Series
	for _, rec := range records[1:] {
		b, err := parseBarRow(symbol, rec, col)
		if err != nil {
			// Malformed rows are skipped, not fatal.
			continue
		}
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool {
		return bars[i].Timestamp.Before(bars[j].Timestamp)
	})
	return bars, nil
}

func (s *CSVStore) writeFile(symbol string, bars domain.Series) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(s.path(symbol))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Timestamp.Format("2006-01-02"),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			formatPrice(b.AdjClose),
			strconv.FormatInt(b.Volume, 10),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// columnIndex maps header names to positions so files with reordered or
// extra columns still load.
func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return col
}

func parseBarRow(symbol string, rec []string, col map[string]int) (domain.Bar, error) {
	field := func(name string) (string, error) {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return "", fmt.Errorf("missing column %q", name)
		}
		return strings.TrimSpace(rec[i]), nil
	}
	num := func(name string) (float64, error) {
		s, err := field(name)
		if err != nil {
			return 0, err
		}
		return strconv.ParseFloat(s, 64)
	}

	dateStr, err := field("date")
	if err != nil {
		return domain.Bar{}, err
	}
	ts, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return domain.Bar{}, err
	}

	b := domain.Bar{Symbol: strings.ToUpper(symbol), Timestamp: ts.UTC()}
	if b.Open, err = num("open"); err != nil {
		return domain.Bar{}, err
	}
	if b.High, err = num("high"); err != nil {
		return domain.Bar{}, err
	}
	if b.Low, err = num("low"); err != nil {
		return domain.Bar{}, err
	}
	if b.Close, err = num("close"); err != nil {
		return domain.Bar{}, err
	}
	if b.AdjClose, err = num("adj close"); err != nil {
		// Files without an adjusted close fall back to the raw close.
		b.AdjClose = b.Close
	}
	if volStr, err := field("volume"); err == nil {
		if v, err := strconv.ParseFloat(volStr, 64); err == nil {
			b.Volume = int64(v)
		}
	}
	return b, nil
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
