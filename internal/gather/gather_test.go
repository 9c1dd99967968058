package gather

import (
	"context"
	"testing"

	"tradelab/internal/store"
)

func TestNewDailyBarGathererNormalizesSymbols(t *testing.T) {
	g := NewDailyBarGatherer("key", "secret", "", store.NewParquetStore(t.TempDir()),
		[]string{" aapl", "msft ", "SPY"}, DateRange{}, 0)

	want := []string{"AAPL", "MSFT", "SPY"}
	if len(g.symbols) != len(want) {
		t.Fatalf("len(symbols) = %d, want %d", len(g.symbols), len(want))
	}
	for i, sym := range want {
		if g.symbols[i] != sym {
			t.Errorf("symbols[%d] = %q, want %q", i, g.symbols[i], sym)
		}
	}
	if g.batchSize != 200 {
		t.Errorf("batchSize = %d, want default 200", g.batchSize)
	}
}

func TestRunNoSymbols(t *testing.T) {
	g := NewDailyBarGatherer("key", "secret", "", store.NewParquetStore(t.TempDir()),
		nil, DateRange{}, 100)
	if err := g.Run(context.Background()); err == nil {
		t.Error("Run with no symbols = nil error, want error")
	}
}
