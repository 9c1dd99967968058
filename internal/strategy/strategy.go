// Package strategy defines the sealed set of trading strategy variants and
// the rule interface consumed by the backtest engine and signal scanner.
package strategy

import (
	"fmt"

	"tradelab/internal/domain"
)

// Kind identifies one of the built-in strategy variants. The set is closed:
// the engine and scanner switch over it exhaustively.
type Kind int

// Strategy variants.
const (
	SMACross Kind = iota
	EMACross
	DonchianBreakout
	MACDTrend
	RSIBollinger
)

// kindNames maps each Kind to its display name. The names are the
// user-facing identifiers accepted by the CLIs and stored with results.
var kindNames = map[Kind]string{
	SMACross:         "SMA Cross",
	EMACross:         "EMA Cross",
	DonchianBreakout: "Donchian Breakout",
	MACDTrend:        "MACD Trend",
	RSIBollinger:     "RSI(2) @ Bollinger",
}

// String returns the display name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "SMA Cross"
}

// KindForName maps a strategy name to its Kind. Unrecognized names map to
// SMACross, the documented default, rather than failing.
func KindForName(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return SMACross
}

// Names returns the display names of every variant in declaration order.
func Names() []string {
	out := make([]string, 0, len(kindNames))
	for k := SMACross; k <= RSIBollinger; k++ {
		out = append(out, kindNames[k])
	}
	return out
}

// Strategy is a rule set bound to a single price series. EnterLong and
// ExitLong answer whether the rules fire at bar index i; during indicator
// warm-up both return false.
type Strategy interface {
	// Kind returns the variant this strategy implements.
	Kind() Kind

	// Warmup returns the number of leading bars the rules need before they
	// can fire.
	Warmup() int

	// EnterLong reports whether the entry rule fires at bar i.
	EnterLong(i int) bool

	// ExitLong reports whether the exit rule fires at bar i.
	ExitLong(i int) bool
}

// New binds the given variant to a series with the given parameters,
// precomputing every indicator the rules consult.
func New(kind Kind, p Params, series domain.Series) (Strategy, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("strategy %s: empty series", kind)
	}

	switch kind {
	case SMACross:
		return newCrossover(SMACross, simpleAvg, p, series), nil
	case EMACross:
		return newCrossover(EMACross, exponentialAvg, p, series), nil
	case DonchianBreakout:
		return newDonchian(p, series), nil
	case MACDTrend:
		return newMACDTrend(p, series), nil
	case RSIBollinger:
		return newRSIBollinger(p, series), nil
	default:
		return newCrossover(SMACross, simpleAvg, p, series), nil
	}
}
