package optimize

import (
	"fmt"
	"math"

	"tradelab/internal/backtest"
)

// Objective selects the scalar used to score a fold's backtest summary.
type Objective int

// Objective selectors in wire order.
const (
	Sharpe Objective = iota
	CAGR
	ReturnOverDD
	WinRate
	Trades
	numObjectives
)

// SentinelScore is assigned when no usable summary exists, so such entries
// sort to the bottom of any ranking instead of breaking it.
const SentinelScore = -1e9

var objectiveNames = [...]string{"Sharpe", "CAGR", "Return/DD", "WinRate", "Trades"}

func (o Objective) String() string {
	if o < 0 || o >= numObjectives {
		return fmt.Sprintf("Objective(%d)", int(o))
	}
	return objectiveNames[o]
}

// ObjectiveFromOrdinal maps a numeric selector to an Objective. Out-of-range
// selectors are a configuration error, not a silent default.
func ObjectiveFromOrdinal(i int) (Objective, error) {
	if i < 0 || i >= int(numObjectives) {
		return 0, fmt.Errorf("%w: %d", ErrBadObjective, i)
	}
	return Objective(i), nil
}

// ParseObjective maps an objective name to its selector.
func ParseObjective(name string) (Objective, error) {
	for i, n := range objectiveNames {
		if n == name {
			return Objective(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadObjective, name)
}

// Score evaluates the objective on a summary. A nil summary scores the
// sentinel. NaN metric values, such as the Sharpe of a zero-trade run,
// count as zero.
func Score(s *backtest.Summary, o Objective) float64 {
	if s == nil {
		return SentinelScore
	}
	switch o {
	case CAGR:
		return nz(s.CAGRPct)
	case ReturnOverDD:
		return nz(s.CAGRPct) / math.Max(1e-6, nz(s.MaxDDPct))
	case WinRate:
		return nz(s.WinRatePct)
	case Trades:
		return float64(s.Trades)
	default:
		return nz(s.Sharpe)
	}
}

func nz(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
