package strategy

import (
	"tradelab/internal/domain"
	"tradelab/internal/indicator"
)

// avgKind selects the moving-average flavour used by the generic crossover
// rule. SMA Cross and EMA Cross are the same strategy instantiated with
// different averages.
type avgKind int

const (
	simpleAvg avgKind = iota
	exponentialAvg
)

// crossover holds a dual moving-average rule: long while the fast average
// is above the slow one.
type crossover struct {
	kind     Kind
	slow     int
	fast     []float64
	slowLine []float64
}

func newCrossover(kind Kind, avg avgKind, p Params, series domain.Series) *crossover {
	closes := series.Closes()

	var fast, slow []float64
	switch avg {
	case exponentialAvg:
		fast = indicator.EMA(p.Fast, closes)
		slow = indicator.EMA(p.Slow, closes)
	default:
		fast = indicator.SMA(p.Fast, closes)
		slow = indicator.SMA(p.Slow, closes)
	}

	return &crossover{
		kind:     kind,
		slow:     p.Slow,
		fast:     fast,
		slowLine: slow,
	}
}

func (c *crossover) Kind() Kind  { return c.kind }
func (c *crossover) Warmup() int { return c.slow }

// EnterLong fires while the fast average is above the slow. NaN warm-up
// values compare false, so the rule is silent until both windows fill.
func (c *crossover) EnterLong(i int) bool {
	return c.fast[i] > c.slowLine[i]
}

func (c *crossover) ExitLong(i int) bool {
	return c.fast[i] < c.slowLine[i]
}
