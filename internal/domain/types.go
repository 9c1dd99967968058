// Package domain defines the core data types shared across the tradelab
// platform: OHLCV bars, price series, and trading signals.
package domain

import (
	"fmt"
	"time"
)

// Bar is a single OHLCV bar.
type Bar struct {
	Symbol    string
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	AdjClose  float64
	Volume    int64
}

// Series is an ordered sequence of bars for one symbol. Timestamps are
// strictly increasing and OHLC values non-negative; Validate enforces both.
type Series []Bar

// Validate checks the series invariants: strictly increasing timestamps with
// no duplicates, and non-negative OHLC values.
func (s Series) Validate() error {
	for i, b := range s {
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 {
			return fmt.Errorf("bar %d (%s): negative OHLC value", i, b.Timestamp.Format("2006-01-02"))
		}
		if i > 0 && !s[i-1].Timestamp.Before(b.Timestamp) {
			return fmt.Errorf("bar %d (%s): timestamp not strictly increasing", i, b.Timestamp.Format("2006-01-02"))
		}
	}
	return nil
}

// Closes returns the close price of every bar.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high price of every bar.
func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.High
	}
	return out
}

// Lows returns the low price of every bar.
func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Low
	}
	return out
}

// Slice returns the sub-series [start, end). Bounds are clamped to the
// series length.
func (s Series) Slice(start, end int) Series {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return nil
	}
	return s[start:end]
}

// SignalKind is the discrete outcome of a signal evaluation.
type SignalKind string

// Signal kinds.
const (
	SignalHold SignalKind = "Hold"
	SignalBuy  SignalKind = "Buy"
	SignalSell SignalKind = "Sell"
)
