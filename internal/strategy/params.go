package strategy

import "strconv"

// Params is the full, immutable parameter record for a strategy run. Every
// field is populated before the strategy is constructed; nothing is mutated
// afterwards. Parameter combinations supply only the fields they tune and
// the rest keep the variant defaults.
type Params struct {
	// Moving-average crossover periods; also the MACD fast/slow periods.
	Fast int
	Slow int
	// MACD signal period.
	Signal int
	// Trend filter EMA period (MACD Trend).
	EMATrend int
	// Donchian channel periods.
	Upper int
	Lower int
	// RSI mean-reversion thresholds.
	RSIPeriod int
	RSIBuy    float64
	RSIExit   float64
	// Bollinger band settings.
	BBPeriod int
	BBK      float64
	// Position sizing.
	Stake       int
	UseATRSizer bool
	RiskPct     float64
	ATRPeriod   int
	ATRMult     float64
	// Exits.
	StopLossPct   float64
	TakeProfitPct float64
	LongOnly      bool
	// Optional entry filters.
	UseRegime       bool
	RegimeMA        int
	UseWeeklyFilter bool
	WeeklyMA        int
}

// DefaultParams returns the built-in defaults for the given variant. The
// crossover variants default to 10/20 periods while MACD Trend defaults to
// the conventional 12/26/9.
func DefaultParams(kind Kind) Params {
	p := Params{
		Fast:      10,
		Slow:      20,
		Signal:    9,
		EMATrend:  200,
		Upper:     20,
		Lower:     10,
		RSIPeriod: 2,
		RSIBuy:    10,
		RSIExit:   60,
		BBPeriod:  20,
		BBK:       2.0,
		Stake:     1,
		RiskPct:   0.01,
		ATRPeriod: 14,
		ATRMult:   2.0,
		LongOnly:  true,
		RegimeMA:  200,
		WeeklyMA:  200,
	}
	if kind == MACDTrend {
		p.Fast = 12
		p.Slow = 26
	}
	return p
}

// FromValues overlays a parameter combination onto the variant defaults.
// Keys use the tuning names accepted in range specifications; unknown keys
// are ignored so a shared grid can span variants with different parameter
// sets.
func FromValues(kind Kind, values map[string]any) Params {
	p := DefaultParams(kind)
	for key, v := range values {
		switch key {
		case "fast":
			p.Fast = intVal(v, p.Fast)
		case "slow":
			p.Slow = intVal(v, p.Slow)
		case "signal":
			p.Signal = intVal(v, p.Signal)
		case "ema_trend":
			p.EMATrend = intVal(v, p.EMATrend)
		case "upper":
			p.Upper = intVal(v, p.Upper)
		case "lower":
			p.Lower = intVal(v, p.Lower)
		case "rsi_p":
			p.RSIPeriod = intVal(v, p.RSIPeriod)
		case "rsi_buy":
			p.RSIBuy = floatVal(v, p.RSIBuy)
		case "rsi_exit":
			p.RSIExit = floatVal(v, p.RSIExit)
		case "bb_p":
			p.BBPeriod = intVal(v, p.BBPeriod)
		case "bb_k":
			p.BBK = floatVal(v, p.BBK)
		case "stake":
			p.Stake = intVal(v, p.Stake)
		case "use_atr_sizer":
			p.UseATRSizer = boolVal(v, p.UseATRSizer)
		case "risk_pct":
			p.RiskPct = floatVal(v, p.RiskPct)
		case "atr_period":
			p.ATRPeriod = intVal(v, p.ATRPeriod)
		case "atr_mult":
			p.ATRMult = floatVal(v, p.ATRMult)
		case "stop_loss_pct":
			p.StopLossPct = floatVal(v, p.StopLossPct)
		case "take_profit_pct":
			p.TakeProfitPct = floatVal(v, p.TakeProfitPct)
		case "long_only":
			p.LongOnly = boolVal(v, p.LongOnly)
		case "use_regime":
			p.UseRegime = boolVal(v, p.UseRegime)
		case "regime_ma":
			p.RegimeMA = intVal(v, p.RegimeMA)
		case "use_weekly_filter":
			p.UseWeeklyFilter = boolVal(v, p.UseWeeklyFilter)
		case "weekly_ma":
			p.WeeklyMA = intVal(v, p.WeeklyMA)
		}
	}
	return p
}

func intVal(v any, def int) int {
	switch x := v.(type) {
	case int:
		return x
	case float64:
		return int(x)
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return n
		}
	}
	return def
}

func floatVal(v any, def float64) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return f
		}
	}
	return def
}

func boolVal(v any, def bool) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	}
	return def
}
