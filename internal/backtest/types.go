package backtest

import (
	"time"

	"github.com/quantlab/equity-backtest/internal/risk"
)

// EquityPoint is one entry of the equity curve, one per simulated bar.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}

// BacktestResult holds the equity curve, the full trade history in exit
// order and the derived performance metrics of one finished run.
//
// Ratio metrics that are undefined for the run (zero trades, no losing
// trades, not enough return variance) are NaN, or +Inf where a one-sided
// ratio diverges. Reporting layers render those as "n/a".
type BacktestResult struct {
	StartBalance float64
	EndBalance   float64
	StartDate    time.Time
	EndDate      time.Time

	EquityCurve []EquityPoint
	Trades      []risk.Trade

	TotalReturn  float64
	CAGR         float64
	SharpeRatio  float64
	SortinoRatio float64
	MaxDrawdown  float64
	ProfitFactor float64
	WinRate      float64

	TotalTrades          int
	WinningTrades        int
	LosingTrades         int
	AvgWin               float64
	AvgLoss              float64
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
}
