package backtest

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quantlab/equity-backtest/internal/risk"
)

func curveFrom(start time.Time, equities ...float64) []EquityPoint {
	curve := make([]EquityPoint, len(equities))
	for i, eq := range equities {
		curve[i] = EquityPoint{Timestamp: start.AddDate(0, 0, i), Equity: eq}
	}
	return curve
}

func tradesWithPnL(pnls ...float64) []risk.Trade {
	trades := make([]risk.Trade, len(pnls))
	for i, pnl := range pnls {
		trades[i] = risk.Trade{Symbol: "SPY", NetPnL: pnl}
	}
	return trades
}

func TestComputeMetrics_CAGR(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 10000,
		EndBalance:   12000,
		StartDate:    start,
		EndDate:      start.AddDate(1, 0, 0),
		EquityCurve:  curveFrom(start, 10000, 12000),
	}
	result.ComputeMetrics()

	// One calendar year of 365 days annualized with the 365.25 convention.
	expected := math.Pow(1.2, 365.25/365) - 1
	assert.InDelta(t, expected, result.CAGR, 1e-9)
	assert.InDelta(t, 0.2, result.TotalReturn, 1e-9)
}

func TestComputeMetrics_CAGRUndefinedForSingleDay(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 10000,
		EndBalance:   10100,
		StartDate:    start,
		EndDate:      start,
		EquityCurve:  curveFrom(start, 10100),
	}
	result.ComputeMetrics()

	assert.True(t, math.IsNaN(result.CAGR))
}

func TestComputeMetrics_MaxDrawdown(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 100,
		EndBalance:   110,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 3),
		EquityCurve:  curveFrom(start, 100, 120, 90, 110),
	}
	result.ComputeMetrics()

	assert.InDelta(t, -0.25, result.MaxDrawdown, 1e-9)
}

func TestComputeMetrics_MaxDrawdownZeroWhenMonotonic(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 100,
		EndBalance:   130,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 3),
		EquityCurve:  curveFrom(start, 100, 110, 120, 130),
	}
	result.ComputeMetrics()

	assert.Equal(t, 0.0, result.MaxDrawdown)
}

func TestComputeMetrics_TradeStats(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 10000,
		EndBalance:   10080,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 6),
		EquityCurve:  curveFrom(start, 10000, 10100, 10050, 10080, 10120, 10160, 10080),
		Trades:       tradesWithPnL(100, -50, 30, 40, 50, -90),
	}
	result.ComputeMetrics()

	assert.Equal(t, 6, result.TotalTrades)
	assert.Equal(t, 4, result.WinningTrades)
	assert.Equal(t, 2, result.LosingTrades)
	assert.InDelta(t, 220.0/140.0, result.ProfitFactor, 1e-9)
	assert.InDelta(t, 4.0/6.0, result.WinRate, 1e-9)
	assert.InDelta(t, 55.0, result.AvgWin, 1e-9)
	assert.InDelta(t, -70.0, result.AvgLoss, 1e-9)
	assert.Equal(t, 3, result.MaxConsecutiveWins)
	assert.Equal(t, 1, result.MaxConsecutiveLosses)
}

func TestComputeMetrics_ProfitFactorInfWithoutLosers(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 10000,
		EndBalance:   10150,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 2),
		EquityCurve:  curveFrom(start, 10000, 10100, 10150),
		Trades:       tradesWithPnL(100, 50),
	}
	result.ComputeMetrics()

	assert.True(t, math.IsInf(result.ProfitFactor, 1))
	assert.Equal(t, 1.0, result.WinRate)
	assert.True(t, math.IsNaN(result.AvgLoss))
}

func TestComputeMetrics_BreakevenTradeCountsAsLoss(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 10000,
		EndBalance:   10100,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 2),
		EquityCurve:  curveFrom(start, 10000, 10050, 10100),
		Trades:       tradesWithPnL(100, 0),
	}
	result.ComputeMetrics()

	assert.Equal(t, 1, result.WinningTrades)
	assert.Equal(t, 1, result.LosingTrades)
	assert.True(t, math.IsInf(result.ProfitFactor, 1), "a zero-loss breakeven adds nothing to the loss total")
}

func TestComputeMetrics_SharpeNeedsTwoTrades(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 10000,
		EndBalance:   10100,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 5),
		EquityCurve:  curveFrom(start, 10000, 10020, 10010, 10060, 10080, 10100),
		Trades:       tradesWithPnL(100),
	}
	result.ComputeMetrics()

	assert.True(t, math.IsNaN(result.SharpeRatio))
	assert.True(t, math.IsNaN(result.SortinoRatio))
}

func TestComputeMetrics_SharpeAnnualization(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 10000,
		EndBalance:   10210,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 4),
		EquityCurve:  curveFrom(start, 10000, 10100, 10050, 10150, 10210),
		Trades:       tradesWithPnL(100, -50, 100, 60),
	}
	result.ComputeMetrics()

	returns := []float64{0.01, -50.0 / 10100, 100.0 / 10050, 60.0 / 10150}
	mean := 0.0
	for _, ret := range returns {
		mean += ret
	}
	mean /= float64(len(returns))
	variance := 0.0
	for _, ret := range returns {
		variance += (ret - mean) * (ret - mean)
	}
	stdDev := math.Sqrt(variance / float64(len(returns)))
	expected := mean / stdDev * math.Sqrt(252)

	assert.InDelta(t, expected, result.SharpeRatio, 1e-9)
}

func TestComputeMetrics_SortinoInfWithoutDownside(t *testing.T) {
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	result := &BacktestResult{
		StartBalance: 10000,
		EndBalance:   10300,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, 3),
		EquityCurve:  curveFrom(start, 10000, 10100, 10200, 10300),
		Trades:       tradesWithPnL(100, 100, 100),
	}
	result.ComputeMetrics()

	assert.True(t, math.IsInf(result.SortinoRatio, 1))
}
