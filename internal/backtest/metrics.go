package backtest

import (
	"math"
	"time"
)

const tradingDaysPerYear = 252

// ComputeMetrics derives all performance statistics from the finished
// equity curve and trade history. It is called once, at the end of a run.
func (r *BacktestResult) ComputeMetrics() {
	r.TotalReturn = math.NaN()
	if r.StartBalance > 0 {
		r.TotalReturn = (r.EndBalance - r.StartBalance) / r.StartBalance
	}

	r.CAGR = r.computeCAGR()
	r.MaxDrawdown = r.computeMaxDrawdown()
	r.computeTradeStats()

	// Sharpe and Sortino need return variance; a run with fewer than two
	// trades cannot support either.
	if r.TotalTrades < 2 {
		r.SharpeRatio = math.NaN()
		r.SortinoRatio = math.NaN()
	} else {
		r.SharpeRatio = r.computeSharpe()
		r.SortinoRatio = r.computeSortino()
	}
}

func (r *BacktestResult) computeCAGR() float64 {
	if r.StartBalance <= 0 || r.EndBalance <= 0 {
		return math.NaN()
	}
	days := r.EndDate.Sub(r.StartDate) / (24 * time.Hour)
	if days <= 0 {
		return math.NaN()
	}
	return math.Pow(r.EndBalance/r.StartBalance, 365.25/float64(days)) - 1
}

// dailyReturns computes per-bar fractional returns from the equity curve.
func (r *BacktestResult) dailyReturns() []float64 {
	if len(r.EquityCurve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(r.EquityCurve)-1)
	for i := 1; i < len(r.EquityCurve); i++ {
		prev := r.EquityCurve[i-1].Equity
		if prev > 0 {
			returns = append(returns, (r.EquityCurve[i].Equity-prev)/prev)
		}
	}
	return returns
}

func (r *BacktestResult) computeSharpe() float64 {
	returns := r.dailyReturns()
	if len(returns) < 2 {
		return math.NaN()
	}

	mean := 0.0
	for _, ret := range returns {
		mean += ret
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, ret := range returns {
		d := ret - mean
		variance += d * d
	}
	variance /= float64(len(returns))
	stdDev := math.Sqrt(variance)

	if stdDev < 1e-12 {
		return math.NaN()
	}
	return mean / stdDev * math.Sqrt(tradingDaysPerYear)
}

func (r *BacktestResult) computeSortino() float64 {
	returns := r.dailyReturns()
	if len(returns) < 2 {
		return math.NaN()
	}

	mean := 0.0
	for _, ret := range returns {
		mean += ret
	}
	mean /= float64(len(returns))

	downsideVariance := 0.0
	downsideCount := 0
	for _, ret := range returns {
		if ret < 0 {
			downsideVariance += ret * ret
			downsideCount++
		}
	}
	if downsideCount == 0 {
		return math.Inf(1)
	}

	downsideDev := math.Sqrt(downsideVariance / float64(downsideCount))
	if downsideDev < 1e-12 {
		return math.NaN()
	}
	return mean / downsideDev * math.Sqrt(tradingDaysPerYear)
}

// computeMaxDrawdown returns the worst fractional decline from a running
// equity peak, as a negative number (zero when the curve never declines).
func (r *BacktestResult) computeMaxDrawdown() float64 {
	if len(r.EquityCurve) == 0 {
		return math.NaN()
	}

	maxDD := 0.0
	runningMax := r.EquityCurve[0].Equity
	for _, point := range r.EquityCurve {
		if point.Equity > runningMax {
			runningMax = point.Equity
		}
		if runningMax > 0 {
			dd := (point.Equity - runningMax) / runningMax
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

func (r *BacktestResult) computeTradeStats() {
	r.TotalTrades = len(r.Trades)

	if r.TotalTrades == 0 {
		r.ProfitFactor = math.NaN()
		r.WinRate = math.NaN()
		r.AvgWin = math.NaN()
		r.AvgLoss = math.NaN()
		return
	}

	totalWins := 0.0
	totalLosses := 0.0
	winStreak, lossStreak := 0, 0

	for _, trade := range r.Trades {
		if trade.NetPnL > 0 {
			r.WinningTrades++
			totalWins += trade.NetPnL
			winStreak++
			lossStreak = 0
			if winStreak > r.MaxConsecutiveWins {
				r.MaxConsecutiveWins = winStreak
			}
		} else {
			r.LosingTrades++
			totalLosses += math.Abs(trade.NetPnL)
			lossStreak++
			winStreak = 0
			if lossStreak > r.MaxConsecutiveLosses {
				r.MaxConsecutiveLosses = lossStreak
			}
		}
	}

	r.WinRate = float64(r.WinningTrades) / float64(r.TotalTrades)

	if totalLosses == 0 {
		r.ProfitFactor = math.Inf(1)
	} else {
		r.ProfitFactor = totalWins / totalLosses
	}

	r.AvgWin = math.NaN()
	if r.WinningTrades > 0 {
		r.AvgWin = totalWins / float64(r.WinningTrades)
	}
	r.AvgLoss = math.NaN()
	if r.LosingTrades > 0 {
		r.AvgLoss = -totalLosses / float64(r.LosingTrades)
	}
}
