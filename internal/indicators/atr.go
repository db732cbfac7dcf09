package indicators

import (
	"math"

	"github.com/quantlab/equity-backtest/pkg/types"
)

// TrueRange computes the true range series for the given bars.
func TrueRange(bars []types.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, bar := range bars {
		if i == 0 {
			out[i] = bar.High - bar.Low
			continue
		}
		prevClose := bars[i-1].Close
		out[i] = math.Max(bar.High-bar.Low,
			math.Max(math.Abs(bar.High-prevClose), math.Abs(bar.Low-prevClose)))
	}
	return out
}

// ATR computes the Average True Range as a simple moving average of the
// true range. Indexes before a full window average what is available.
func ATR(bars []types.Bar, period int) []float64 {
	return SMA(TrueRange(bars), period)
}
