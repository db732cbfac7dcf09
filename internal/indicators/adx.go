package indicators

import (
	"math"

	"github.com/quantlab/equity-backtest/pkg/types"
)

// ADX computes the Average Directional Index over bars. Directional
// movement and true range are smoothed with rolling averages, DI+/DI-
// are derived from their ratio and the DX series is averaged again.
// Indexes without enough history hold zero.
func ADX(bars []types.Bar, period int) []float64 {
	out := make([]float64, len(bars))
	if len(bars) < 2*period+1 || period <= 0 {
		return out
	}

	plusDM := make([]float64, len(bars))
	minusDM := make([]float64, len(bars))
	for i := 1; i < len(bars); i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	tr := TrueRange(bars)
	avgPlus := SMA(plusDM, period)
	avgMinus := SMA(minusDM, period)
	avgTR := SMA(tr, period)

	dx := make([]float64, len(bars))
	for i := period; i < len(bars); i++ {
		if avgTR[i] == 0 {
			continue
		}
		plusDI := 100 * avgPlus[i] / avgTR[i]
		minusDI := 100 * avgMinus[i] / avgTR[i]
		if sum := plusDI + minusDI; sum > 0 {
			dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
		}
	}

	for i := 2 * period; i < len(bars); i++ {
		sum := 0.0
		for j := i - period + 1; j <= i; j++ {
			sum += dx[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}
