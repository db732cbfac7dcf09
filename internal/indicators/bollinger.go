package indicators

import "math"

// Bollinger computes Bollinger Bands over closing prices and returns the
// upper, middle and lower band series. Indexes before a full window hold
// the running average with zero width.
func Bollinger(closes []float64, period int, stdDev float64) (upper, middle, lower []float64) {
	middle = SMA(closes, period)
	upper = make([]float64, len(closes))
	lower = make([]float64, len(closes))

	for i := range closes {
		if i < period-1 {
			upper[i] = middle[i]
			lower[i] = middle[i]
			continue
		}
		variance := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := closes[j] - middle[i]
			variance += d * d
		}
		sd := math.Sqrt(variance / float64(period))
		upper[i] = middle[i] + stdDev*sd
		lower[i] = middle[i] - stdDev*sd
	}
	return upper, middle, lower
}
