package indicators

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/equity-backtest/pkg/types"
)

func flatBars(n int, price float64) []types.Bar {
	bars := make([]types.Bar, n)
	for i := range bars {
		bars[i] = types.Bar{
			Timestamp: time.Date(2024, time.January, 1+i, 0, 0, 0, 0, time.UTC),
			Open:      price,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000,
		}
	}
	return bars
}

func TestSMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	out := SMA(values, 3)

	require.Len(t, out, 5)
	assert.InDelta(t, 1.0, out[0], 1e-9)
	assert.InDelta(t, 1.5, out[1], 1e-9)
	assert.InDelta(t, 2.0, out[2], 1e-9)
	assert.InDelta(t, 3.0, out[3], 1e-9)
	assert.InDelta(t, 4.0, out[4], 1e-9)
}

func TestEMA_ConstantSeriesStaysConstant(t *testing.T) {
	values := []float64{42, 42, 42, 42, 42, 42}
	out := EMA(values, 3)

	for i, v := range out {
		assert.InDelta(t, 42.0, v, 1e-9, "index %d", i)
	}
}

func TestEMA_TracksTrend(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	fast := EMA(values, 5)
	slow := EMA(values, 20)

	// In a steady uptrend the fast average sits above the slow one and
	// both lag the price.
	last := len(values) - 1
	assert.Greater(t, fast[last], slow[last])
	assert.Less(t, fast[last], values[last])
}

func TestEMA_EmptyAndBadPeriod(t *testing.T) {
	assert.Empty(t, EMA(nil, 5))
	out := EMA([]float64{1, 2, 3}, 0)
	assert.Equal(t, []float64{0, 0, 0}, out)
}

func TestRSI_AllGainsSaturates(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100 + float64(i)
	}
	out := RSI(values, 14)

	assert.Equal(t, 50.0, out[0], "warmup holds the neutral value")
	assert.Equal(t, 50.0, out[13])
	assert.Equal(t, 100.0, out[14])
	assert.Equal(t, 100.0, out[19])
}

func TestRSI_AllLossesNearZero(t *testing.T) {
	values := make([]float64, 20)
	for i := range values {
		values[i] = 100 - float64(i)
	}
	out := RSI(values, 14)

	assert.InDelta(t, 0.0, out[19], 1e-9)
}

func TestRSI_BalancedMovesAreNeutral(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		if i%2 == 0 {
			values[i] = 100
		} else {
			values[i] = 101
		}
	}
	out := RSI(values, 14)

	assert.InDelta(t, 50.0, out[29], 1.0)
}

func TestTrueRange_GapsWiden(t *testing.T) {
	bars := flatBars(3, 100)
	// Gap down: the range against the prior close dominates the bar range.
	bars[2].Open, bars[2].High, bars[2].Low, bars[2].Close = 90, 91, 89, 90

	tr := TrueRange(bars)
	assert.InDelta(t, 2.0, tr[0], 1e-9)
	assert.InDelta(t, 2.0, tr[1], 1e-9)
	assert.InDelta(t, 11.0, tr[2], 1e-9, "100 close to 89 low")
}

func TestATR_FlatBars(t *testing.T) {
	out := ATR(flatBars(20, 100), 14)
	assert.InDelta(t, 2.0, out[19], 1e-9)
}

func TestBollinger_FlatSeriesHasZeroWidth(t *testing.T) {
	values := make([]float64, 25)
	for i := range values {
		values[i] = 100
	}
	upper, middle, lower := Bollinger(values, 20, 2)

	assert.InDelta(t, 100.0, middle[24], 1e-9)
	assert.InDelta(t, 100.0, upper[24], 1e-9)
	assert.InDelta(t, 100.0, lower[24], 1e-9)
}

func TestBollinger_BandsBracketTheMean(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + 5*math.Sin(float64(i)/3)
	}
	upper, middle, lower := Bollinger(values, 20, 2)

	for i := 19; i < len(values); i++ {
		assert.Greater(t, upper[i], middle[i], "index %d", i)
		assert.Less(t, lower[i], middle[i], "index %d", i)
		assert.InDelta(t, middle[i]-lower[i], upper[i]-middle[i], 1e-9)
	}
}

func TestADX_ShortSeriesIsZero(t *testing.T) {
	out := ADX(flatBars(10, 100), 14)
	for _, v := range out {
		assert.Equal(t, 0.0, v)
	}
}

func TestADX_StrongTrendReadsHigh(t *testing.T) {
	bars := make([]types.Bar, 60)
	for i := range bars {
		price := 100 + 2*float64(i)
		bars[i] = types.Bar{
			Timestamp: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:      price - 1,
			High:      price + 1,
			Low:       price - 2,
			Close:     price,
			Volume:    1000,
		}
	}
	out := ADX(bars, 14)

	last := out[len(out)-1]
	assert.Greater(t, last, 25.0, "a persistent one-way trend must read as strong")
	assert.LessOrEqual(t, last, 100.0)
}
