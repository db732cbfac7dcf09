package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/equity-backtest/pkg/types"
)

func writeCSV(t *testing.T, dir, symbol, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(content), 0o644))
}

func TestCSVProvider_LoadBars(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY", `date,open,high,low,close,volume
2024-01-02,470.5,472.1,469.8,471.3,75000000
2024-01-03,471.0,473.5,470.2,473.0,68000000
2024-01-04,473.2,474.0,471.9,472.5,61000000
`)

	bars, err := NewCSVProvider(dir).LoadBars("SPY")
	require.NoError(t, err)
	require.Len(t, bars, 3)

	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), bars[0].Timestamp)
	assert.Equal(t, 470.5, bars[0].Open)
	assert.Equal(t, 472.1, bars[0].High)
	assert.Equal(t, 469.8, bars[0].Low)
	assert.Equal(t, 471.3, bars[0].Close)
	assert.Equal(t, int64(75000000), bars[0].Volume)
}

func TestCSVProvider_NoHeader(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY", `2024-01-02,470.5,472.1,469.8,471.3,75000000
2024-01-03,471.0,473.5,470.2,473.0,68000000
`)

	bars, err := NewCSVProvider(dir).LoadBars("SPY")
	require.NoError(t, err)
	assert.Len(t, bars, 2)
}

func TestCSVProvider_FractionalVolume(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY", `2024-01-02,470.5,472.1,469.8,471.3,7.5e7
`)

	bars, err := NewCSVProvider(dir).LoadBars("SPY")
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, int64(75000000), bars[0].Volume)
}

func TestCSVProvider_MissingFile(t *testing.T) {
	_, err := NewCSVProvider(t.TempDir()).LoadBars("SPY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SPY")
}

func TestCSVProvider_BadPrice(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY", `2024-01-02,470.5,not-a-price,469.8,471.3,75000000
`)

	_, err := NewCSVProvider(dir).LoadBars("SPY")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "high")
}

func TestCSVProvider_ShortRow(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY", `2024-01-02,470.5,472.1
`)

	_, err := NewCSVProvider(dir).LoadBars("SPY")
	assert.Error(t, err)
}

func TestCSVProvider_RejectsOutOfOrderDates(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, dir, "SPY", `2024-01-03,471.0,473.5,470.2,473.0,68000000
2024-01-02,470.5,472.1,469.8,471.3,75000000
`)

	_, err := NewCSVProvider(dir).LoadBars("SPY")
	assert.Error(t, err)
}

func TestValidateBars(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
	}
	good := func() []types.Bar {
		return []types.Bar{
			{Timestamp: day(2), Open: 100, High: 101, Low: 99, Close: 100.5, Volume: 1000},
			{Timestamp: day(3), Open: 100.5, High: 102, Low: 100, Close: 101, Volume: 1200},
		}
	}

	assert.NoError(t, ValidateBars("SPY", good()))

	t.Run("duplicate timestamp", func(t *testing.T) {
		bars := good()
		bars[1].Timestamp = bars[0].Timestamp
		assert.Error(t, ValidateBars("SPY", bars))
	})

	t.Run("non-positive price", func(t *testing.T) {
		bars := good()
		bars[0].Low = 0
		assert.Error(t, ValidateBars("SPY", bars))
	})

	t.Run("high below low", func(t *testing.T) {
		bars := good()
		bars[1].High = bars[1].Low - 1
		assert.Error(t, ValidateBars("SPY", bars))
	})

	t.Run("negative volume", func(t *testing.T) {
		bars := good()
		bars[0].Volume = -5
		assert.Error(t, ValidateBars("SPY", bars))
	})

	t.Run("empty series", func(t *testing.T) {
		bars := good()
		assert.Error(t, ValidateBars("SPY", bars[:0]))
	})
}
