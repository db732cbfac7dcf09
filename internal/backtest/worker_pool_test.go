package backtest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantlab/equity-backtest/internal/strategy"
	"github.com/quantlab/equity-backtest/pkg/types"
)

func poolFixture() (map[string][]types.Bar, map[string][]strategy.Signal) {
	n := 20
	series := make([]types.Bar, n)
	sigs := make([]strategy.Signal, n)
	for i := 0; i < n; i++ {
		price := 100 + float64(i%7)
		series[i] = barOn(tradingDay(i), price, price+2, price-2, price)
		dir := strategy.DirectionFlat
		if i%4 == 0 {
			dir = strategy.DirectionLong
		}
		sigs[i] = signalOn(tradingDay(i), "SPY", dir, price-5, 0)
	}
	return map[string][]types.Bar{"SPY": series}, map[string][]strategy.Signal{"SPY": sigs}
}

func TestWorkerPool_RunsAllJobs(t *testing.T) {
	bars, signals := poolFixture()

	pool := NewWorkerPool(4, 16)
	pool.Start()

	const jobs = 8
	for i := 0; i < jobs; i++ {
		err := pool.Submit(Job{
			ID:      fmt.Sprintf("run-%d", i),
			RiskCfg: frictionlessConfig(),
			Bars:    bars,
			Signals: signals,
		})
		require.NoError(t, err)
	}
	pool.Stop()

	seen := make(map[string]*BacktestResult, jobs)
	for result := range pool.Results() {
		require.NoError(t, result.Err)
		require.NotNil(t, result.Result)
		seen[result.ID] = result.Result
	}
	require.Len(t, seen, jobs)

	// Identical jobs must produce identical results regardless of which
	// worker ran them.
	reference := seen["run-0"]
	for id, result := range seen {
		assert.Equal(t, reference.EndBalance, result.EndBalance, "job %s diverged", id)
		assert.Equal(t, len(reference.Trades), len(result.Trades), "job %s diverged", id)
	}
}

func TestWorkerPool_ReportsJobErrors(t *testing.T) {
	bars, signals := poolFixture()
	badBars := map[string][]types.Bar{"SPY": append([]types.Bar(nil), bars["SPY"]...)}
	badBars["SPY"][3].High = 0

	pool := NewWorkerPool(2, 4)
	pool.Start()

	require.NoError(t, pool.Submit(Job{ID: "good", RiskCfg: frictionlessConfig(), Bars: bars, Signals: signals}))
	require.NoError(t, pool.Submit(Job{ID: "bad", RiskCfg: frictionlessConfig(), Bars: badBars, Signals: signals}))
	pool.Stop()

	results := make(map[string]JobResult, 2)
	for result := range pool.Results() {
		results[result.ID] = result
	}
	require.Len(t, results, 2)

	assert.NoError(t, results["good"].Err)
	assert.Error(t, results["bad"].Err)
	assert.Nil(t, results["bad"].Result)
}

func TestWorkerPool_DefaultWorkerCount(t *testing.T) {
	pool := NewWorkerPool(0, 1)
	assert.Greater(t, pool.workerCount, 0)
	pool.Start()
	pool.Stop()
}
