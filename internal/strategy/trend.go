package strategy

import (
	"fmt"

	"github.com/quantlab/equity-backtest/internal/indicators"
	"github.com/quantlab/equity-backtest/pkg/config"
	"github.com/quantlab/equity-backtest/pkg/types"
)

// TrendFollowing goes long when the fast EMA is above the slow EMA, price is
// above the long EMA and ADX confirms trend strength. The stop is placed an
// ATR multiple below the close, the target at twice the stop distance.
type TrendFollowing struct {
	cfg config.StrategyConfig
}

// NewTrendFollowing creates a trend-following strategy with the given
// indicator parameters.
func NewTrendFollowing(cfg config.StrategyConfig) *TrendFollowing {
	return &TrendFollowing{cfg: cfg}
}

func (s *TrendFollowing) Name() string {
	return "Trend Following"
}

// GenerateSignals returns one signal per bar. Bars before the long EMA
// warmup are flat.
func (s *TrendFollowing) GenerateSignals(symbol string, bars []types.Bar) ([]Signal, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("strategy %s: no bars for %s", s.Name(), symbol)
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	emaFast := indicators.EMA(closes, s.cfg.EMAFast)
	emaSlow := indicators.EMA(closes, s.cfg.EMASlow)
	emaLong := indicators.EMA(closes, s.cfg.EMALong)
	adx := indicators.ADX(bars, s.cfg.ADXPeriod)
	atr := indicators.ATR(bars, s.cfg.ATRPeriod)

	signals := make([]Signal, len(bars))
	for i, bar := range bars {
		sig := Signal{
			Timestamp:  bar.Timestamp,
			Symbol:     symbol,
			Direction:  DirectionFlat,
			Confidence: 1.0,
		}

		if i >= s.cfg.EMALong &&
			emaFast[i] > emaSlow[i] &&
			bar.Close > emaLong[i] &&
			adx[i] > s.cfg.ADXThreshold {
			stopDistance := s.cfg.ATRMultiplier * atr[i]
			if stopDistance > 0 && stopDistance < bar.Close {
				sig.Direction = DirectionLong
				sig.StopLoss = bar.Close - stopDistance
				sig.TakeProfit = bar.Close + 2*stopDistance
			}
		} else if emaFast[i] < emaSlow[i] || bar.Close < emaLong[i] {
			sig.Direction = DirectionExit
		}

		signals[i] = sig
	}
	return signals, nil
}
