package strategy

import (
	"fmt"

	"github.com/quantlab/equity-backtest/internal/indicators"
	"github.com/quantlab/equity-backtest/pkg/config"
	"github.com/quantlab/equity-backtest/pkg/types"
)

// MeanReversion buys oversold conditions: RSI below the entry threshold with
// the close under the lower Bollinger Band. It signals exit once RSI recovers
// past the exit threshold or the close breaks the upper band.
type MeanReversion struct {
	cfg config.StrategyConfig
}

// NewMeanReversion creates a mean-reversion strategy with the given
// indicator parameters.
func NewMeanReversion(cfg config.StrategyConfig) *MeanReversion {
	return &MeanReversion{cfg: cfg}
}

func (s *MeanReversion) Name() string {
	return "Mean Reversion"
}

func (s *MeanReversion) GenerateSignals(symbol string, bars []types.Bar) ([]Signal, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("strategy %s: no bars for %s", s.Name(), symbol)
	}

	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	warmup := s.cfg.RSIPeriod
	if s.cfg.BBPeriod > warmup {
		warmup = s.cfg.BBPeriod
	}

	rsi := indicators.RSI(closes, s.cfg.RSIPeriod)
	upper, _, lower := indicators.Bollinger(closes, s.cfg.BBPeriod, s.cfg.BBStdDev)
	atr := indicators.ATR(bars, s.cfg.ATRPeriod)

	signals := make([]Signal, len(bars))
	for i, bar := range bars {
		sig := Signal{
			Timestamp:  bar.Timestamp,
			Symbol:     symbol,
			Direction:  DirectionFlat,
			Confidence: 1.0,
		}

		if i >= warmup && rsi[i] < s.cfg.RSIEntry && bar.Close < lower[i] {
			stopDistance := s.cfg.ATRMultiplier * atr[i]
			if stopDistance > 0 && stopDistance < bar.Close {
				sig.Direction = DirectionLong
				sig.StopLoss = bar.Close - stopDistance
				sig.TakeProfit = bar.Close + 2*stopDistance
			}
		} else if rsi[i] > s.cfg.RSIExit || bar.Close > upper[i] {
			sig.Direction = DirectionExit
		}

		signals[i] = sig
	}
	return signals, nil
}
