package backtest

import (
	"fmt"

	"github.com/quantlab/equity-backtest/internal/logger"
	"github.com/quantlab/equity-backtest/internal/monitoring"
	"github.com/quantlab/equity-backtest/internal/risk"
	"github.com/quantlab/equity-backtest/internal/sentiment"
	"github.com/quantlab/equity-backtest/internal/strategy"
	"github.com/quantlab/equity-backtest/pkg/config"
	"github.com/quantlab/equity-backtest/pkg/types"
)

// BacktestEngine drives one chronological simulation over pre-materialized
// bars and signals. A run is strictly sequential: bar order is a correctness
// invariant. Engines share no mutable state, so independent runs may execute
// in parallel, each with its own engine and risk manager.
type BacktestEngine struct {
	riskCfg config.RiskConfig
	sizer   *risk.PositionSizer

	sentiment          sentiment.Provider
	sentimentThreshold float64

	log *logger.Logger
}

// NewBacktestEngine creates an engine for the given risk configuration.
func NewBacktestEngine(riskCfg config.RiskConfig) *BacktestEngine {
	return &BacktestEngine{
		riskCfg: riskCfg,
		sizer:   risk.NewPositionSizer(riskCfg.RiskPerTrade, riskCfg.MaxPositionSize),
	}
}

// WithSentiment attaches an advisory sentiment provider. Entries are vetoed
// when the score falls below threshold; scoring failures are treated as
// neutral so the overlay is never required for the engine to function.
func (e *BacktestEngine) WithSentiment(p sentiment.Provider, threshold float64) *BacktestEngine {
	e.sentiment = p
	e.sentimentThreshold = threshold
	return e
}

// WithLogger attaches a run logger. A nil logger is valid and silent.
func (e *BacktestEngine) WithLogger(l *logger.Logger) *BacktestEngine {
	e.log = l
	return e
}

// Run simulates the full bar stream and returns the finished result. Bars
// and signals are per-symbol, aligned one signal per bar, with identical
// timestamp sequences across symbols. Malformed input aborts the run.
func (e *BacktestEngine) Run(bars map[string][]types.Bar, signals map[string][]strategy.Signal) (*BacktestResult, error) {
	symbols, err := validateInputs(bars, signals)
	if err != nil {
		return nil, fmt.Errorf("input validation: %w", err)
	}

	monitoring.RecordRun()

	mgr := risk.NewManager(e.riskCfg)
	numBars := len(bars[symbols[0]])

	result := &BacktestResult{
		StartBalance: e.riskCfg.InitialCapital,
		StartDate:    bars[symbols[0]][0].Timestamp,
		EndDate:      bars[symbols[0]][numBars-1].Timestamp,
		EquityCurve:  make([]EquityPoint, 0, numBars),
		Trades:       make([]risk.Trade, 0),
	}

	for i := 0; i < numBars; i++ {
		lastBar := i == numBars-1

		// Exits before entries: stop first, then target, then signal exit.
		for _, symbol := range symbols {
			bar := bars[symbol][i]
			pos, open := mgr.Position(symbol)
			if !open {
				continue
			}

			switch {
			case pos.StopLoss > 0 && bar.Low <= pos.StopLoss:
				if err := e.closeAt(mgr, result, symbol, pos.StopLoss, bar, risk.ExitStopLoss, false); err != nil {
					return nil, err
				}
			case pos.TakeProfit > 0 && bar.High >= pos.TakeProfit:
				if err := e.closeAt(mgr, result, symbol, pos.TakeProfit, bar, risk.ExitTakeProfit, false); err != nil {
					return nil, err
				}
			case signals[symbol][i].Direction != strategy.DirectionLong:
				if err := e.closeAt(mgr, result, symbol, bar.Close, bar, risk.ExitSignal, true); err != nil {
					return nil, err
				}
			}
		}

		// Entries at the bar close.
		for _, symbol := range symbols {
			bar := bars[symbol][i]
			sig := signals[symbol][i]
			if sig.Direction != strategy.DirectionLong {
				continue
			}
			if _, open := mgr.Position(symbol); open {
				continue
			}
			if err := e.tryEnter(mgr, result, symbol, bar, sig); err != nil {
				return nil, err
			}
		}

		// The final bar force-closes whatever is still open before the
		// last mark, so the closing costs land on the equity curve.
		if lastBar {
			for _, symbol := range symbols {
				bar := bars[symbol][i]
				if _, open := mgr.Position(symbol); !open {
					continue
				}
				if err := e.closeAt(mgr, result, symbol, bar.Close, bar, risk.ExitEndOfPeriod, true); err != nil {
					return nil, err
				}
			}
		}

		prices := make(map[string]float64, len(symbols))
		for _, symbol := range symbols {
			prices[symbol] = bars[symbol][i].Close
		}

		before := mgr.State()
		if err := mgr.MarkToMarket(bars[symbols[0]][i].Timestamp, prices); err != nil {
			return nil, err
		}
		if after := mgr.State(); after != before && after != risk.StateActive {
			monitoring.RecordHalt(after.String())
			e.log.Warn("risk halt: %s at %s (equity %.2f)",
				after, bars[symbols[0]][i].Timestamp.Format("2006-01-02"), mgr.Equity())
		}

		result.EquityCurve = append(result.EquityCurve, EquityPoint{
			Timestamp: bars[symbols[0]][i].Timestamp,
			Equity:    mgr.Equity(),
		})
	}

	result.EndBalance = mgr.Equity()
	result.ComputeMetrics()
	return result, nil
}

// tryEnter sizes and validates a new entry and books the fill. Sizing
// failures and risk rejections are non-fatal; a failed entry fill is.
func (e *BacktestEngine) tryEnter(mgr *risk.Manager, result *BacktestResult, symbol string, bar types.Bar, sig strategy.Signal) error {
	stop := sig.StopLoss
	if stop == 0 {
		// Bar-range proxy stop when the strategy supplies none.
		stop = bar.Close - 2*bar.Range()
		if stop <= 0 {
			return nil
		}
	}

	if e.sentiment != nil {
		score, err := e.sentiment.Score(symbol, bar.Timestamp)
		if err != nil {
			e.log.Warn("%s: sentiment unavailable, treating as neutral: %v", symbol, err)
			score = 0
		}
		if score < e.sentimentThreshold {
			e.log.Info("%s: entry vetoed by sentiment %.2f at %s",
				symbol, score, bar.Timestamp.Format("2006-01-02"))
			return nil
		}
	}

	shares, err := e.sizer.Shares(mgr.Equity(), bar.Close, stop)
	if err != nil {
		e.log.Warn("%s: sizing failed at %s: %v", symbol, bar.Timestamp.Format("2006-01-02"), err)
		return nil
	}
	if shares == 0 {
		return nil
	}

	req := risk.TradeRequest{
		Symbol:     symbol,
		Shares:     shares,
		EntryPrice: bar.Close,
		StopLoss:   stop,
		TakeProfit: sig.TakeProfit,
		Timestamp:  bar.Timestamp,
	}

	approval := mgr.ValidateTrade(req)
	if !approval.Approved {
		monitoring.RecordRejection(approval.Reason.String())
		e.log.Info("%s: entry rejected (%s) at %s",
			symbol, approval.Reason, bar.Timestamp.Format("2006-01-02"))
		return nil
	}
	if approval.AdjustedShares > 0 {
		req.Shares = approval.AdjustedShares
	}

	fillPrice := bar.Close * (1 + e.riskCfg.SlippageBps/10000)
	commission := e.riskCfg.CommissionRate * fillPrice * float64(req.Shares)

	if err := mgr.OpenPosition(req, fillPrice, commission); err != nil {
		return fmt.Errorf("entry fill %s at %s: %w", symbol, bar.Timestamp.Format("2006-01-02"), err)
	}

	e.log.Trade("OPEN %s %d @ %.4f stop %.4f target %.4f",
		symbol, req.Shares, fillPrice, req.StopLoss, req.TakeProfit)
	return nil
}

// closeAt books an exit fill and appends the trade. Stop and target fills
// execute at the triggered level exactly; close-price fills (signal exits and
// end-of-period) take slippage against the trader.
func (e *BacktestEngine) closeAt(mgr *risk.Manager, result *BacktestResult, symbol string, price float64, bar types.Bar, reason risk.ExitReason, slip bool) error {
	fillPrice := price
	if slip {
		fillPrice = price * (1 - e.riskCfg.SlippageBps/10000)
	}
	pos, _ := mgr.Position(symbol)
	commission := e.riskCfg.CommissionRate * fillPrice * float64(pos.Shares)

	trade, err := mgr.ClosePosition(symbol, fillPrice, bar.Timestamp, reason, commission)
	if err != nil {
		return fmt.Errorf("exit fill %s at %s: %w", symbol, bar.Timestamp.Format("2006-01-02"), err)
	}

	result.Trades = append(result.Trades, trade)
	monitoring.RecordTrade(symbol, reason.String())
	e.log.Trade("CLOSE %s %d @ %.4f (%s) net %.2f",
		symbol, trade.Shares, fillPrice, reason, trade.NetPnL)
	return nil
}
