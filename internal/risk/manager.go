package risk

import (
	"errors"
	"fmt"
	"time"

	"github.com/quantlab/equity-backtest/pkg/config"
)

var (
	// ErrInsufficientCash signals a sizing/configuration inconsistency: the
	// sizer and the value cap should make a negative cash balance unreachable.
	ErrInsufficientCash = errors.New("insufficient cash for entry fill")

	// ErrNoPosition is returned when closing a symbol with no open position.
	ErrNoPosition = errors.New("no open position for symbol")
)

// Manager is the single source of truth for open exposure within one
// backtest run. It validates every entry against the portfolio constraints
// and owns the kill-switch state machine. One Manager instance per run;
// no internal locking, the run is single-threaded.
type Manager struct {
	cfg config.RiskConfig

	cash      float64
	equity    float64
	positions map[string]*Position

	state      HaltState
	highWater  float64
	dayStart   float64
	monthStart float64
	lastMark   time.Time
	marked     bool
}

// NewManager creates a risk manager with the full starting capital in cash.
func NewManager(cfg config.RiskConfig) *Manager {
	return &Manager{
		cfg:        cfg,
		cash:       cfg.InitialCapital,
		equity:     cfg.InitialCapital,
		positions:  make(map[string]*Position),
		state:      StateActive,
		highWater:  cfg.InitialCapital,
		dayStart:   cfg.InitialCapital,
		monthStart: cfg.InitialCapital,
	}
}

// ValidateTrade checks a proposed entry against the portfolio constraints,
// in priority order: halt state, concurrent position cap, position value
// cap, duplicate symbol.
func (m *Manager) ValidateTrade(req TradeRequest) TradeApproval {
	if m.state != StateActive {
		return TradeApproval{Approved: false, Reason: RejectRiskHalted}
	}
	if len(m.positions) >= m.cfg.MaxConcurrentTrades {
		return TradeApproval{Approved: false, Reason: RejectMaxPositionsExceeded}
	}
	if req.EntryPrice*float64(req.Shares) > m.cfg.MaxPositionSize*m.equity {
		return TradeApproval{Approved: false, Reason: RejectPositionValueExceeded}
	}
	if _, open := m.positions[req.Symbol]; open {
		return TradeApproval{Approved: false, Reason: RejectDuplicateSymbol}
	}
	return TradeApproval{Approved: true, Reason: RejectNone}
}

// OpenPosition books an approved entry fill. The fill price already includes
// slippage; costs is the commission charged on top. Cash may not go negative.
func (m *Manager) OpenPosition(req TradeRequest, fillPrice, costs float64) error {
	if _, open := m.positions[req.Symbol]; open {
		return fmt.Errorf("%s: %w", req.Symbol, errors.New("position already open"))
	}

	total := fillPrice*float64(req.Shares) + costs
	if total > m.cash {
		return fmt.Errorf("%s: %w: need %.2f, have %.2f", req.Symbol, ErrInsufficientCash, total, m.cash)
	}

	m.cash -= total
	m.positions[req.Symbol] = &Position{
		Symbol:     req.Symbol,
		Shares:     req.Shares,
		EntryPrice: fillPrice,
		EntryTime:  req.Timestamp,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		EntryCosts: costs,
	}
	return nil
}

// ClosePosition books an exit fill, credits cash and returns the immutable
// trade record. Exits are permitted in every halt state.
func (m *Manager) ClosePosition(symbol string, exitPrice float64, exitTime time.Time, reason ExitReason, costs float64) (Trade, error) {
	pos, open := m.positions[symbol]
	if !open {
		return Trade{}, fmt.Errorf("%s: %w", symbol, ErrNoPosition)
	}

	gross := (exitPrice - pos.EntryPrice) * float64(pos.Shares)
	totalCosts := pos.EntryCosts + costs

	m.cash += exitPrice*float64(pos.Shares) - costs
	delete(m.positions, symbol)

	return Trade{
		Symbol:     symbol,
		EntryTime:  pos.EntryTime,
		ExitTime:   exitTime,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Shares:     pos.Shares,
		GrossPnL:   gross,
		Costs:      totalCosts,
		NetPnL:     gross - totalCosts,
		Reason:     reason,
	}, nil
}

// MarkToMarket revalues the portfolio at the given close prices. It must be
// called exactly once per simulated bar, after any fills for that bar.
// Period boundaries reset the daily and monthly loss anchors to the last
// marked equity before transitions are evaluated.
func (m *Manager) MarkToMarket(ts time.Time, prices map[string]float64) error {
	prevEquity := m.equity

	if m.marked {
		if ts.Year() != m.lastMark.Year() || ts.Month() != m.lastMark.Month() {
			m.monthStart = prevEquity
			m.dayStart = prevEquity
			if m.state == StateMonthlyKilled && !m.cfg.MonthlyKillPermanent {
				m.state = StateActive
			}
			if m.state == StateDailyHalted {
				m.state = StateActive
			}
		} else if ts.YearDay() != m.lastMark.YearDay() {
			m.dayStart = prevEquity
			if m.state == StateDailyHalted {
				m.state = StateActive
			}
		}
	}

	equity := m.cash
	for symbol, pos := range m.positions {
		price, ok := prices[symbol]
		if !ok {
			return fmt.Errorf("mark to market: no price for open position %s", symbol)
		}
		equity += pos.MarketValue(price)
	}

	m.equity = equity
	m.lastMark = ts
	m.marked = true
	if equity > m.highWater {
		m.highWater = equity
	}

	if m.state != StateMonthlyKilled && m.monthStart > 0 {
		monthlyDrawdown := (m.monthStart - equity) / m.monthStart
		if monthlyDrawdown > m.cfg.MonthlyDrawdownLimit {
			m.state = StateMonthlyKilled
		}
	}
	if m.state == StateActive && m.dayStart > 0 {
		dailyLoss := (m.dayStart - equity) / m.dayStart
		if dailyLoss > m.cfg.DailyLossLimit {
			m.state = StateDailyHalted
		}
	}
	return nil
}

// Equity returns the portfolio value as of the most recent mark.
func (m *Manager) Equity() float64 { return m.equity }

// Cash returns the uninvested cash balance.
func (m *Manager) Cash() float64 { return m.cash }

// State returns the current kill-switch state.
func (m *Manager) State() HaltState { return m.state }

// HighWaterMark returns the peak marked equity of the run.
func (m *Manager) HighWaterMark() float64 { return m.highWater }

// OpenPositionCount returns the number of open positions.
func (m *Manager) OpenPositionCount() int { return len(m.positions) }

// Position returns a copy of the open position for symbol, if any.
func (m *Manager) Position(symbol string) (Position, bool) {
	pos, open := m.positions[symbol]
	if !open {
		return Position{}, false
	}
	return *pos, true
}
