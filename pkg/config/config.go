package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// RiskConfig holds the portfolio risk parameters. The bundle is immutable
// after Load and is passed explicitly into the sizer and risk manager.
type RiskConfig struct {
	InitialCapital       float64 `json:"initial_capital"`
	RiskPerTrade         float64 `json:"risk_per_trade"`
	MaxPositionSize      float64 `json:"max_position_size"`
	MaxConcurrentTrades  int     `json:"max_concurrent_trades"`
	DailyLossLimit       float64 `json:"daily_loss_limit"`
	MonthlyDrawdownLimit float64 `json:"monthly_drawdown_limit"`
	MonthlyKillPermanent bool    `json:"monthly_kill_permanent"`
	CommissionRate       float64 `json:"commission_rate"`
	SlippageBps          float64 `json:"slippage_bps"`
}

// StrategyConfig holds indicator parameters shared by the built-in strategies.
type StrategyConfig struct {
	EMAFast       int     `json:"ema_fast"`
	EMASlow       int     `json:"ema_slow"`
	EMALong       int     `json:"ema_long"`
	ADXPeriod     int     `json:"adx_period"`
	ADXThreshold  float64 `json:"adx_threshold"`
	ATRPeriod     int     `json:"atr_period"`
	ATRMultiplier float64 `json:"atr_multiplier"`
	RSIPeriod     int     `json:"rsi_period"`
	RSIEntry      float64 `json:"rsi_entry"`
	RSIExit       float64 `json:"rsi_exit"`
	BBPeriod      int     `json:"bb_period"`
	BBStdDev      float64 `json:"bb_std_dev"`
}

// BacktestConfig holds run-level parameters.
type BacktestConfig struct {
	Symbols            []string `json:"symbols"`
	StartDate          string   `json:"start_date"`
	EndDate            string   `json:"end_date"`
	DataSource         string   `json:"data_source"`
	DataDir            string   `json:"data_dir"`
	UseSentiment       bool     `json:"use_sentiment"`
	SentimentThreshold float64  `json:"sentiment_threshold"`
	SentimentURL       string   `json:"sentiment_url"`
}

// Config is the top-level configuration bundle.
type Config struct {
	Risk     RiskConfig     `json:"risk"`
	Strategy StrategyConfig `json:"strategy"`
	Backtest BacktestConfig `json:"backtest"`
}

// DefaultConfig returns the standard parameter set.
func DefaultConfig() *Config {
	return &Config{
		Risk: RiskConfig{
			InitialCapital:       25000.0,
			RiskPerTrade:         0.01,
			MaxPositionSize:      0.10,
			MaxConcurrentTrades:  5,
			DailyLossLimit:       0.02,
			MonthlyDrawdownLimit: 0.10,
			CommissionRate:       0.001,
			SlippageBps:          1.0,
		},
		Strategy: StrategyConfig{
			EMAFast:       20,
			EMASlow:       50,
			EMALong:       200,
			ADXPeriod:     14,
			ADXThreshold:  25,
			ATRPeriod:     14,
			ATRMultiplier: 2.0,
			RSIPeriod:     14,
			RSIEntry:      30,
			RSIExit:       55,
			BBPeriod:      20,
			BBStdDev:      2.0,
		},
		Backtest: BacktestConfig{
			Symbols:            []string{"SPY"},
			StartDate:          "2015-01-01",
			EndDate:            "2025-01-01",
			DataSource:         "csv",
			DataDir:            "data",
			SentimentThreshold: -0.2,
		},
	}
}

// Load reads the configuration file at path, overlays environment overrides
// and validates the result. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies selected environment variable overrides
// (loaded from .env by the caller via godotenv).
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Risk.InitialCapital = f
		}
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Backtest.DataDir = v
	}
	if v := os.Getenv("SENTIMENT_URL"); v != "" {
		c.Backtest.SentimentURL = v
	}
}

// Validate checks parameter ranges.
func (c *Config) Validate() error {
	r := c.Risk
	if r.InitialCapital <= 0 {
		return fmt.Errorf("initial_capital must be positive, got %.2f", r.InitialCapital)
	}
	if r.RiskPerTrade <= 0 || r.RiskPerTrade > 1 {
		return fmt.Errorf("risk_per_trade must be in (0, 1], got %.4f", r.RiskPerTrade)
	}
	if r.MaxPositionSize <= 0 || r.MaxPositionSize > 1 {
		return fmt.Errorf("max_position_size must be in (0, 1], got %.4f", r.MaxPositionSize)
	}
	if r.MaxConcurrentTrades < 1 {
		return fmt.Errorf("max_concurrent_trades must be at least 1, got %d", r.MaxConcurrentTrades)
	}
	if r.DailyLossLimit <= 0 || r.DailyLossLimit > 1 {
		return fmt.Errorf("daily_loss_limit must be in (0, 1], got %.4f", r.DailyLossLimit)
	}
	if r.MonthlyDrawdownLimit <= 0 || r.MonthlyDrawdownLimit > 1 {
		return fmt.Errorf("monthly_drawdown_limit must be in (0, 1], got %.4f", r.MonthlyDrawdownLimit)
	}
	if r.CommissionRate < 0 {
		return fmt.Errorf("commission_rate must be non-negative, got %.4f", r.CommissionRate)
	}
	if r.SlippageBps < 0 {
		return fmt.Errorf("slippage_bps must be non-negative, got %.2f", r.SlippageBps)
	}

	s := c.Strategy
	if s.EMAFast <= 0 || s.EMASlow <= s.EMAFast || s.EMALong <= s.EMASlow {
		return fmt.Errorf("ema periods must satisfy 0 < fast < slow < long, got %d/%d/%d",
			s.EMAFast, s.EMASlow, s.EMALong)
	}
	if s.RSIEntry >= 50 || s.RSIExit <= 50 {
		return fmt.Errorf("rsi_entry must be below 50 and rsi_exit above 50, got %.0f/%.0f",
			s.RSIEntry, s.RSIExit)
	}
	if s.ATRMultiplier <= 0 {
		return fmt.Errorf("atr_multiplier must be positive, got %.2f", s.ATRMultiplier)
	}
	return nil
}
