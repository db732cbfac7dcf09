package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/quantlab/equity-backtest/internal/backtest"
	"github.com/quantlab/equity-backtest/internal/logger"
	"github.com/quantlab/equity-backtest/internal/monitoring"
	"github.com/quantlab/equity-backtest/internal/sentiment"
	"github.com/quantlab/equity-backtest/internal/strategy"
	"github.com/quantlab/equity-backtest/pkg/config"
	"github.com/quantlab/equity-backtest/pkg/data"
	"github.com/quantlab/equity-backtest/pkg/reporting"
	"github.com/quantlab/equity-backtest/pkg/types"
)

const (
	AppName    = "Equity Backtest"
	AppVersion = "1.2.0"
)

func main() {
	flags := NewFlags()
	flag.Parse()

	if err := flags.Validate(); err != nil {
		log.Fatalf("❌ Flag validation error: %v", err)
	}
	if *flags.ShowVersion {
		fmt.Printf("%s v%s\n", AppName, AppVersion)
		return
	}

	loadEnvironment(*flags.EnvFile)

	cfg, err := config.Load(*flags.ConfigFile)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}
	applyFlagOverrides(cfg, flags)

	if *flags.MetricsPort > 0 {
		go func() {
			if err := monitoring.StartMetricsServer(*flags.MetricsPort); err != nil {
				log.Printf("⚠️  Metrics server stopped: %v", err)
			}
		}()
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Data source error: %v", err)
	}

	fmt.Printf("🚀 %s v%s | %s | %d symbols\n",
		AppName, AppVersion, provider.GetName(), len(cfg.Backtest.Symbols))

	bars := make(map[string][]types.Bar, len(cfg.Backtest.Symbols))
	for _, symbol := range cfg.Backtest.Symbols {
		series, err := provider.LoadBars(symbol)
		if err != nil {
			log.Fatalf("❌ Data error: %v", err)
		}
		bars[symbol] = series
		fmt.Printf("📈 %s: %d bars (%s → %s)\n", symbol, len(series),
			series[0].Timestamp.Format("2006-01-02"),
			series[len(series)-1].Timestamp.Format("2006-01-02"))
	}

	var overlay sentiment.Provider
	if cfg.Backtest.UseSentiment && cfg.Backtest.SentimentURL != "" {
		overlay = sentiment.NewHTTPProvider(cfg.Backtest.SentimentURL)
	}

	pool := backtest.NewWorkerPool(*flags.Workers, 4)
	pool.Start()

	jobCount := 0
	var runLogs []*logger.Logger
	for _, strat := range buildStrategies(cfg, *flags.Strategy) {
		runID := strings.ReplaceAll(strings.ToLower(strat.Name()), " ", "-")
		signals, err := generateSignals(strat, bars)
		if err != nil {
			log.Fatalf("❌ Signal generation error: %v", err)
		}
		runLog, err := logger.New(runID)
		if err != nil {
			log.Printf("⚠️  Run log unavailable for %s: %v", runID, err)
		} else {
			runLogs = append(runLogs, runLog)
		}
		job := backtest.Job{
			ID:                 runID,
			RiskCfg:            cfg.Risk,
			Bars:               bars,
			Signals:            signals,
			Sentiment:          overlay,
			SentimentThreshold: cfg.Backtest.SentimentThreshold,
			Log:                runLog,
		}
		if err := pool.Submit(job); err != nil {
			log.Fatalf("❌ Failed to submit run: %v", err)
		}
		jobCount++
	}

	results := make([]backtest.JobResult, 0, jobCount)
	for i := 0; i < jobCount; i++ {
		results = append(results, <-pool.Results())
	}
	pool.Stop()
	for _, runLog := range runLogs {
		runLog.Close()
	}

	console := reporting.NewConsoleReporter()
	excel := reporting.NewExcelReporter()

	for _, jr := range results {
		if jr.Err != nil {
			log.Printf("❌ Run %s failed: %v", jr.ID, jr.Err)
			continue
		}
		console.OutputResults(jr.ID, jr.Result)
		fmt.Printf("⏱️  Run %s finished in %s\n", jr.ID, jr.Duration.Round(time.Millisecond))

		tradesPath := filepath.Join(*flags.OutputDir, jr.ID+"_trades.csv")
		if err := reporting.WriteTradesCSV(jr.Result, tradesPath); err != nil {
			log.Printf("⚠️  Failed to write %s: %v", tradesPath, err)
		}
		equityPath := filepath.Join(*flags.OutputDir, jr.ID+"_equity.csv")
		if err := reporting.WriteEquityCSV(jr.Result, equityPath); err != nil {
			log.Printf("⚠️  Failed to write %s: %v", equityPath, err)
		}
		xlsxPath := filepath.Join(*flags.OutputDir, jr.ID+".xlsx")
		if err := excel.WriteResultsXLSX(jr.ID, jr.Result, xlsxPath); err != nil {
			log.Printf("⚠️  Failed to write %s: %v", xlsxPath, err)
		}
	}
}

func loadEnvironment(envFile string) {
	if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
		log.Fatalf("❌ Failed to load env file %s: %v", envFile, err)
	}
}

func applyFlagOverrides(cfg *config.Config, flags *Flags) {
	if symbols := flags.SymbolList(); symbols != nil {
		cfg.Backtest.Symbols = symbols
	}
	if *flags.DataSource != "" {
		cfg.Backtest.DataSource = strings.ToLower(*flags.DataSource)
	}
	if *flags.DataDir != "" {
		cfg.Backtest.DataDir = *flags.DataDir
	}
}

func buildProvider(cfg *config.Config) (data.Provider, error) {
	switch cfg.Backtest.DataSource {
	case "csv":
		return data.NewCSVProvider(cfg.Backtest.DataDir), nil
	case "yahoo":
		start, err := time.Parse("2006-01-02", cfg.Backtest.StartDate)
		if err != nil {
			return nil, fmt.Errorf("bad start_date %q: %w", cfg.Backtest.StartDate, err)
		}
		end, err := time.Parse("2006-01-02", cfg.Backtest.EndDate)
		if err != nil {
			return nil, fmt.Errorf("bad end_date %q: %w", cfg.Backtest.EndDate, err)
		}
		return data.NewYahooProvider(start, end), nil
	default:
		return nil, fmt.Errorf("unknown data source %q (use csv or yahoo)", cfg.Backtest.DataSource)
	}
}

func buildStrategies(cfg *config.Config, selection string) []strategy.Strategy {
	switch strings.ToLower(selection) {
	case "trend":
		return []strategy.Strategy{strategy.NewTrendFollowing(cfg.Strategy)}
	case "meanrev":
		return []strategy.Strategy{strategy.NewMeanReversion(cfg.Strategy)}
	default:
		return []strategy.Strategy{
			strategy.NewTrendFollowing(cfg.Strategy),
			strategy.NewMeanReversion(cfg.Strategy),
		}
	}
}

func generateSignals(strat strategy.Strategy, bars map[string][]types.Bar) (map[string][]strategy.Signal, error) {
	signals := make(map[string][]strategy.Signal, len(bars))
	for symbol, series := range bars {
		sigs, err := strat.GenerateSignals(symbol, series)
		if err != nil {
			return nil, err
		}
		signals[symbol] = sigs
	}
	return signals, nil
}
