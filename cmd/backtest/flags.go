package main

import (
	"flag"
	"fmt"
	"strings"
)

// Flags holds the parsed command line options.
type Flags struct {
	ConfigFile  *string
	EnvFile     *string
	Symbols     *string
	Strategy    *string
	DataSource  *string
	DataDir     *string
	OutputDir   *string
	Workers     *int
	MetricsPort *int
	ShowVersion *bool
}

// NewFlags registers the command line flags.
func NewFlags() *Flags {
	return &Flags{
		ConfigFile:  flag.String("config", "", "Path to JSON configuration file"),
		EnvFile:     flag.String("env", ".env", "Path to environment file"),
		Symbols:     flag.String("symbols", "", "Comma-separated symbol list (overrides config)"),
		Strategy:    flag.String("strategy", "both", "Strategy to run: trend, meanrev or both"),
		DataSource:  flag.String("source", "", "Data source: csv or yahoo (overrides config)"),
		DataDir:     flag.String("data", "", "Directory with <symbol>.csv files (overrides config)"),
		OutputDir:   flag.String("output", "results", "Directory for trade logs and reports"),
		Workers:     flag.Int("workers", 0, "Parallel workers (0 = number of CPUs)"),
		MetricsPort: flag.Int("metrics-port", 0, "Expose prometheus metrics on this port (0 = off)"),
		ShowVersion: flag.Bool("version", false, "Show version and exit"),
	}
}

// Validate checks flag values before the run starts.
func (f *Flags) Validate() error {
	switch strings.ToLower(*f.Strategy) {
	case "trend", "meanrev", "both":
	default:
		return fmt.Errorf("invalid -strategy %q (use trend, meanrev or both)", *f.Strategy)
	}
	if *f.Workers < 0 {
		return fmt.Errorf("invalid -workers %d", *f.Workers)
	}
	if *f.MetricsPort < 0 || *f.MetricsPort > 65535 {
		return fmt.Errorf("invalid -metrics-port %d", *f.MetricsPort)
	}
	return nil
}

// SymbolList returns the symbols flag as a cleaned slice, or nil when unset.
func (f *Flags) SymbolList() []string {
	if *f.Symbols == "" {
		return nil
	}
	parts := strings.Split(*f.Symbols, ",")
	symbols := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.ToUpper(strings.TrimSpace(part)); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
