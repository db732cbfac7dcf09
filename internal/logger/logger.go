package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger is a file logger for one backtest run. A nil *Logger is valid and
// discards everything, so callers never need to nil-check.
type Logger struct {
	runID   string
	logFile *os.File
	logger  *log.Logger
	mu      sync.Mutex
}

// LogLevel tags each log line.
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
	LogLevelTrade   LogLevel = "TRADE"
)

// New creates a logger writing to logs/<runID>_<date>.log.
func New(runID string) (*Logger, error) {
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.log", runID, time.Now().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(logDir, filename), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return &Logger{
		runID:   runID,
		logFile: file,
		logger:  log.New(file, "", 0),
	}, nil
}

func (l *Logger) write(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	l.logger.Printf("[%s] [%s] %s", timestamp, level, fmt.Sprintf(format, args...))
}

// Info logs a general message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.write(LogLevelInfo, format, args...)
}

// Warn logs a non-fatal anomaly, like an invalid stop from the sizer.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.write(LogLevelWarning, format, args...)
}

// Error logs a run-fatal condition.
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(LogLevelError, format, args...)
}

// Trade logs an entry or exit fill.
func (l *Logger) Trade(format string, args ...interface{}) {
	l.write(LogLevelTrade, format, args...)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	if l == nil || l.logFile == nil {
		return nil
	}
	return l.logFile.Close()
}
