package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogPath is where --verbose writes when no --log-file is given
const DefaultLogPath = "/tmp/testtool.out"

// Logger provides a centralized logging mechanism for testtool.
// Output never goes to stdout, which carries the generated translation unit.
type Logger struct {
	sugar *zap.SugaredLogger
	level zap.AtomicLevel
	file  *os.File
	mu    sync.Mutex
}

var (
	defaultLogger *Logger
	mu            sync.Mutex
)

// newNopLogger returns a logger that discards everything
func newNopLogger() *Logger {
	return &Logger{
		sugar: zap.NewNop().Sugar(),
		level: zap.NewAtomicLevel(),
	}
}

// Configure replaces the default logger. An empty logPath discards all entries
// and touches no file; otherwise entries are appended to logPath.
func Configure(logPath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if defaultLogger != nil {
		_ = defaultLogger.Close()
	}

	if logPath == "" {
		defaultLogger = newNopLogger()
		return nil
	}

	logger, err := NewLogger(logPath, debug)
	if err != nil {
		defaultLogger = newNopLogger()
		return err
	}
	defaultLogger = logger
	return nil
}

// GetLogger returns the default logger instance, a no-op logger until Configure is called
func GetLogger() *Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = newNopLogger()
	}
	return defaultLogger
}

// NewLogger creates a new logger that writes JSON entries to the specified file
func NewLogger(logPath string, debug bool) (*Logger, error) {
	// Ensure the directory exists
	dir := filepath.Dir(logPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), level)

	return &Logger{
		sugar: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar(),
		level: level,
		file:  file,
	}, nil
}

// SetDebug toggles debug-level output at runtime
func (l *Logger) SetDebug(debug bool) {
	if debug {
		l.level.SetLevel(zapcore.DebugLevel)
		return
	}
	l.level.SetLevel(zapcore.WarnLevel)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sugar.Warnf(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sugar.Debugf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sugar.Errorf(format, args...)
}

// Close flushes buffered entries and closes the log file (if any)
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.sugar.Sync()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// Convenience functions for the default logger
func Warning(format string, args ...interface{}) {
	GetLogger().Warning(format, args...)
}

func Debug(format string, args ...interface{}) {
	GetLogger().Debug(format, args...)
}

func Error(format string, args ...interface{}) {
	GetLogger().Error(format, args...)
}
