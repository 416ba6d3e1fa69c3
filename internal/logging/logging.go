// Package logging constructs the application logger.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger. With an empty logFile the logger writes JSON to
// stderr so CLI output on stdout stays clean; otherwise it tees to the
// file as well.
func New(logFile string, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	enc := zapcore.NewJSONEncoder(encCfg)

	consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stderr), level)
	if logFile == "" {
		return zap.New(consoleCore)
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		return zap.New(consoleCore)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zap.New(consoleCore)
	}

	fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), level)
	return zap.New(zapcore.NewTee(fileCore, consoleCore))
}
