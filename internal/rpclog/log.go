// Package rpclog provides the process-wide structured logger used by
// every package in the typing core. The teacher repo has no structured
// logger of its own (it only prints colored text at the CLI boundary),
// so this is grounded on the wider example pack's zap+lumberjack logging
// stack instead.
package rpclog

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalMu     sync.RWMutex
	globalLogger *zap.SugaredLogger
)

func init() {
	l, _ := zap.NewProduction()
	globalLogger = l.Sugar()
}

// Config controls where and how the logger writes. Output of "stderr" or
// "" writes to stderr; anything else is treated as a log file path and
// rotated through lumberjack.
type Config struct {
	Level      string
	Output     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Configure rebuilds the global logger from cfg. Call once at process
// start (the CLI's newRuntime does this after config load); safe to
// call again in tests to reset to a known state.
func Configure(cfg Config) error {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.Set(cfg.Level); err != nil {
			return err
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	var writer zapcore.WriteSyncer
	if cfg.Output == "" || cfg.Output == "stderr" {
		writer = zapcore.Lock(zapcore.AddSync(os.Stderr))
	} else {
		writer = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    orDefault(cfg.MaxSizeMB, 50),
			MaxBackups: orDefault(cfg.MaxBackups, 3),
			MaxAge:     orDefault(cfg.MaxAgeDays, 28),
			Compress:   cfg.Compress,
		})
	}

	core := zapcore.NewCore(encoder, writer, level)
	logger := zap.New(core)

	globalMu.Lock()
	globalLogger = logger.Sugar()
	globalMu.Unlock()
	return nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// L returns the current global logger. Safe for concurrent use.
func L() *zap.SugaredLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}
