// internal/logger/logger.go
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a logger that writes a console stream to stdout and a JSON
// stream to a rotated log file.
func New(cfg *Config) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	if cfg.Development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(os.Stdout), level(cfg)),
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator(cfg)), level(cfg)),
	)

	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// NewTUI creates a logger safe to run under the terminal UI: nothing is
// written to stdout. The console stream goes to the ring (for the in-app log
// tail) and the JSON stream to the rotated file.
func NewTUI(cfg *Config, ring *Ring) (*zap.Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	fileEncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	fileEncoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(rotator(cfg)), level(cfg)),
	}
	if ring != nil {
		cores = append(cores, zapcore.NewCore(PrettyEncoder(), ring, level(cfg)))
	}

	return zap.New(zapcore.NewTee(cores...)), nil
}

func level(cfg *Config) zapcore.Level {
	if cfg.Development {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func rotator(cfg *Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

// Sync flushes the logger, swallowing the spurious errors stdout syncing
// reports on some platforms.
func Sync(l *zap.Logger) error {
	err := l.Sync()
	if err != nil && (strings.Contains(err.Error(), "sync /dev/stdout") ||
		strings.Contains(err.Error(), "sync /dev/stderr")) {
		return nil
	}
	return err
}
