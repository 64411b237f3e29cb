package logging

import (
	"slices"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ZapLogger struct {
	l *zap.Logger
}

// NewZapLogger builds a JSON logger, or a console one when format is "console".
func NewZapLogger(level, format string) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &ZapLogger{l: l}, nil
}

func NewZapLoggerFrom(l *zap.Logger) *ZapLogger {
	return &ZapLogger{l: l}
}

func (z *ZapLogger) Info(msg string, fields map[string]any) {
	z.l.Info(msg, toFields(fields)...)
}

func (z *ZapLogger) Warn(msg string, fields map[string]any) {
	z.l.Warn(msg, toFields(fields)...)
}

func (z *ZapLogger) Error(msg string, fields map[string]any) {
	z.l.Error(msg, toFields(fields)...)
}

func (z *ZapLogger) Sync() error {
	return z.l.Sync()
}

func toFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		if err, ok := fields[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
