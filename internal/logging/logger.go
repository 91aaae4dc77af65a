// Package logging adapts go.uber.org/zap to the alpaca.Logger interface.
package logging

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity written.
type Level string

// Supported levels.
const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

func (level Level) zapLevel() zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger writes alpaca.Logger calls to a zap.Logger.
type Logger struct {
	logger *zap.Logger
}

// Options configures New.
type Options struct {
	level       Level
	outputPaths []string
	development bool
}

// WithLevel sets the minimum level. Info is the default.
func WithLevel(level Level) Options {
	return Options{level: level}
}

// WithOutputPaths sets where entries are written. "stdout" and "stderr" are
// interpreted as the process streams.
func WithOutputPaths(paths []string) Options {
	return Options{outputPaths: paths}
}

// WithDevelopment switches to the human readable console encoder.
func WithDevelopment() Options {
	return Options{development: true}
}

// New builds a Logger. By default it writes JSON to stderr at info level.
func New(opts ...Options) (*Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}

	for _, opt := range opts {
		if opt.development {
			level := cfg.Level
			paths := cfg.OutputPaths
			cfg = zap.NewDevelopmentConfig()
			cfg.Level = level
			cfg.OutputPaths = paths
		}

		if opt.level != "" {
			cfg.Level = zap.NewAtomicLevelAt(opt.level.zapLevel())
		}

		if opt.outputPaths != nil {
			cfg.OutputPaths = opt.outputPaths
		}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{logger: logger}, nil
}

// Wrap adapts an existing zap logger.
func Wrap(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

// Nop returns a Logger that discards everything.
func Nop() *Logger {
	return &Logger{logger: zap.NewNop()}
}

// Zap returns the underlying zap logger.
func (l *Logger) Zap() *zap.Logger {
	return l.logger
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.logger.Sync()
}

// Debug implements alpaca.Logger.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, convertFields(fields)...)
}

// Info implements alpaca.Logger.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, convertFields(fields)...)
}

// Warn implements alpaca.Logger.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, convertFields(fields)...)
}

// Error implements alpaca.Logger.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, convertFields(fields)...)
}

// convertFields orders fields by key so output is stable.
func convertFields(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	zapFields := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		if err, ok := fields[key].(error); ok {
			zapFields = append(zapFields, zap.NamedError(key, err))

			continue
		}

		zapFields = append(zapFields, zap.Any(key, fields[key]))
	}

	return zapFields
}
