// Package logging builds the process-wide zap logger and carries
// request-scoped loggers through contexts.
package logging

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/ridge/must/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Format is the logging format
type Format string

// Format values
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Color is the coloring setting for text format
type Color string

// Color values
const (
	ColorAuto Color = ""
	ColorYes  Color = "yes"
	ColorNo   Color = "no"
)

// Config is the configuration for creating a top-level logger
type Config struct {
	Name    string // top-level logger name (optional)
	Format  Format
	Color   Color
	Verbose bool // enable messages at Debug level
}

// Validate reports an unknown format or color.
func (c Config) Validate() error {
	switch c.Format {
	case FormatJSON, FormatText:
	default:
		return fmt.Errorf("unexpected log format: %q (must be 'json' or 'text')", c.Format)
	}
	switch c.Color {
	case ColorAuto, ColorYes, ColorNo:
	default:
		return fmt.Errorf("unexpected color setting: %q (must be 'yes' or 'no')", c.Color)
	}
	return nil
}

func iso8601MicroTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02T15:04:05.000000Z0700"))
}

// DefaultEncoderConfig is the default value of zap.EncoderConfig that we use
// when creating top-level loggers
var DefaultEncoderConfig = func() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = iso8601MicroTimeEncoder
	return ec
}()

// New creates a top-level logger. It panics on an invalid config; callers
// validate user input with Config.Validate first.
func New(config Config) *zap.Logger {
	must.OK(config.Validate())

	encoderConfig := DefaultEncoderConfig
	encoding := "json"
	development := false
	if config.Format == FormatText {
		encoding = "console"
		development = true
		if useColor(config.Color) {
			encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	}

	level := zapcore.InfoLevel
	if config.Verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      development,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger := must.OK1(cfg.Build())

	if config.Name != "" {
		logger = logger.Named(config.Name)
	}

	return logger
}

func useColor(color Color) bool {
	switch color {
	case ColorYes:
		return true
	case ColorNo:
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}

// NewForTesting creates a logger for use in unit tests.
func NewForTesting(t testing.TB) *zap.Logger {
	return New(Config{
		Name:    t.Name(),
		Format:  FormatText,
		Color:   ColorNo,
		Verbose: true,
	})
}

type contextKey int

const (
	loggerKey contextKey = iota
)

// Get returns the logger carried by ctx, or a no-op logger.
func Get(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithLogger adds a logger to a context or replaces an existing one
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// With returns a context with a sub-logger with passed parameters
func With(ctx context.Context, fields ...zapcore.Field) context.Context {
	return WithLogger(ctx, Get(ctx).With(fields...))
}
