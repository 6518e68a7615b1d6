// Package logging builds the structured zap logger shared by the CLI,
// watch mode, the preview server, and the language server.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a *zap.Logger writing human-readable console output at
// InfoLevel, or DebugLevel when verbose is true.
func New(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

// Component returns a child logger tagged with a "component" field,
// following the same per-subsystem tagging the CLI uses for watch,
// serve, and lsp.
func Component(base *zap.Logger, name string) *zap.Logger {
	return base.With(zap.String("component", name))
}

// WithSource adds file/line/column fields for a parse error or enrichment
// warning tied to a specific source location.
func WithSource(l *zap.Logger, file string, line, column int) *zap.Logger {
	return l.With(zap.String("file", file), zap.Int("line", line), zap.Int("column", column))
}
