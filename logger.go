package sentrytriage

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AttachCoreToLogger tees the logger's output into sentryCore.
func AttachCoreToLogger(sentryCore zapcore.Core, l *zap.Logger) *zap.Logger {
	return l.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, sentryCore)
	}))
}

// WrapLogger builds a core for the reporter and attaches it to l. The logger
// is returned unchanged when the reporter is disabled.
func WrapLogger(l *zap.Logger, reporter *Reporter, cfg CoreConfiguration) (*zap.Logger, error) {
	if !reporter.Enabled() {
		return l, nil
	}
	sentryCore, err := NewCore(cfg, reporter)
	if err != nil {
		return l, err
	}
	return AttachCoreToLogger(sentryCore, l), nil
}
