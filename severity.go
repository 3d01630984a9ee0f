package sentrytriage

import (
	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap/zapcore"
)

func sentrySeverity(lvl zapcore.Level) sentry.Level {
	switch lvl {
	case zapcore.DebugLevel:
		return sentry.LevelDebug
	case zapcore.InfoLevel:
		return sentry.LevelInfo
	case zapcore.WarnLevel:
		return sentry.LevelWarning
	case zapcore.ErrorLevel:
		return sentry.LevelError
	case zapcore.DPanicLevel:
		return sentry.LevelFatal
	case zapcore.PanicLevel:
		return sentry.LevelFatal
	case zapcore.FatalLevel:
		return sentry.LevelFatal
	default:
		// Unrecognized levels are fatal.
		return sentry.LevelFatal
	}
}

func logrusSeverity(lvl logrus.Level) sentry.Level {
	switch lvl {
	case logrus.TraceLevel, logrus.DebugLevel:
		return sentry.LevelDebug
	case logrus.InfoLevel:
		return sentry.LevelInfo
	case logrus.WarnLevel:
		return sentry.LevelWarning
	case logrus.ErrorLevel:
		return sentry.LevelError
	default:
		// Panic, fatal and anything unknown.
		return sentry.LevelFatal
	}
}
