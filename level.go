package sentrytriage

import (
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

// LevelEnabler enables a zap entry when it is either sent as an event or, with
// breadcrumbs switched on, recorded as a breadcrumb.
type LevelEnabler struct {
	zapcore.LevelEnabler
	enableBreadcrumbs bool
	breadcrumbsLevel  zapcore.LevelEnabler
}

func (l *LevelEnabler) Enabled(lvl zapcore.Level) bool {
	return l.LevelEnabler.Enabled(lvl) || (l.enableBreadcrumbs && l.breadcrumbsLevel.Enabled(lvl))
}

// ParseLevel converts a configured severity name into a sentry level.
// Names are case-insensitive; "warn" is accepted for "warning".
func ParseLevel(s string) (sentry.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return sentry.LevelDebug, nil
	case "info":
		return sentry.LevelInfo, nil
	case "warning", "warn":
		return sentry.LevelWarning, nil
	case "error":
		return sentry.LevelError, nil
	case "fatal":
		return sentry.LevelFatal, nil
	}
	return "", errors.Errorf("unknown severity level %q", s)
}

// ParseLevels parses every name and fails on the first unknown one.
func ParseLevels(names []string) ([]sentry.Level, error) {
	levels := make([]sentry.Level, 0, len(names))
	for _, name := range names {
		lvl, err := ParseLevel(name)
		if err != nil {
			return nil, err
		}
		levels = append(levels, lvl)
	}
	return levels, nil
}

func containsLevel(levels []sentry.Level, lvl sentry.Level) bool {
	for _, l := range levels {
		if l == lvl {
			return true
		}
	}
	return false
}
