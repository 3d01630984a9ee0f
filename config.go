package sentrytriage

import (
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap/zapcore"
)

// Configuration is the resolved operator configuration of the integration.
// Resolve it once at startup and treat it as read-only afterwards.
type Configuration struct {
	DSN         string
	Environment string

	// ReportedLevels are the severities forwarded regardless of the exclusion
	// rules. When empty, only error and fatal events are reported.
	ReportedLevels []sentry.Level
	// ExcludeEvents are exception messages that suppress an event, in
	// addition to CoreExclusions.
	ExcludeEvents []string
	// ExcludePaths are absolute path prefixes; a single matching stack frame
	// suppresses the whole event.
	ExcludePaths []string

	ErrorTypes     ErrorType
	SendDefaultPII bool
}

// DefaultReportedLevels apply when no reported levels are configured.
var DefaultReportedLevels = []sentry.Level{sentry.LevelError, sentry.LevelFatal}

// EffectiveReportedLevels returns the configured levels or the defaults.
func (c Configuration) EffectiveReportedLevels() []sentry.Level {
	if len(c.ReportedLevels) == 0 {
		return DefaultReportedLevels
	}
	return c.ReportedLevels
}

// Clone returns a copy that shares no slices with c.
func (c Configuration) Clone() Configuration {
	c.ReportedLevels = append([]sentry.Level(nil), c.ReportedLevels...)
	c.ExcludeEvents = append([]string(nil), c.ExcludeEvents...)
	c.ExcludePaths = append([]string(nil), c.ExcludePaths...)
	return c
}

// CoreConfiguration is a minimal set of parameters for the zap integration.
type CoreConfiguration struct {
	Tags              map[string]string
	DisableStacktrace bool
	Level             zapcore.LevelEnabler
	EnableBreadcrumbs bool
	BreadcrumbLevel   zapcore.LevelEnabler
	FlushTimeout      time.Duration
}
