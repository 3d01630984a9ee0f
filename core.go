package sentrytriage

import (
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

var ErrInvalidBreadcrumbLevel = errors.New("breadcrumb level must be lower than or equal to the event level")

// NewCore returns a zap core that reports entries through the reporter, and
// therefore through its triage filter. A disabled reporter yields a nop core.
func NewCore(cfg CoreConfiguration, reporter *Reporter) (zapcore.Core, error) {
	if !reporter.Enabled() {
		return zapcore.NewNopCore(), nil
	}
	if cfg.Level == nil {
		cfg.Level = zapcore.ErrorLevel
	}
	if cfg.EnableBreadcrumbs {
		if cfg.BreadcrumbLevel == nil {
			cfg.BreadcrumbLevel = zapcore.InfoLevel
		}
		for lvl := zapcore.DebugLevel; lvl <= zapcore.FatalLevel; lvl++ {
			if cfg.Level.Enabled(lvl) && !cfg.BreadcrumbLevel.Enabled(lvl) {
				return zapcore.NewNopCore(), ErrInvalidBreadcrumbLevel
			}
		}
	}

	core := core{
		reporter: reporter,
		cfg:      &cfg,
		LevelEnabler: &LevelEnabler{
			LevelEnabler:      cfg.Level,
			enableBreadcrumbs: cfg.EnableBreadcrumbs,
			breadcrumbsLevel:  cfg.BreadcrumbLevel,
		},
		flushTimeout: 5 * time.Second,
		fields:       make(map[string]interface{}),
		tags:         make(map[string]string),
	}

	if cfg.FlushTimeout > 0 {
		core.flushTimeout = cfg.FlushTimeout
	}

	return &core, nil
}

func (c *core) With(fs []zapcore.Field) zapcore.Core {
	return c.with(fs)
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fs []zapcore.Field) error {
	clone := c.with(fs)

	if !c.cfg.Level.Enabled(ent.Level) {
		c.reporter.hub.AddBreadcrumb(&sentry.Breadcrumb{
			Category:  ent.LoggerName,
			Message:   ent.Message,
			Level:     sentrySeverity(ent.Level),
			Timestamp: ent.Time,
			Data:      clone.fields,
		}, nil)
		return nil
	}

	event := newLogEvent(sentrySeverity(ent.Level), ent.Message, extractError(fs), ent.Time)
	event.Logger = ent.LoggerName
	event.Extra = clone.fields
	event.Tags = clone.eventTags()

	if exception := &event.Exception[0]; exception.Stacktrace == nil && !c.cfg.DisableStacktrace {
		trace := sentry.NewStacktrace()
		if trace != nil {
			trace.Frames = filterFrames(trace.Frames)
			exception.Stacktrace = trace
		}
	}

	c.reporter.CaptureEvent(event)

	// We may be crashing the program, so should flush any buffered events.
	if ent.Level > zapcore.ErrorLevel {
		c.reporter.Flush(c.flushTimeout)
	}
	return nil
}

func (c *core) Sync() error {
	c.reporter.Flush(c.flushTimeout)
	return nil
}

func (c *core) with(fs []zapcore.Field) *core {
	// Copy our maps.
	m := make(map[string]interface{}, len(c.fields))
	for k, v := range c.fields {
		m[k] = v
	}
	tags := make(map[string]string, len(c.tags))
	for k, v := range c.tags {
		tags[k] = v
	}

	// Add fields to an in-memory encoder.
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fs {
		if tag, ok := f.Interface.(tagField); ok && f.Type == zapcore.SkipType {
			tags[tag.Key] = tag.Value
			continue
		}
		f.AddTo(enc)
	}

	// Merge the two maps.
	for k, v := range enc.Fields {
		m[k] = v
	}

	return &core{
		reporter:     c.reporter,
		cfg:          c.cfg,
		flushTimeout: c.flushTimeout,
		fields:       m,
		tags:         tags,
		LevelEnabler: c.LevelEnabler,
	}
}

// eventTags returns a fresh map; the scope writes its own tags into it.
func (c *core) eventTags() map[string]string {
	tags := make(map[string]string, len(c.cfg.Tags)+len(c.tags))
	for k, v := range c.cfg.Tags {
		tags[k] = v
	}
	for k, v := range c.tags {
		tags[k] = v
	}
	return tags
}

type core struct {
	reporter *Reporter
	cfg      *CoreConfiguration
	zapcore.LevelEnabler
	flushTimeout time.Duration

	fields map[string]interface{}
	tags   map[string]string
}

// extractError returns the first error field, if any.
func extractError(fs []zapcore.Field) error {
	for _, f := range fs {
		if f.Type != zapcore.ErrorType {
			continue
		}
		if err, ok := f.Interface.(error); ok && err != nil {
			return err
		}
	}
	return nil
}

// follow same logic with sentry-go to filter unnecessary frames
// ref:
// https://github.com/getsentry/sentry-go/blob/362a80dcc41f9ad11c8df556104db3efa27a419e/stacktrace.go#L256-L280
func filterFrames(frames []sentry.Frame) []sentry.Frame {
	if len(frames) == 0 {
		return nil
	}
	filteredFrames := make([]sentry.Frame, 0, len(frames))

	for i := range frames {
		// Skip sentrytriage and zap internal frames, except for frames in _test packages (for
		// testing).
		if (strings.HasPrefix(frames[i].Module, "github.com/TheZeroSlave/sentrytriage") ||
			strings.HasPrefix(frames[i].Module, "go.uber.org/zap")) &&
			!strings.HasSuffix(frames[i].Module, "_test") {
			break
		}
		filteredFrames = append(filteredFrames, frames[i])
	}
	return filteredFrames
}
