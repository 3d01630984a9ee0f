// Package sentrytriage decides which captured error events reach Sentry and
// wires the decision into sentry-go, zap and logrus.
package sentrytriage

import (
	"strings"

	"github.com/getsentry/sentry-go"
)

// CoreExclusions are messages known to be benign noise from the host
// platform. They are always excluded below error severity.
var CoreExclusions = []string{
	"Parameter 1 to wp_default_scripts() expected to be a reference, value given",
	"Parameter 1 to wp_default_styles() expected to be a reference, value given",
	"Parameter 1 to wp_default_packages() expected to be a reference, value given",
	"session_start(): Cannot start session when headers already sent",
}

// Reason names the rule that produced a Decision.
type Reason string

const (
	ReasonSeverity        Reason = "severity"
	ReasonReportedLevel   Reason = "reported_level"
	ReasonExcludedPath    Reason = "excluded_path"
	ReasonExcludedMessage Reason = "excluded_message"
	ReasonUnmatched       Reason = "unmatched"
	ReasonBelowThreshold  Reason = "below_threshold"
	ReasonNoEvent         Reason = "no_event"
)

// Decision is the outcome of Evaluate. Event is nil when the event is dropped.
type Decision struct {
	Event  *sentry.Event
	Reason Reason
}

func Forward(event *sentry.Event, reason Reason) Decision {
	return Decision{Event: event, Reason: reason}
}

func Drop(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Forwarded reports whether the event should be handed to the transport.
func (d Decision) Forwarded() bool {
	return d.Event != nil
}

// Evaluate applies the triage rules in order; the first matching rule wins.
// It never mutates the event and never panics: absent exceptions, stack
// traces or frames simply do not match, and a nil cfg is the zero
// configuration.
func Evaluate(event *sentry.Event, cfg *Configuration) Decision {
	if event == nil {
		return Drop(ReasonNoEvent)
	}
	if cfg == nil {
		cfg = &Configuration{}
	}

	if event.Level == sentry.LevelError || event.Level == sentry.LevelFatal {
		return Forward(event, ReasonSeverity)
	}
	if containsLevel(cfg.ReportedLevels, event.Level) {
		return Forward(event, ReasonReportedLevel)
	}
	if matchesExcludedPath(event, cfg.ExcludePaths) {
		return Drop(ReasonExcludedPath)
	}
	if matchesExcludedMessage(event, cfg.ExcludeEvents) {
		return Drop(ReasonExcludedMessage)
	}

	// Without an explicit allow-list only error and fatal are reported.
	if len(cfg.ReportedLevels) == 0 {
		return Drop(ReasonBelowThreshold)
	}
	return Forward(event, ReasonUnmatched)
}

func matchesExcludedPath(event *sentry.Event, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix == "" {
			continue
		}
		for _, exception := range event.Exception {
			if exception.Stacktrace == nil {
				continue
			}
			for _, frame := range exception.Stacktrace.Frames {
				if strings.HasPrefix(frame.AbsPath, prefix) {
					return true
				}
			}
		}
	}
	return false
}

// Only the top-level exception is checked; chained causes are not. sentry-go
// orders the chain from the root cause, so the top-level record is the last.
func matchesExcludedMessage(event *sentry.Event, excluded []string) bool {
	if len(event.Exception) == 0 {
		return false
	}
	label := event.Exception[len(event.Exception)-1].Value
	for _, message := range CoreExclusions {
		if label == message {
			return true
		}
	}
	for _, message := range excluded {
		if label == message {
			return true
		}
	}
	return false
}
