package sentrytriage

import (
	"reflect"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

// newLogEvent builds the event for a log entry. The exception carries the
// error message when err is set and the log message otherwise, so message
// exclusions apply to both.
func newLogEvent(level sentry.Level, message string, err error, ts time.Time) *sentry.Event {
	event := sentry.NewEvent()
	event.Level = level
	event.Message = message
	event.Timestamp = ts

	exception := sentry.Exception{Type: "log", Value: message}
	if err != nil {
		exception.Type = reflect.TypeOf(errors.Cause(err)).String()
		exception.Value = err.Error()
		exception.Stacktrace = sentry.ExtractStacktrace(err)
	}
	event.Exception = []sentry.Exception{exception}
	return event
}
