package sentrytriage

import (
	"github.com/sirupsen/logrus"
)

// LogrusHook reports logrus entries through a Reporter.
type LogrusHook struct {
	reporter *Reporter
	levels   []logrus.Level
}

// NewLogrusHook fires for the given levels, or for error and above when none
// are given.
func NewLogrusHook(reporter *Reporter, levels ...logrus.Level) *LogrusHook {
	if len(levels) == 0 {
		levels = []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
	}
	return &LogrusHook{reporter: reporter, levels: levels}
}

func (h *LogrusHook) Levels() []logrus.Level {
	return h.levels
}

// Fire never returns an error; a dropped event is not a logging failure.
func (h *LogrusHook) Fire(entry *logrus.Entry) error {
	if !h.reporter.Enabled() {
		return nil
	}

	err, _ := entry.Data[logrus.ErrorKey].(error)
	event := newLogEvent(logrusSeverity(entry.Level), entry.Message, err, entry.Time)

	extra := make(map[string]interface{}, len(entry.Data))
	for k, v := range entry.Data {
		if k == logrus.ErrorKey {
			continue
		}
		extra[k] = v
	}
	event.Extra = extra

	h.reporter.CaptureEvent(event)
	if entry.Level <= logrus.FatalLevel {
		h.reporter.Flush(h.reporter.flushTimeout)
	}
	return nil
}
