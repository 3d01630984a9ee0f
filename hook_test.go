package sentrytriage_test

import (
	"io"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheZeroSlave/sentrytriage"
)

func newLogrusLogger(hook logrus.Hook) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	logger.AddHook(hook)
	return logger
}

func TestLogrusHookReportsErrors(t *testing.T) {
	reporter, recorder := newRecordingReporter(t, sentrytriage.Configuration{})
	logger := newLogrusLogger(sentrytriage.NewLogrusHook(reporter))

	logger.Warn("not a hook level")
	logger.WithError(errors.New("disk full")).WithField("volume", "/data").Error("write failed")

	events := recorder.Events()
	require.Len(t, events, 1)
	event := events[0]
	assert.Equal(t, sentry.LevelError, event.Level)
	assert.Equal(t, "write failed", event.Message)
	assert.Equal(t, "disk full", event.Exception[0].Value)
	assert.NotNil(t, event.Exception[0].Stacktrace)
	assert.Equal(t, "/data", event.Extra["volume"])
	assert.NotContains(t, event.Extra, logrus.ErrorKey)
}

func TestLogrusHookGoesThroughFilter(t *testing.T) {
	reporter, recorder := newRecordingReporter(t, sentrytriage.Configuration{
		ReportedLevels: []sentry.Level{sentry.LevelInfo},
	})
	hook := sentrytriage.NewLogrusHook(reporter, logrus.WarnLevel, logrus.InfoLevel)
	assert.Equal(t, []logrus.Level{logrus.WarnLevel, logrus.InfoLevel}, hook.Levels())
	logger := newLogrusLogger(hook)

	logger.Warn(sentrytriage.CoreExclusions[3])
	logger.Warn("feature flag service slow")
	logger.Info("cache warmed")

	var messages []string
	for _, event := range recorder.Events() {
		messages = append(messages, event.Message)
	}
	assert.Equal(t, []string{"feature flag service slow", "cache warmed"}, messages)
}

func TestLogrusHookDisabledReporter(t *testing.T) {
	reporter, err := sentrytriage.New(sentrytriage.Configuration{}, nil)
	require.NoError(t, err)

	hook := sentrytriage.NewLogrusHook(reporter)
	assert.NoError(t, hook.Fire(logrus.NewEntry(logrus.New())))
}
