package sentrytriage_test

import (
	"context"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TheZeroSlave/sentrytriage"
)

func TestFilterBeforeSend(t *testing.T) {
	filter := sentrytriage.NewFilter(sentrytriage.Configuration{
		ExcludePaths: []string{"/srv/vendor/"},
	})

	forwarded := newEvent(sentry.LevelError, "query failed", "/srv/vendor/db.go")
	assert.Same(t, forwarded, filter.BeforeSend(forwarded, nil))
	assert.Nil(t, filter.BeforeSend(newEvent(sentry.LevelWarning, "slow query", "/srv/vendor/db.go"), &sentry.EventHint{}))
	assert.Nil(t, filter.BeforeSend(nil, nil))
}

func TestZeroFilterDrops(t *testing.T) {
	var filter sentrytriage.Filter

	assert.Nil(t, filter.BeforeSend(newEvent(sentry.LevelDebug, "tick"), nil))
	event := newEvent(sentry.LevelError, "failed")
	assert.Same(t, event, filter.BeforeSend(event, nil))
}

func TestFilterBeforeSendConcurrent(t *testing.T) {
	filter := sentrytriage.NewFilter(sentrytriage.Configuration{
		ReportedLevels: []sentry.Level{sentry.LevelInfo},
		ExcludeEvents:  []string{"cache miss"},
		ExcludePaths:   []string{"/srv/vendor/"},
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if filter.BeforeSend(newEvent(sentry.LevelWarning, "cache miss"), nil) != nil {
					t.Error("excluded message was forwarded")
				}
				if filter.BeforeSend(newEvent(sentry.LevelWarning, "retrying", "/srv/vendor/http.go"), nil) != nil {
					t.Error("excluded path was forwarded")
				}
				if filter.BeforeSend(newEvent(sentry.LevelInfo, "cache warmed"), nil) == nil {
					t.Error("reported level was dropped")
				}
			}
		}()
	}
	wg.Wait()
}

func TestFilterKeepsOwnConfiguration(t *testing.T) {
	cfg := sentrytriage.Configuration{
		ReportedLevels: []sentry.Level{sentry.LevelInfo},
		ExcludeEvents:  []string{"cache miss"},
	}
	filter := sentrytriage.NewFilter(cfg)

	cfg.ExcludeEvents[0] = "changed later"
	cfg.ReportedLevels[0] = sentry.LevelDebug

	d := filter.Evaluate(context.Background(), newEvent(sentry.LevelWarning, "cache miss"))
	assert.False(t, d.Forwarded())
	assert.Equal(t, sentrytriage.ReasonExcludedMessage, d.Reason)
	assert.Equal(t, []string{"cache miss"}, filter.Configuration().ExcludeEvents)
}

func TestFilterLogsDrops(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	filter := sentrytriage.NewFilter(sentrytriage.Configuration{}, sentrytriage.WithFilterLogger(zap.New(core)))

	event := newEvent(sentry.LevelDebug, "tick")
	event.EventID = "0123456789abcdef0123456789abcdef"
	filter.BeforeSend(event, nil)
	filter.BeforeSend(newEvent(sentry.LevelError, "failed"), nil)

	dropped := logs.FilterMessage("event dropped").All()
	require.Len(t, dropped, 1)
	fields := dropped[0].ContextMap()
	assert.Equal(t, string(sentrytriage.ReasonBelowThreshold), fields["reason"])
	assert.Equal(t, "debug", fields["level"])
	assert.Equal(t, "0123456789abcdef0123456789abcdef", fields["event_id"])
}

func TestFilterMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	filter := sentrytriage.NewFilter(sentrytriage.Configuration{
		ReportedLevels: []sentry.Level{sentry.LevelInfo},
	}, sentrytriage.WithFilterMeterProvider(provider))

	filter.BeforeSend(newEvent(sentry.LevelError, "failed"), nil)
	filter.BeforeSend(newEvent(sentry.LevelFatal, "crashed"), nil)
	filter.BeforeSend(newEvent(sentry.LevelInfo, "started"), nil)
	filter.BeforeSend(newEvent(sentry.LevelWarning, sentrytriage.CoreExclusions[3]), nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	metric := rm.ScopeMetrics[0].Metrics[0]
	assert.Equal(t, "sentrytriage.events", metric.Name)
	sum, ok := metric.Data.(metricdata.Sum[int64])
	require.True(t, ok, "unexpected aggregation %T", metric.Data)

	byReason := map[string]int64{}
	decisions := map[string]int64{}
	for _, dp := range sum.DataPoints {
		reason, _ := dp.Attributes.Value(attribute.Key("reason"))
		decision, _ := dp.Attributes.Value(attribute.Key("decision"))
		byReason[reason.AsString()] += dp.Value
		decisions[decision.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{
		string(sentrytriage.ReasonSeverity):        2,
		string(sentrytriage.ReasonReportedLevel):   1,
		string(sentrytriage.ReasonExcludedMessage): 1,
	}, byReason)
	assert.Equal(t, map[string]int64{"forward": 3, "drop": 1}, decisions)
}
