package sentrytriage

import (
	"context"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/TheZeroSlave/sentrytriage"

type triageMetrics struct {
	events metric.Int64Counter
}

// newTriageMetrics registers the counters on mp, or on the global provider
// when mp is nil. A failed registration leaves a counter that records nothing.
func newTriageMetrics(mp metric.MeterProvider, logger *zap.Logger) *triageMetrics {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	events, err := mp.Meter(instrumentationName).Int64Counter(
		"sentrytriage.events",
		metric.WithDescription("Captured events by triage decision."),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		logger.Warn("failed to register triage counter", zap.Error(err))
	}
	return &triageMetrics{events: events}
}

func (m *triageMetrics) record(ctx context.Context, level sentry.Level, d Decision) {
	if m == nil || m.events == nil {
		return
	}
	decision := "drop"
	if d.Forwarded() {
		decision = "forward"
	}
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("decision", decision),
		attribute.String("reason", string(d.Reason)),
		attribute.String("level", string(level)),
	))
}
