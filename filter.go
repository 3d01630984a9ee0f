package sentrytriage

import (
	"context"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Filter binds Evaluate to a fixed configuration so it can be installed as
// sentry.ClientOptions.BeforeSend. It is safe for concurrent use.
type Filter struct {
	cfg     Configuration
	logger  *zap.Logger
	metrics *triageMetrics

	meterProvider metric.MeterProvider
}

type FilterOption func(*Filter)

func WithFilterLogger(logger *zap.Logger) FilterOption {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

func WithFilterMeterProvider(mp metric.MeterProvider) FilterOption {
	return func(f *Filter) {
		f.meterProvider = mp
	}
}

func NewFilter(cfg Configuration, opts ...FilterOption) *Filter {
	f := &Filter{
		cfg:    cfg.Clone(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.metrics = newTriageMetrics(f.meterProvider, f.logger)
	return f
}

// Configuration returns a copy of the configuration the filter evaluates with.
func (f *Filter) Configuration() Configuration {
	return f.cfg.Clone()
}

// Evaluate decides on event and records the decision. A zero Filter evaluates
// with the zero configuration and does not log.
func (f *Filter) Evaluate(ctx context.Context, event *sentry.Event) Decision {
	d := Evaluate(event, &f.cfg)

	var level sentry.Level
	if event != nil {
		level = event.Level
	}
	f.metrics.record(ctx, level, d)

	if !d.Forwarded() && event != nil && f.logger != nil {
		f.logger.Debug("event dropped",
			zap.String("reason", string(d.Reason)),
			zap.String("level", string(level)),
			zap.String("event_id", string(event.EventID)),
		)
	}
	return d
}

// BeforeSend has the signature of sentry.ClientOptions.BeforeSend.
func (f *Filter) BeforeSend(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
	ctx := context.Background()
	if hint != nil && hint.Context != nil {
		ctx = hint.Context
	}
	return f.Evaluate(ctx, event).Event
}
