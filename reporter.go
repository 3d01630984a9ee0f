package sentrytriage

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const defaultFlushTimeout = 5 * time.Second

// Reporter owns the sentry client and hub of the process. Construct it once
// at startup and pass it to whatever captures errors.
type Reporter struct {
	client       *sentry.Client
	hub          *sentry.Hub
	filter       *Filter
	cfg          Configuration
	logger       *zap.Logger
	flushTimeout time.Duration
}

type Option func(*reporterOptions)

type reporterOptions struct {
	logger        *zap.Logger
	tags          TagSet
	meterProvider metric.MeterProvider
	flushTimeout  time.Duration
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *reporterOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTags sets the tag set attached to the reporter scope.
func WithTags(tags TagSet) Option {
	return func(o *reporterOptions) {
		o.tags = tags
	}
}

func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *reporterOptions) {
		o.meterProvider = mp
	}
}

func WithFlushTimeout(d time.Duration) Option {
	return func(o *reporterOptions) {
		if d > 0 {
			o.flushTimeout = d
		}
	}
}

// New builds the client with the triage filter installed as BeforeSend. With
// an empty DSN and no factory the returned reporter is disabled and every
// capture is a no-op.
func New(cfg Configuration, factory ClientFactory, opts ...Option) (*Reporter, error) {
	o := reporterOptions{
		logger:       zap.NewNop(),
		flushTimeout: defaultFlushTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.Clone()
	if cfg.ErrorTypes == 0 {
		cfg.ErrorTypes = DefaultErrorTypes
	}

	logger := o.logger.With(zap.String("component", "sentrytriage"))
	r := &Reporter{
		cfg:          cfg,
		logger:       logger,
		flushTimeout: o.flushTimeout,
		filter: NewFilter(cfg,
			WithFilterLogger(logger),
			WithFilterMeterProvider(o.meterProvider),
		),
	}

	if factory == nil {
		if cfg.DSN == "" {
			logger.Info("no DSN configured, error reporting disabled")
			return r, nil
		}
		factory = NewClientFromOptions()
	}

	client, err := factory(sentry.ClientOptions{
		Dsn:            cfg.DSN,
		Environment:    cfg.Environment,
		SendDefaultPII: cfg.SendDefaultPII,
		BeforeSend:     r.filter.BeforeSend,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create sentry client")
	}

	scope := sentry.NewScope()
	if len(o.tags) > 0 {
		scope.SetTags(o.tags.clone())
	}
	r.client = client
	r.hub = sentry.NewHub(client, scope)
	return r, nil
}

// Enabled reports whether events are sent anywhere.
func (r *Reporter) Enabled() bool {
	return r != nil && r.client != nil
}

func (r *Reporter) Hub() *sentry.Hub {
	return r.hub
}

func (r *Reporter) Filter() *Filter {
	return r.filter
}

func (r *Reporter) Configuration() Configuration {
	return r.cfg.Clone()
}

// CaptureException reports err as an error-type error.
func (r *Reporter) CaptureException(err error) *sentry.EventID {
	return r.CaptureError(err, ErrorTypeError)
}

// CaptureError reports err when typ is enabled in Configuration.ErrorTypes.
// The event level follows the error type.
func (r *Reporter) CaptureError(err error, typ ErrorType) *sentry.EventID {
	if !r.Enabled() || err == nil {
		return nil
	}
	if !r.cfg.ErrorTypes.Has(typ) {
		r.logger.Debug("error type not reported", zap.Uint("error_type", uint(typ)), zap.Error(err))
		return nil
	}

	scope := r.hub.Scope().Clone()
	scope.SetLevel(typ.Level())
	return r.client.CaptureException(err, nil, scope)
}

// CaptureEvent sends a prepared event through the filter.
func (r *Reporter) CaptureEvent(event *sentry.Event) *sentry.EventID {
	if !r.Enabled() || event == nil {
		return nil
	}
	return r.hub.CaptureEvent(event)
}

// CapturePanic reports a recovered panic value at fatal level and flushes,
// since the process may be about to exit.
func (r *Reporter) CapturePanic(recovered any) *sentry.EventID {
	if !r.Enabled() || recovered == nil {
		return nil
	}
	id := r.hub.Recover(recovered)
	r.Flush(r.flushTimeout)
	return id
}

// Recover must be deferred directly. It reports a panic and then re-raises it.
func (r *Reporter) Recover() {
	if recovered := recover(); recovered != nil {
		r.CapturePanic(recovered)
		panic(recovered)
	}
}

// Flush waits for buffered events, at most timeout. It returns false on timeout.
func (r *Reporter) Flush(timeout time.Duration) bool {
	if !r.Enabled() {
		return true
	}
	return r.client.Flush(timeout)
}

// Shutdown flushes buffered events before the process exits, bounded by the
// context deadline or the flush timeout.
func (r *Reporter) Shutdown(ctx context.Context) error {
	if !r.Enabled() {
		return nil
	}
	timeout := r.flushTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.Flush(timeout) {
		return errors.New("sentrytriage: flush timed out")
	}
	return nil
}
