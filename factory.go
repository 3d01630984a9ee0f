package sentrytriage

import "github.com/getsentry/sentry-go"

// ClientFactory builds the sentry client from the options prepared by New,
// which already carry the triage filter as BeforeSend.
type ClientFactory func(opts sentry.ClientOptions) (*sentry.Client, error)

func NewClientFromOptions() ClientFactory {
	return func(opts sentry.ClientOptions) (*sentry.Client, error) {
		return sentry.NewClient(opts)
	}
}

// NewClientFromTransport replaces the HTTP transport, e.g. to record events in
// tests or to hand them to an existing delivery pipeline.
func NewClientFromTransport(transport sentry.Transport) ClientFactory {
	return func(opts sentry.ClientOptions) (*sentry.Client, error) {
		opts.Transport = transport
		return sentry.NewClient(opts)
	}
}
