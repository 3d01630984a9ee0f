package sentrytriage

import "github.com/getsentry/sentry-go"

// ErrorType classifies a host error before it becomes an event. The reporter
// only captures error types contained in Configuration.ErrorTypes.
type ErrorType uint

const (
	ErrorTypeFatal ErrorType = 1 << iota
	ErrorTypeError
	ErrorTypeWarning
	ErrorTypeNotice
	ErrorTypeDeprecated

	ErrorTypeAll = ErrorTypeFatal | ErrorTypeError | ErrorTypeWarning | ErrorTypeNotice | ErrorTypeDeprecated

	// DefaultErrorTypes captures everything except notices and warnings.
	DefaultErrorTypes = ErrorTypeAll &^ ErrorTypeNotice &^ ErrorTypeWarning
)

// Has reports whether every bit of other is set in the mask t.
func (t ErrorType) Has(other ErrorType) bool {
	return other != 0 && t&other == other
}

// Level is the event severity used for an error of this type.
func (t ErrorType) Level() sentry.Level {
	switch t {
	case ErrorTypeFatal:
		return sentry.LevelFatal
	case ErrorTypeWarning, ErrorTypeDeprecated:
		return sentry.LevelWarning
	case ErrorTypeNotice:
		return sentry.LevelInfo
	default:
		return sentry.LevelError
	}
}

func (t ErrorType) valid() bool {
	return t&^ErrorTypeAll == 0
}
