package sentrytriage

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Configuration keys read by Resolve.
const (
	KeyDSN            = "SENTRY_DSN"
	KeyURL            = "SENTRY_URL"
	KeyEnvironment    = "ENVIRONMENT"
	KeyReportedLevels = "SENTRY_REPORTED_LEVELS"
	KeyExcludeEvents  = "SENTRY_EXCLUDE_EVENTS"
	KeyExcludePaths   = "SENTRY_EXCLUDE_PATHS"
	KeyErrorTypes     = "SENTRY_ERROR_TYPES"
	KeySendDefaultPII = "SENTRY_SEND_DEFAULT_PII"
)

// Resolver looks up a single configuration value. ok is false when the key
// is not set anywhere and the default should be used.
type Resolver interface {
	Lookup(key string) (value any, ok bool)
}

type ResolverFunc func(key string) (any, bool)

func (f ResolverFunc) Lookup(key string) (any, bool) {
	return f(key)
}

type viperResolver struct {
	v *viper.Viper
}

// NewResolver returns a Resolver that checks environment variables first and
// then the constants registry. Empty environment variables count as unset.
func NewResolver(constants map[string]any) Resolver {
	v := viper.New()
	v.AutomaticEnv()
	if len(constants) > 0 {
		// MergeConfigMap only fails on nested maps it cannot merge.
		_ = v.MergeConfigMap(constants)
	}
	return &viperResolver{v: v}
}

func (r *viperResolver) Lookup(key string) (any, bool) {
	if !r.v.IsSet(key) {
		return nil, false
	}
	value := r.v.Get(key)
	if value == nil {
		return nil, false
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return nil, false
	}
	return value, true
}

// Resolve reads the whole Configuration from r. It never fails: a malformed
// value is logged and its field keeps the default.
func Resolve(r Resolver, logger *zap.Logger) Configuration {
	if logger == nil {
		logger = zap.NewNop()
	}
	res := resolution{r: r, logger: logger}

	cfg := Configuration{ErrorTypes: DefaultErrorTypes}

	cfg.DSN = res.str(KeyDSN)
	if cfg.DSN == "" {
		cfg.DSN = res.str(KeyURL)
	}
	cfg.Environment = res.str(KeyEnvironment)

	if names := res.list(KeyReportedLevels, ","); len(names) > 0 {
		levels, err := ParseLevels(names)
		if err != nil {
			res.malformed(KeyReportedLevels, err)
		} else {
			cfg.ReportedLevels = levels
		}
	}
	cfg.ExcludeEvents = res.list(KeyExcludeEvents, "\n")
	cfg.ExcludePaths = res.list(KeyExcludePaths, ",")

	if value, ok := r.Lookup(KeyErrorTypes); ok {
		mask, err := cast.ToIntE(value)
		switch {
		case err != nil:
			res.malformed(KeyErrorTypes, err)
		case mask < 0 || !ErrorType(mask).valid():
			res.malformed(KeyErrorTypes, errors.Errorf("bitmask %d out of range", mask))
		case mask != 0:
			cfg.ErrorTypes = ErrorType(mask)
		}
	}

	if value, ok := r.Lookup(KeySendDefaultPII); ok {
		pii, err := cast.ToBoolE(value)
		if err != nil {
			res.malformed(KeySendDefaultPII, err)
		} else {
			cfg.SendDefaultPII = pii
		}
	}

	return cfg
}

type resolution struct {
	r      Resolver
	logger *zap.Logger
}

func (res resolution) malformed(key string, err error) {
	res.logger.Warn("ignoring malformed configuration value",
		zap.String("key", key),
		zap.Error(err),
	)
}

func (res resolution) str(key string) string {
	value, ok := res.r.Lookup(key)
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		res.malformed(key, err)
		return ""
	}
	return strings.TrimSpace(s)
}

// list accepts a JSON array, a sep-separated string or a native slice.
func (res resolution) list(key, sep string) []string {
	value, ok := res.r.Lookup(key)
	if !ok {
		return nil
	}
	items, err := parseList(value, sep)
	if err != nil {
		res.malformed(key, err)
		return nil
	}
	return items
}

func parseList(value any, sep string) ([]string, error) {
	var items []string
	if s, ok := value.(string); ok {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, "[") {
			if err := json.Unmarshal([]byte(s), &items); err != nil {
				return nil, errors.Wrap(err, "decode JSON list")
			}
		} else {
			items = strings.Split(s, sep)
		}
	} else {
		var err error
		if items, err = cast.ToStringSliceE(value); err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out, nil
}
