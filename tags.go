package sentrytriage

import (
	"runtime"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
)

// TagSet is the static set of tags attached to every event of a process.
type TagSet map[string]string

// NewTagSet describes the host: platform is the host platform name (used as
// the tag key) and version its version. locale may be a POSIX locale such as
// "en_US.UTF-8"; it is stored as a BCP 47 tag and omitted when unparseable.
func NewTagSet(platform, version, locale string) TagSet {
	tags := TagSet{"go": runtime.Version()}
	if platform != "" && version != "" {
		tags[platform] = version
	}
	if lang := canonicalLanguage(locale); lang != "" {
		tags["language"] = lang
	}
	return tags
}

// DetectLanguage returns the first locale set in LC_ALL, LC_MESSAGES or LANG.
func DetectLanguage(r Resolver) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if value, ok := r.Lookup(key); ok {
			if s := cast.ToString(value); s != "" {
				return s
			}
		}
	}
	return ""
}

func canonicalLanguage(locale string) string {
	// Strip codeset and modifier: en_US.UTF-8@euro -> en_US.
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" || locale == "C" || locale == "POSIX" {
		return ""
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return ""
	}
	return tag.String()
}

func (t TagSet) clone() map[string]string {
	out := make(map[string]string, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}
