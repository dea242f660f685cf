// Package urlutil canonicalizes the URL forms encountered on article pages:
// relative paths, protocol-relative references and data URLs.
package urlutil

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// Normalize resolves raw against base and returns an absolute URL string.
// Rules, in order: empty input stays empty; data URLs pass through
// untouched; protocol-relative references take base's scheme; absolute
// http(s) URLs pass through; everything else resolves against base.
// A reference that cannot be parsed is returned unchanged, never an error.
func Normalize(raw string, base *url.URL) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "data:") {
		return raw
	}
	if strings.HasPrefix(raw, "//") {
		scheme := "https"
		if base != nil && base.Scheme != "" {
			scheme = base.Scheme
		}
		return scheme + ":" + raw
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return raw
	}
	ref, err := url.Parse(raw)
	if err != nil {
		log.Warn().Str("url", raw).Err(err).Msg("unparseable URL left as is")
		return raw
	}
	if base == nil {
		return raw
	}
	return base.ResolveReference(ref).String()
}

// MustParse parses s and returns nil on failure. Convenience for call
// sites that treat a bad base the same as no base.
func MustParse(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		return nil
	}
	return u
}
