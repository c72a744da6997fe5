package tool

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultAPIBase mirrors the same-origin "/api" prefix the web client is deployed behind.
const DefaultAPIBase = "/api"

// DefaultAPIOrigin is where a relative base is resolved to when running outside the browser.
const DefaultAPIOrigin = "http://localhost:8000"

// ResolveAPIBase turns a configured base ("/api", "http://host:8000/api") into an absolute URL.
func ResolveAPIBase(base string) (*url.URL, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultAPIBase
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid api base %q: %w", base, err)
	}
	if !u.IsAbs() {
		origin, _ := url.Parse(DefaultAPIOrigin)
		u = origin.ResolveReference(&url.URL{Path: "/" + strings.TrimPrefix(u.Path, "/")})
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api base %q: scheme must be http or https", base)
	}
	return u, nil
}

// BuildAPIURL joins path segments onto base; each segment is escaped on its own so ids
// containing "/" stay one segment.
func BuildAPIURL(base *url.URL, segments ...string) string {
	raw := make([]string, 0, len(segments))
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		s = strings.Trim(s, "/")
		raw = append(raw, s)
		escaped = append(escaped, url.PathEscape(s))
	}
	u := *base
	u.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.Join(raw, "/")
	u.RawPath = strings.TrimSuffix(base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	return u.String()
}
