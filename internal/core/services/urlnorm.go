package services

import (
	"net/url"
	"strings"
)

// NormalizeURL validates a submitted URL and returns the key used for
// duplicate detection: lower-cased, fragment dropped, default port and
// trailing slash removed.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrTaskInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrTaskInvalidURL
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", ErrTaskInvalidURL
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", ErrTaskInvalidURL
	}
	if port := u.Port(); port != "" {
		if !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
			host = host + ":" + port
		}
	}

	path := strings.TrimRight(u.EscapedPath(), "/")

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(strings.ToLower(path))
	if u.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(strings.ToLower(u.RawQuery))
	}
	return b.String(), nil
}
