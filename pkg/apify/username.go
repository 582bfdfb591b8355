package apify

import (
	"strings"

	"igdigest/pkg/errors"
)

// NormalizeUsername turns what the user typed into a bare Instagram
// handle. Full profile URLs are accepted: the scheme, host, and trailing
// slashes are stripped and the last path segment is taken. A leading "@"
// is tolerated.
func NormalizeUsername(raw string) (string, error) {
	username := strings.TrimSpace(raw)
	if username == "" {
		return "", errors.New(errors.ErrorTypeParsing, "username must not be empty")
	}

	username = strings.TrimRight(username, "/")
	if idx := strings.LastIndex(username, "/"); idx >= 0 {
		username = username[idx+1:]
	}
	username = strings.TrimPrefix(username, "@")

	if username == "" || strings.ContainsAny(username, " ?#") {
		return "", errors.Newf(errors.ErrorTypeParsing, "could not extract a username from %q", raw)
	}

	return username, nil
}
