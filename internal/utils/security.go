package contextutils

import (
	"strings"
)

// MaskAPIKey hides a provider or admin key for logs, keeping the first and last four bytes
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "[EMPTY]"
	}
	if len(apiKey) <= 8 {
		return strings.Repeat("*", len(apiKey))
	}
	return apiKey[:4] + strings.Repeat("*", len(apiKey)-8) + apiKey[len(apiKey)-4:]
}

// MaskDatabaseURL replaces the userinfo of a postgres:// URL. sqlite:// paths pass through.
func MaskDatabaseURL(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		return scheme + "://***:***@" + rest[at+1:]
	}
	return url
}
