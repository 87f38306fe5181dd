package handlers

import (
	"strconv"
	"strings"

	"culturology/internal/config"

	"github.com/gin-gonic/gin"
)

// ParseSkipLimit parses the skip/limit query params. Missing values take the defaults,
// limit is capped at config.MaxPageLimit, and malformed values are reported as invalid input.
func ParseSkipLimit(c *gin.Context, defaultLimit int) (skip, limit int, ok bool) {
	skip, limit = 0, defaultLimit

	if raw := strings.TrimSpace(c.Query("skip")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			HandleValidationError(c, "skip", raw, "must be a non-negative integer")
			return 0, 0, false
		}
		skip = v
	}

	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			HandleValidationError(c, "limit", raw, "must be a positive integer")
			return 0, 0, false
		}
		limit = v
	}
	if limit > config.MaxPageLimit {
		limit = config.MaxPageLimit
	}

	return skip, limit, true
}

// ParseIDParam parses a positive integer path parameter
func ParseIDParam(c *gin.Context, name string) (int, bool) {
	raw := c.Param(name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		HandleValidationError(c, name, raw, "must be a positive integer")
		return 0, false
	}
	return id, true
}

// ParseFilters returns a map of non-empty trimmed query params for the given keys.
func ParseFilters(c *gin.Context, keys ...string) map[string]string {
	filters := make(map[string]string, len(keys))
	for _, key := range keys {
		if val := strings.TrimSpace(c.Query(key)); val != "" {
			filters[key] = val
		}
	}
	return filters
}
