// Package middleware provides authentication, validation and recovery middleware for the Gin web framework.
package middleware

import (
	"crypto/subtle"

	contextutils "culturology/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader carries the admin key on write requests
const APIKeyHeader = "X-Api-Key"

// AdminKeyConfig holds the accepted admin key. Hash wins when both are set.
type AdminKeyConfig struct {
	Key  string
	Hash string // bcrypt
}

// RequireAdminKey rejects requests whose X-Api-Key does not match the configured admin key
func RequireAdminKey(cfg AdminKeyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.matches(c.GetHeader(APIKeyHeader)) {
			HandleAppError(c, contextutils.NewAppError(
				contextutils.ErrorCodeUnauthorized,
				contextutils.SeverityWarn,
				"Invalid or missing X-Api-Key",
				"",
			))
			c.Abort()
			return
		}

		c.Next()
	}
}

func (cfg AdminKeyConfig) matches(provided string) bool {
	if provided == "" {
		return false
	}
	if cfg.Hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(cfg.Hash), []byte(provided)) == nil
	}
	if cfg.Key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cfg.Key), []byte(provided)) == 1
}
