// Package bootstrap is the minimal internal admin HTTP surface used to
// create the rows (Plan, VpsConfig, User, Agent, Vps, OverageBudget) the
// forward proxy, gateway proxy, provider, and monitor packages operate on.
// It is not a product surface — just enough to exercise and test the rest
// of the core, the way the source keeps a routes/ tree beside the
// components it fronts.
package bootstrap

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cludbox/control-plane/internal/auth"
)

const apiKeyHeader = "X-Admin-Key"

// APIKeyAuth rejects every request unless it carries X-Admin-Key matching
// the configured bcrypt hash. Hashing, not a plain equality check, is used
// because the hash (not the plaintext key) is what lives in configuration.
func APIKeyAuth(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			slog.Warn("admin API key not configured, rejecting request", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "admin API is not configured"})
			return
		}

		provided := c.GetHeader(apiKeyHeader)
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing admin key"})
			return
		}

		if !auth.CheckAPIKey(provided, keyHash) {
			slog.Warn("invalid admin key attempt", "path", c.Request.URL.Path, "client_ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}

		c.Next()
	}
}
