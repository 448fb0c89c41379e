// Package security provides HTTP hardening for the MCP endpoint.
package security

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeadersMiddleware adds security headers to all responses. The server only
// answers JSON and event streams, so nothing may be framed or loaded.
func HeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "no-referrer")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")
		c.Next()
	}
}

// OriginMiddleware rejects browser requests from origins that are not
// allowed, which blocks DNS rebinding against a locally bound server.
// Requests without an Origin header (CLI clients) pass. An empty list allows
// every origin.
func OriginMiddleware(allowedOrigins []string) gin.HandlerFunc {
	originsMap := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		originsMap[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if origin != "" && len(allowedOrigins) > 0 && !originsMap[origin] && !originsMap["*"] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "origin_not_allowed",
				"message": "Origin " + origin + " is not allowed",
			})
			return
		}

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Accept, Mcp-Session-Id, Mcp-Protocol-Version, Last-Event-ID")
			c.Header("Access-Control-Expose-Headers", "Mcp-Session-Id")
			c.Header("Access-Control-Max-Age", "86400")
		}

		// Handle preflight
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
