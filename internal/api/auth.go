package api

import (
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/juju/errors"
)

// ──────────────────────────────────────────────────────────────────
// Bearer Token Authentication Middleware
//
// Reads DEDUPE_AUTH_TOKEN from the environment. If set, every route
// under the auth-protected group (/dedupe, /cache/*, /shadow/compare)
// requires: Authorization: Bearer <token>
//
// Public endpoints (/health, /stream) are excluded — a reviewer
// dashboard needs to reach the progress websocket before it ever has
// a token to send.
// ──────────────────────────────────────────────────────────────────

// AuthMiddleware returns a Gin middleware that validates bearer tokens
// against DEDUPE_AUTH_TOKEN. If unset, every request is allowed (dev
// mode). WARNING: in GIN_MODE=release, leaving DEDUPE_AUTH_TOKEN unset
// exposes the dedupe/cache/shadow endpoints — which carry beneficiary
// PII — to the public internet. Always set a strong token in prod.
func AuthMiddleware() gin.HandlerFunc {
	token := os.Getenv("DEDUPE_AUTH_TOKEN")

	if token == "" && os.Getenv("GIN_MODE") == "release" {
		log.Println(errors.New("DEDUPE_AUTH_TOKEN is not set in release mode — " +
			"dedupe, cache and shadow-compare endpoints are publicly accessible; " +
			"set DEDUPE_AUTH_TOKEN in the environment to enforce authentication"))
	}

	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Missing Authorization header",
				"hint":  "Use: Authorization: Bearer <DEDUPE_AUTH_TOKEN>",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid Authorization header format"})
			c.Abort()
			return
		}

		// Constant-time comparison to prevent timing-based token enumeration.
		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
