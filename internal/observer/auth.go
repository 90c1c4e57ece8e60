package observer

import (
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware returns a Gin middleware validating bearer tokens
// against OBSERVER_AUTH_TOKEN. If the variable is unset, all requests
// are allowed — the observer surface defaults to open for local
// development, matching the core's design philosophy of never
// gating functionality on an absent peripheral collaborator.
func AuthMiddleware() gin.HandlerFunc {
	token := os.Getenv("OBSERVER_AUTH_TOKEN")

	if token == "" && os.Getenv("GIN_MODE") == "release" {
		log.Println("[SECURITY WARNING] OBSERVER_AUTH_TOKEN is not set in release mode. " +
			"The observer's event stream and enumerative endpoints are publicly accessible. " +
			"Set OBSERVER_AUTH_TOKEN to enforce authentication.")
	}

	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}

		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "missing Authorization header",
				"hint":  "Use: Authorization: Bearer <OBSERVER_AUTH_TOKEN>",
			})
			c.Abort()
			return
		}

		parts := strings.SplitN(auth, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid Authorization header format"})
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Next()
	}
}
