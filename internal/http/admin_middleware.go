package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const adminKeyHeader = "X-Admin-Key"

// AdminKeyMiddleware compara X-Admin-Key contra el hash bcrypt configurado.
func AdminKeyMiddleware(keyHash string) gin.HandlerFunc {
	keyHash = strings.TrimSpace(keyHash)
	return func(c *gin.Context) {
		if keyHash == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "admin access not configured"})
			c.Abort()
			return
		}

		key := strings.TrimSpace(c.GetHeader(adminKeyHeader))
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing admin key"})
			c.Abort()
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
