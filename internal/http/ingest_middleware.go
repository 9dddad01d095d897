package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

const ingestKeyHeader = "X-Ingest-Key"

// IngestKeyMiddleware autentica al pipeline de ingesta externo comparando la
// clave presentada contra el hash bcrypt configurado.
func IngestKeyMiddleware(keyHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if keyHash == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingest key not configured"})
			c.Abort()
			return
		}

		key := strings.TrimSpace(c.GetHeader(ingestKeyHeader))
		if key == "" || bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid ingest key"})
			c.Abort()
			return
		}
		c.Next()
	}
}
