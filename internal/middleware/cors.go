package middleware

import (
	"net/http"
	"strings"

	"tennis-score-go/internal/config"

	"github.com/gin-gonic/gin"
)

// DevCORS enables CORS for local development. There's no session cookie in
// this domain, so unlike a credentialed setup this only needs to open the
// door for cross-origin fetches, not carry credentials across it.
func DevCORS(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := strings.TrimSpace(c.GetHeader("Origin"))
		if origin == "" {
			c.Next()
			return
		}

		// Only enable in development to avoid accidentally widening prod surface area.
		if cfg.AppEnv != "development" {
			c.Next()
			return
		}

		// Allow localhost / loopback origins in dev.
		// (Port varies for Vite; host may be localhost or 127.0.0.1)
		if strings.HasPrefix(origin, "http://localhost:") ||
			strings.HasPrefix(origin, "http://127.0.0.1:") ||
			strings.HasPrefix(origin, "http://[::1]:") ||
			strings.HasPrefix(origin, "https://localhost:") ||
			strings.HasPrefix(origin, "https://127.0.0.1:") ||
			strings.HasPrefix(origin, "https://[::1]:") {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Vary", "Origin")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}


