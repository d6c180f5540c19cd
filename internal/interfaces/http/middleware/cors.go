package middleware

import (
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/marvelstore/backend/internal/infrastructure/config"
)

// CORS builds the gin-contrib/cors middleware from the HTTP config.
// No configured origins, or "*", means any origin without credentials,
// which is what the storefront needs since it sends bearer tokens.
func CORS(cfg config.HTTPConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}

func corsConfig(cfg config.HTTPConfig) cors.Config {
	c := cors.Config{
		AllowMethods:  cfg.CORSAllowMethods,
		AllowHeaders:  cfg.CORSAllowHeaders,
		ExposeHeaders: []string{RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}

	if len(cfg.CORSAllowOrigins) == 0 || slices.Contains(cfg.CORSAllowOrigins, "*") {
		c.AllowAllOrigins = true
		return c
	}

	c.AllowOrigins = cfg.CORSAllowOrigins
	c.AllowCredentials = true
	c.AllowWildcard = slices.ContainsFunc(cfg.CORSAllowOrigins, func(o string) bool {
		return strings.Contains(o, "*")
	})
	return c
}
