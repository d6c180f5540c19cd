// Package middleware provides the gin middleware of the store API.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/marvelstore/backend/internal/domain/identity"
	"github.com/marvelstore/backend/internal/infrastructure/auth"
	"github.com/marvelstore/backend/internal/infrastructure/logger"
	"github.com/marvelstore/backend/internal/interfaces/http/dto"
)

// Gin context keys set by the middleware
const (
	RequestIDKey   = logger.GinRequestIDKey
	CurrentUserKey = "current_user"
	ClaimsKey      = "auth_claims"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// GetRequestID returns the request ID assigned by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// CurrentUser returns the user loaded by Protect, or nil on public routes
func CurrentUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*identity.User); ok {
			return user
		}
	}
	return nil
}

// CurrentClaims returns the session claims verified by Protect
func CurrentClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// abortWithError stops the chain with the standard error body
func abortWithError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponse(code, message, GetRequestID(c)))
}
