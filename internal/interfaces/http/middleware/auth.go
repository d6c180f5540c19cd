package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/marvelstore/backend/internal/domain/identity"
	"github.com/marvelstore/backend/internal/domain/shared"
	"github.com/marvelstore/backend/internal/infrastructure/auth"
	"github.com/marvelstore/backend/internal/infrastructure/logger"
	"github.com/marvelstore/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Gate failure messages
const (
	msgNoToken     = "Not authorized, no token"
	msgTokenFailed = "Not authorized, token failed"
	msgNotAdmin    = "Not authorized as an admin"
)

// Authenticator resolves a bearer token to its user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.User, *auth.Claims, error)
}

// Protect requires a valid session. The user and claims are stored in the
// gin context and the user ID is added to the request context for logging.
func Protect(authenticator Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, dto.ErrCodeNoToken, msgNoToken)
			return
		}

		user, claims, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			if de, ok := shared.AsDomainError(err); ok {
				abortWithError(c, de.Code, de.Message)
				return
			}
			logger.GetGinLogger(c).Error("Session check failed", zap.Error(err))
			abortWithError(c, dto.ErrCodeUnauthorized, msgTokenFailed)
			return
		}

		c.Set(CurrentUserKey, user)
		c.Set(ClaimsKey, claims)

		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), user.ID.String()))
		c.Next()
	}
}

// Admin requires the session user to have the admin role. It must run after Protect.
func Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil || !user.IsAdmin() {
			abortWithError(c, dto.ErrCodeForbidden, msgNotAdmin)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
