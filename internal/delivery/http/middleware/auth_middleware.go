package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skillmatch-backend/internal/delivery/http/response"
	"skillmatch-backend/internal/domain"
	"skillmatch-backend/pkg/auth"
	"skillmatch-backend/pkg/security"
)

// TokenParser verifies access tokens. Satisfied by *auth.TokenManager.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// UserLoader resolves the token subject to a current user.
type UserLoader interface {
	GetCurrentUser(ctx context.Context, id string) (*domain.User, error)
}

func AuthMiddleware(tokens TokenParser, users UserLoader, secLogger *security.SecurityLogger) gin.HandlerFunc {
	reject := func(c *gin.Context, reason, message string) {
		secLogger.LogUnauthorized(c.Request.Context(), c.ClientIP(), c.GetString(response.RequestIDKey), c.FullPath(), reason)
		response.Error(c, http.StatusUnauthorized, message, nil)
	}

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			reject(c, "missing_token", "Authorization header with Bearer token required")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			reject(c, "invalid_token", "Invalid or expired token")
			return
		}

		// role is read from the database, never from the token
		user, err := users.GetCurrentUser(c.Request.Context(), claims.Subject)
		if err != nil {
			reject(c, "unknown_subject", "User not found")
			return
		}

		c.Set(domain.ActorIDKey, user.ID)
		c.Set(domain.ActorEmailKey, user.Email)
		c.Set(domain.ActorRoleKey, string(user.Role))
		c.Next()
	}
}

// CurrentActor returns the authenticated caller set by AuthMiddleware.
func CurrentActor(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID: c.GetString(domain.ActorIDKey),
		Role:   domain.Role(c.GetString(domain.ActorRoleKey)),
	}
}
