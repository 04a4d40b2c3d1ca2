package middleware

import (
	"errors"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-manager-api/internal/auth"
	"github.com/yukikurage/task-manager-api/internal/constants"
	apierrors "github.com/yukikurage/task-manager-api/internal/errors"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/services"
)

// RequireAuth checks the bearer token and loads the user it belongs to
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, constants.BearerPrefix) {
			apierrors.Unauthorized(c, apierrors.ErrCodeTokenMissing, "Access token required")
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, constants.BearerPrefix))
		if token == "" {
			apierrors.Unauthorized(c, apierrors.ErrCodeTokenMissing, "Access token required")
			return
		}

		user, err := authService.ResolveToken(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				apierrors.Unauthorized(c, apierrors.ErrCodeTokenExpired, "Token expired")
			case errors.Is(err, auth.ErrTokenInvalid), errors.Is(err, services.ErrUserNotFound):
				apierrors.Unauthorized(c, apierrors.ErrCodeTokenInvalid, "Invalid token")
			default:
				log.Printf("auth: resolve token: %v", err)
				apierrors.InternalError(c, "")
			}
			return
		}

		// Store the user in context for easy access in handlers
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

// GetUser retrieves the authenticated user from context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
