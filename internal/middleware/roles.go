package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-manager-api/internal/errors"
	"github.com/yukikurage/task-manager-api/internal/models"
)

// AuthorizeRoles lets the request through only when the authenticated
// user holds one of roles. Must run after RequireAuth.
func AuthorizeRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := GetUser(c)
		if !exists {
			apierrors.Unauthorized(c, apierrors.ErrCodeTokenMissing, "")
			return
		}

		if !slices.Contains(roles, user.Role) {
			apierrors.Forbidden(c, "Insufficient permissions")
			return
		}

		c.Next()
	}
}
