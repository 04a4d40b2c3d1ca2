package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/task-manager-api/internal/constants"
	apierrors "github.com/yukikurage/task-manager-api/internal/errors"
)

// ValidateTaskID rejects task ids that cannot exist.
// A malformed id is reported as not found rather than bad input.
func ValidateTaskID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			apierrors.NotFound(c, "Task not found")
			return
		}

		c.Set(constants.ContextKeyTaskID, id.String())
		c.Next()
	}
}

// GetTaskID retrieves the validated task ID from context
func GetTaskID(c *gin.Context) string {
	return c.GetString(constants.ContextKeyTaskID)
}
