package database

import (
	"github.com/yukikurage/task-manager-api/internal/access"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/utils"
	"gorm.io/gorm"
)

// VisibleTo restricts a task query to the rows the scope matches.
// The empty scope matches nothing.
func VisibleTo(scope access.TaskScope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch {
		case scope.All:
			return db
		case scope.Empty():
			return db.Where("1 = 0")
		default:
			return db.Where("creator_id = ? OR assignee_id = ?", scope.UserID, scope.UserID)
		}
	}
}

// WithStatus filters tasks by status when one is given.
func WithStatus(status *models.TaskStatus) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == nil {
			return db
		}
		return db.Where("status = ?", *status)
	}
}

// Paginate pages the query only when a limit was requested.
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		params := utils.NewPaginationParams(page, limit)
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}
