package repository

import (
	"context"

	"github.com/yukikurage/task-manager-api/internal/access"
	"github.com/yukikurage/task-manager-api/internal/models"
)

// Preload names for task relations.
const (
	PreloadCreator  = "Creator"
	PreloadAssignee = "Assignee"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter, oldest first
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update persists every column of the task, including nulls
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id string) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Scope  access.TaskScope
	Status *models.TaskStatus
	Page   int
	Limit  int
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// Exists reports whether a user with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
}
