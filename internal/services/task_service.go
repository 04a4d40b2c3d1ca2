package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-manager-api/internal/access"
	"github.com/yukikurage/task-manager-api/internal/constants"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/repository"
	"gorm.io/gorm"
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		userRepo: userRepo,
	}
}

// Optional distinguishes a field that was not supplied from one supplied
// with its zero value.
type Optional[T any] struct {
	Set   bool
	Value T
}

// Some returns a supplied Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Role   models.Role
	UserID string
	Status *models.TaskStatus
	Page   int
	Limit  int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	DueDate     *time.Time
	AssignedTo  *string
	CreatorID   string
}

// UpdateTaskInput carries only the fields the caller supplied.
// DueDate and AssignedTo set to nil clear the column.
type UpdateTaskInput struct {
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[models.TaskStatus]
	DueDate     Optional[*time.Time]
	AssignedTo  Optional[*string]
}

// ListTasks returns the tasks visible to the caller's role
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, invalidStatus(*input.Status)
	}

	filter := repository.TaskFilter{
		Scope:  access.ScopeTaskQuery(input.Role, input.UserID),
		Status: input.Status,
		Page:   input.Page,
		Limit:  input.Limit,
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask returns a task the caller is allowed to view
func (s *TaskService) GetTask(ctx context.Context, taskID string, role models.Role, userID string) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID, repository.PreloadCreator, repository.PreloadAssignee)
	if err != nil {
		return nil, err
	}

	if err := access.AuthorizeView(role, userID, task).Err(); err != nil {
		return nil, err
	}

	return task, nil
}

// CreateTask validates input and stores a new task owned by the creator
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if !status.Valid() {
		return nil, invalidStatus(status)
	}

	assignee := normalizeAssignee(input.AssignedTo)
	if assignee != nil {
		if err := s.ensureUserExists(ctx, *assignee); err != nil {
			return nil, err
		}
	}

	task := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		DueDate:     input.DueDate,
		CreatorID:   input.CreatorID,
		AssigneeID:  assignee,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.reload(ctx, task.ID)
}

// UpdateTask applies the supplied fields to a task the caller may modify
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, input UpdateTaskInput, role models.Role, userID string) (*models.Task, error) {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if err := access.AuthorizeMutate(role, userID, task).Err(); err != nil {
		return nil, err
	}

	if input.Title.Set {
		title, err := normalizeTitle(input.Title.Value)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description.Set {
		task.Description = strings.TrimSpace(input.Description.Value)
	}
	if input.Status.Set {
		if !input.Status.Value.Valid() {
			return nil, invalidStatus(input.Status.Value)
		}
		task.Status = input.Status.Value
	}
	if input.DueDate.Set {
		task.DueDate = input.DueDate.Value
	}
	if input.AssignedTo.Set {
		assignee := normalizeAssignee(input.AssignedTo.Value)
		if assignee != nil {
			if err := s.ensureUserExists(ctx, *assignee); err != nil {
				return nil, err
			}
		}
		task.AssigneeID = assignee
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.reload(ctx, task.ID)
}

// DeleteTask removes a task the caller may modify
func (s *TaskService) DeleteTask(ctx context.Context, taskID string, role models.Role, userID string) error {
	task, err := s.findTask(ctx, taskID)
	if err != nil {
		return err
	}

	if err := access.AuthorizeMutate(role, userID, task).Err(); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) findTask(ctx context.Context, taskID string, preload ...string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) reload(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, repository.PreloadCreator, repository.PreloadAssignee)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	return task, nil
}

// ensureUserExists checks an assignee reference. The check and the write
// are not atomic.
func (s *TaskService) ensureUserExists(ctx context.Context, userID string) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to verify assignee: %w", err)
	}
	if !exists {
		return ErrInvalidReference
	}
	return nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	switch n := len([]rune(title)); {
	case n == 0:
		return "", validationError("title is required")
	case n < constants.MinTitleLength:
		return "", validationError("title must be at least %d characters", constants.MinTitleLength)
	case n > constants.MaxTitleLength:
		return "", validationError("title must be at most %d characters", constants.MaxTitleLength)
	}
	return title, nil
}

// normalizeAssignee treats an empty id like no assignee.
func normalizeAssignee(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func invalidStatus(status models.TaskStatus) error {
	return validationError("status %q must be one of: %s, %s, %s", status,
		models.TaskStatusPending, models.TaskStatusInProgress, models.TaskStatusCompleted)
}
