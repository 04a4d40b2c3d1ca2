package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-manager-api/internal/access"
	"github.com/yukikurage/task-manager-api/internal/dto"
	apierrors "github.com/yukikurage/task-manager-api/internal/errors"
	"github.com/yukikurage/task-manager-api/internal/middleware"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/services"
	"github.com/yukikurage/task-manager-api/internal/utils"
)

const dateOnlyLayout = "2006-01-02"

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user
// Supports optional status, page and limit query parameters
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	input := services.ListTasksInput{
		Role:   user.Role,
		UserID: user.ID,
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		input.Status = &s
	}
	if params, ok := utils.GetPaginationParams(c); ok {
		input.Page = params.Page
		input.Limit = params.Limit
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTOs(tasks))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), middleware.GetTaskID(c), user.Role, user.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Status      string  `json:"status"`
		DueDate     *string `json:"dueDate"`
		AssignedTo  *string `json:"assignedTo"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		DueDate:     dueDate,
		AssignedTo:  req.AssignedTo,
		CreatorID:   user.ID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates only the fields present in the body
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]json.RawMessage
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := decodeTaskUpdate(rawReq)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), middleware.GetTaskID(c), input, user.Role, user.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), middleware.GetTaskID(c), user.Role, user.ID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, apierrors.ErrCodeTokenMissing, "")
		return nil, false
	}
	return user, true
}

func decodeTaskUpdate(raw map[string]json.RawMessage) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput

	if value, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(value, &title); err != nil {
			return input, errors.New("title must be a string")
		}
		input.Title = services.Some(title)
	}
	if value, ok := raw["description"]; ok {
		var description *string
		if err := json.Unmarshal(value, &description); err != nil {
			return input, errors.New("description must be a string")
		}
		if description == nil {
			input.Description = services.Some("")
		} else {
			input.Description = services.Some(*description)
		}
	}
	if value, ok := raw["status"]; ok {
		var status *string
		if err := json.Unmarshal(value, &status); err != nil || status == nil {
			return input, errors.New("status must be a string")
		}
		input.Status = services.Some(models.TaskStatus(*status))
	}
	if value, ok := raw["dueDate"]; ok {
		var dueDate *string
		if err := json.Unmarshal(value, &dueDate); err != nil {
			return input, errors.New("dueDate must be a date string or null")
		}
		parsed, err := parseDueDate(dueDate)
		if err != nil {
			return input, err
		}
		input.DueDate = services.Some(parsed)
	}
	if value, ok := raw["assignedTo"]; ok {
		var assignedTo *string
		if err := json.Unmarshal(value, &assignedTo); err != nil {
			return input, errors.New("assignedTo must be a user id or null")
		}
		input.AssignedTo = services.Some(assignedTo)
	}

	return input, nil
}

// parseDueDate accepts RFC3339 timestamps and plain dates. Nil or empty means no due date.
func parseDueDate(value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}

	s := strings.TrimSpace(*value)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(dateOnlyLayout, s); err == nil {
		return &t, nil
	}
	return nil, fmt.Errorf("dueDate %q is not a valid date", s)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidReference):
		apierrors.RespondWithCode(c, http.StatusBadRequest, apierrors.ErrCodeInvalidReference, err.Error())
	case errors.Is(err, access.ErrForbidden):
		apierrors.Forbidden(c, "Access denied")
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	default:
		log.Printf("task handler: %v", err)
		apierrors.InternalError(c, "")
	}
}
