package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-manager-api/internal/middleware"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/services"
)

// RegisterRoutes mounts the auth and task endpoints under /api
func RegisterRoutes(r gin.IRouter, authService *services.AuthService, taskService *services.TaskService) {
	authHandler := NewAuthHandler(authService)
	taskHandler := NewTaskHandler(taskService)
	requireAuth := middleware.RequireAuth(authService)

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.GET("/profile", requireAuth, authHandler.Profile)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth, middleware.AuthorizeRoles(models.Roles...))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.ValidateTaskID(), taskHandler.GetTask)
			tasks.PUT("/:id", middleware.ValidateTaskID(), taskHandler.UpdateTask)
			tasks.DELETE("/:id", middleware.ValidateTaskID(), taskHandler.DeleteTask)
		}
	}
}
