package constants

import "time"

// Context keys
const (
	ContextKeyUser   = "user"
	ContextKeyTaskID = "task_id"
)

// Validation limits
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 6
	MinTitleLength    = 3
	MaxTitleLength    = 200
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Auth
const (
	BearerPrefix         = "Bearer "
	DefaultTokenLifetime = 24 * time.Hour
)
