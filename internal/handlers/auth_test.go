package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-manager-api/internal/auth"
	"github.com/yukikurage/task-manager-api/internal/dto"
	apierrors "github.com/yukikurage/task-manager-api/internal/errors"
	"github.com/yukikurage/task-manager-api/internal/models"
	"github.com/yukikurage/task-manager-api/internal/repository"
	"github.com/yukikurage/task-manager-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Task{}))

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo, auth.NewTokenService("handler-secret", time.Hour))
	taskService := services.NewTaskService(repository.NewTaskRepository(db), userRepo)

	router := gin.New()
	RegisterRoutes(router, authService, taskService)

	return testEnv{
		db:          db,
		router:      router,
		authService: authService,
	}
}

func (env testEnv) do(t *testing.T, method, path, token string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	switch p := payload.(type) {
	case nil:
		body = bytes.NewReader(nil)
	case string:
		body = bytes.NewReader([]byte(p))
	default:
		raw, err := json.Marshal(p)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func (env testEnv) register(t *testing.T, username string, role models.Role) (dto.UserDTO, string) {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "supersecret",
		"role":     string(role),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.User, response.Token
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.APIError {
	t.Helper()
	var apiErr apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "newuser",
		"email":    "NewUser@Example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "User registered successfully", response.Message)
	assert.Equal(t, "newuser", response.User.Username)
	assert.Equal(t, "newuser@example.com", response.User.Email)
	assert.Equal(t, models.RoleMember, response.User.Role)
	assert.NotEmpty(t, response.User.ID)
	assert.NotEmpty(t, response.Token)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuthHandler_RegisterErrors(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "taken", models.RoleMember)

	cases := []struct {
		name    string
		payload any
		code    string
	}{
		{"malformed body", "{", apierrors.ErrCodeInvalidInput},
		{"short password", map[string]string{"username": "fresh", "email": "fresh@example.com", "password": "123"}, apierrors.ErrCodeInvalidInput},
		{"bad role", map[string]string{"username": "fresh", "email": "fresh@example.com", "password": "supersecret", "role": "owner"}, apierrors.ErrCodeInvalidInput},
		{"duplicate email", map[string]string{"username": "fresh", "email": "taken@example.com", "password": "supersecret"}, apierrors.ErrCodeEmailTaken},
		{"duplicate username", map[string]string{"username": "taken", "email": "fresh@example.com", "password": "supersecret"}, apierrors.ErrCodeUsernameTaken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/auth/register", "", tc.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.code, decodeError(t, w).Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupTestEnv(t)
	registered, _ := env.register(t, "existing", models.RoleManager)

	w := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "existing@example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Login successful", response.Message)
	assert.Equal(t, registered.ID, response.User.ID)
	assert.Equal(t, models.RoleManager, response.User.Role)
	assert.NotEmpty(t, response.Token)
}

func TestAuthHandler_LoginFailuresLookTheSame(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "existing", models.RoleMember)

	wrongPassword := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "existing@example.com", "password": "not-the-password",
	})
	unknownEmail := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "nobody@example.com", "password": "supersecret",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, apierrors.ErrCodeInvalidCredentials, decodeError(t, wrongPassword).Code)

	missing := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "existing@example.com"})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestAuthHandler_Profile(t *testing.T) {
	env := setupTestEnv(t)
	registered, token := env.register(t, "current-user", models.RoleAdmin)

	w := env.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, registered, response.User)

	w = env.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apierrors.ErrCodeTokenMissing, decodeError(t, w).Code)
}
