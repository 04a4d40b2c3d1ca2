package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/task-manager-api/internal/constants"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port             string
	GinMode          string
	DBDriver         string
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	DBLogLevel       string
	SQLitePath       string
	JWTSecret        string
	JWTExpiresIn     time.Duration
	CORSAllowOrigins []string
}

func Load() *Config {
	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMySQL))

	return &Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		DBDriver:         driver,
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", defaultDBPort(driver)),
		DBUser:           getEnv("DB_USER", "taskuser"),
		DBPassword:       getEnv("DB_PASSWORD", "taskpassword"),
		DBName:           getEnv("DB_NAME", "task_manager"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		DBLogLevel:       getEnv("DB_LOG_LEVEL", "warn"),
		SQLitePath:       getEnv("SQLITE_PATH", "task_manager.db"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTExpiresIn:     getEnvDuration("JWT_EXPIRES_IN", constants.DefaultTokenLifetime),
		CORSAllowOrigins: splitList(getEnv("CORS_ALLOW_ORIGINS", "*")),
	}
}

// ErrMissingJWTSecret is returned by Validate when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set")

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWTSecret) == "" {
		return ErrMissingJWTSecret
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
	case DriverSQLite:
		return c.SQLitePath
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

// ParseDuration accepts Go durations ("90m", "12h") and whole days ("7d").
func ParseDuration(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if days, ok := strings.CutSuffix(value, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid day duration %q: %w", value, err)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(value)
}

func defaultDBPort(driver string) string {
	if driver == DriverPostgres {
		return "5432"
	}
	return "3306"
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
