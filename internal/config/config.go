package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// JWT configuration
	JWT JWTConfig

	// Admin credentials
	Admin AdminConfig

	// Redis configuration (token revocation)
	Redis RedisConfig

	// CORS configuration
	CORS CORSConfig

	// Upload configuration
	Uploads UploadConfig

	// Schedule configuration
	Schedule ScheduleConfig

	// Security configuration
	Security SecurityConfig

	// Admin login throttling
	LoginLimit LoginLimitConfig

	// History retention job
	Retention RetentionConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string
	Environment    string // development, staging, production
	LogLevel       string // debug, info, warn, error
	RequestTimeout time.Duration
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path           string // SQLite file path, ":memory:" for an in-memory database
	MaxConnections int
	BusyTimeout    time.Duration
}

// JWTConfig holds JWT-related configuration
type JWTConfig struct {
	Secret            string
	AccessTokenExpiry time.Duration
}

// AdminConfig holds the single admin account
type AdminConfig struct {
	ID           string
	PasswordHash string // bcrypt hash, preferred
	Password     string // plain password, development only
}

// RedisConfig holds Redis connection settings. An empty URL keeps revocations in memory.
type RedisConfig struct {
	URL string
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// UploadConfig holds image upload configuration
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// ScheduleConfig holds calendar settings for "today"
type ScheduleConfig struct {
	TimeZone string // IANA name, empty or "Local" for the server's local zone
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EnforceGuestIdentity bool
	EnableRequestLog     bool
}

// LoginLimitConfig holds the failed admin login throttle
type LoginLimitConfig struct {
	MaxAttempts int // 0 disables throttling
	Window      time.Duration
}

// RetentionConfig holds the nightly cleanup of old progress and assignments
type RetentionConfig struct {
	Days     int    // history kept, 0 disables the job
	Schedule string // cron spec with seconds
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "5000"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			RequestTimeout: time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Database: DatabaseConfig{
			Path:           getEnv("DATABASE_PATH", "duty_schedule.db"),
			MaxConnections: getEnvAsInt("DATABASE_MAX_CONNECTIONS", 1),
			BusyTimeout:    time.Duration(getEnvAsInt("DATABASE_BUSY_TIMEOUT_MS", 5000)) * time.Millisecond,
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: time.Duration(getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY", 43200)) * time.Second,
		},
		Admin: AdminConfig{
			ID:           getEnv("ADMIN_ID", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			Password:     getEnv("ADMIN_PASSWORD", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Uploads: UploadConfig{
			Dir:      getEnv("UPLOADS_DIR", "./uploads"),
			MaxBytes: int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10*1024*1024)),
		},
		Schedule: ScheduleConfig{
			TimeZone: getEnv("SCHEDULE_TIMEZONE", "Local"),
		},
		Security: SecurityConfig{
			EnforceGuestIdentity: getEnvAsBool("ENFORCE_GUEST_IDENTITY", false),
			EnableRequestLog:     getEnvAsBool("ENABLE_REQUEST_LOGGING", true),
		},
		LoginLimit: LoginLimitConfig{
			MaxAttempts: getEnvAsInt("ADMIN_LOGIN_MAX_ATTEMPTS", 5),
			Window:      time.Duration(getEnvAsInt("ADMIN_LOGIN_WINDOW_MINUTES", 15)) * time.Minute,
		},
		Retention: RetentionConfig{
			Days:     getEnvAsInt("HISTORY_RETENTION_DAYS", 0),
			Schedule: getEnv("HISTORY_RETENTION_SCHEDULE", "0 0 3 * * *"),
		},
	}

	// Validate required configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Admin.ID == "" {
		return fmt.Errorf("ADMIN_ID is required")
	}

	if c.Admin.PasswordHash == "" && c.Admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH or ADMIN_PASSWORD is required")
	}

	// Plain admin passwords are a development convenience only
	if c.IsProduction() && c.Admin.PasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required in production")
	}

	if _, err := c.Schedule.Location(); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", c.Schedule.TimeZone, err)
	}

	if c.Retention.Days < 0 {
		return fmt.Errorf("HISTORY_RETENTION_DAYS must not be negative")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Location resolves the configured schedule time zone
func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.TimeZone == "" || s.TimeZone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(s.TimeZone)
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
