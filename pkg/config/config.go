package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Paths    PathsConfig
	Engine   EngineConfig
	Database DatabaseConfig
	Schedule ScheduleConfig
}

// PathsConfig locates the batch working tree. BaseDir is the directory
// holding PENDIENTES, PROCESADOS and CONSOLIDADO.
type PathsConfig struct {
	BaseDir string
}

// EngineConfig carries the extraction options applied to every document.
type EngineConfig struct {
	SuppressZeroUSD bool
	IncludeZeroRows bool
	AmountLargest   bool
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// ScheduleConfig drives the watch command.
type ScheduleConfig struct {
	Spec string
}

// Load reads configuration from the environment, honoring a .env file in
// the working directory when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Paths: PathsConfig{
			BaseDir: getEnv("CASHLOG_BASE_DIR", "."),
		},
		Engine: EngineConfig{
			SuppressZeroUSD: getEnvAsBool("CASHLOG_SUPPRESS_ZERO_USD", true),
			IncludeZeroRows: getEnvAsBool("CASHLOG_INCLUDE_ZERO_ROWS", true),
			AmountLargest:   getEnvAsBool("CASHLOG_AMOUNT_LARGEST", false),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("CASHLOG_DB_UPLOAD", false),
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvAsInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "postgres"),
			Password: getEnv("POSTGRES_PASSWORD", "postgres"),
			Database: getEnv("POSTGRES_DB", "cashlog"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		},
		Schedule: ScheduleConfig{
			Spec: getEnv("CASHLOG_SCHEDULE", "0 * * * *"),
		},
	}

	if cfg.Paths.BaseDir == "" {
		return nil, errors.New("CASHLOG_BASE_DIR must not be empty")
	}

	return cfg, nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
