// Package cli consolidates the startup steps shared by cmd/vibebudget
// and cmd/vibebudget-worker.
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"vibebudget/internal/config"
	applog "vibebudget/internal/log"
	"vibebudget/internal/storage"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger initializes structured logging for the given component and
// installs it as the process default.
func SetupLogger(component string) *applog.Logger {
	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: component,
	})
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

// InitSQLite initializes a SQLite repository with the given path.
// Returns the repository or exits the process on failure.
func InitSQLite(logger *applog.Logger, dbPath string) *storage.SQLiteRepository {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		os.Exit(1)
	}
	return repo
}
