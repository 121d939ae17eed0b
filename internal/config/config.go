// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/plan"
)

// Config holds the application configuration.
type Config struct {
	DataDirs        []string
	DatabasePath    string
	Plan            models.Plan
	PlansFile       string
	PlanTable       plan.Table
	RefreshInterval time.Duration
	PollInterval    time.Duration
	HistoryDays     int
	Timezone        string
	Location        *time.Location
	LogFile         string
	LogLevel        string
	Notifications   bool
}

// Default values
const (
	defaultPlan            = models.PlanPro
	defaultRefreshInterval = 5 * time.Second
	defaultPollInterval    = 10 * time.Second
	defaultHistoryDays     = 8
	defaultTimezone        = "Local"
	defaultLogLevel        = "info"
	appDirName             = "burnrate-tui"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	selected, err := models.ParsePlan(getEnvString("PLAN", string(defaultPlan)))
	if err != nil {
		return nil, fmt.Errorf("invalid PLAN: %w", err)
	}

	cfg := &Config{
		DataDirs:        getEnvPathList("CLAUDE_DATA_DIRS", getDefaultDataDirs()),
		DatabasePath:    getEnvString("DATABASE_PATH", getDefaultPath("usage.db")),
		Plan:            selected,
		PlansFile:       getEnvString("PLANS_FILE", getDefaultPath("plans.toml")),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", defaultRefreshInterval),
		PollInterval:    getEnvDuration("POLL_INTERVAL", defaultPollInterval),
		HistoryDays:     getEnvInt("HISTORY_DAYS", defaultHistoryDays),
		Timezone:        getEnvString("TIMEZONE", defaultTimezone),
		LogFile:         getEnvString("LOG_FILE", getDefaultPath("burnrate.log")),
		LogLevel:        getEnvString("LOG_LEVEL", defaultLogLevel),
		Notifications:   getEnvBool("NOTIFICATIONS", true),
	}

	if cfg.HistoryDays <= 0 {
		return nil, fmt.Errorf("HISTORY_DAYS must be positive, got %d", cfg.HistoryDays)
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	cfg.PlanTable, err = LoadPlanTable(cfg.PlansFile)
	if err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, ".claude", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultDataDirs returns the directories usage logs are written to.
func getDefaultDataDirs() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".claude", "projects"),
		filepath.Join(home, ".config", "claude", "projects"),
	}
}

// getDefaultPath returns name inside the application config directory.
func getDefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvPathList retrieves a path list separated by os.PathListSeparator.
func getEnvPathList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, p := range filepath.SplitList(value) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, expandHome(p))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
