package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/j-veylop/burnrate-tui/internal/models"
	"github.com/j-veylop/burnrate-tui/internal/services/plan"
)

// isolate points HOME and the working directory at a fresh temp dir and
// clears every variable Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	for _, key := range []string{
		"CLAUDE_DATA_DIRS", "DATABASE_PATH", "PLAN", "PLANS_FILE",
		"REFRESH_INTERVAL", "POLL_INTERVAL", "HISTORY_DAYS", "TIMEZONE",
		"LOG_FILE", "LOG_LEVEL", "NOTIFICATIONS",
	} {
		t.Setenv(key, "")
	}
	wd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(wd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	return tmpDir
}

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	os.Setenv(key, val)
	defer os.Unsetenv(key)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(key, tt.envVal)
				defer os.Unsetenv(key)
			} else {
				os.Unsetenv(key)
			}

			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvIntAndBool(t *testing.T) {
	t.Setenv("TEST_INT", " 12 ")
	t.Setenv("TEST_BAD_INT", "twelve")
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_BAD_BOOL", "nope")

	if got := getEnvInt("TEST_INT", 1); got != 12 {
		t.Errorf("getEnvInt() = %d, want 12", got)
	}
	if got := getEnvInt("TEST_BAD_INT", 1); got != 1 {
		t.Errorf("getEnvInt() invalid = %d, want 1", got)
	}
	if got := getEnvBool("TEST_BOOL", true); got {
		t.Error("getEnvBool() = true, want false")
	}
	if got := getEnvBool("TEST_BAD_BOOL", true); !got {
		t.Error("getEnvBool() invalid should return default")
	}
}

func TestGetEnvPathList(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	sep := string(os.PathListSeparator)
	t.Setenv("TEST_PATHS", "/a/b"+sep+" "+sep+"~/logs")

	got := getEnvPathList("TEST_PATHS", []string{"default"})
	want := []string{"/a/b", filepath.Join(home, "logs")}
	if len(got) != len(want) {
		t.Fatalf("getEnvPathList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("path %d = %q, want %q", i, got[i], want[i])
		}
	}

	if got := getEnvPathList("TEST_PATHS_UNSET", []string{"default"}); len(got) != 1 || got[0] != "default" {
		t.Errorf("getEnvPathList() unset = %v, want [default]", got)
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetDefaultPaths(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if got, want := getDefaultPath("usage.db"), filepath.Join(home, ".config", "burnrate-tui", "usage.db"); got != want {
		t.Errorf("getDefaultPath() = %q, want %q", got, want)
	}

	dirs := getDefaultDataDirs()
	if len(dirs) != 2 || dirs[0] != filepath.Join(home, ".claude", "projects") {
		t.Errorf("getDefaultDataDirs() = %v", dirs)
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Error("getEnvPaths() returned empty list")
	}

	// Basic check that it contains current directory
	cwd, _ := os.Getwd()
	found := false
	for _, p := range paths {
		if p == filepath.Join(cwd, ".env") {
			found = true
			break
		}
	}
	if !found {
		t.Error("getEnvPaths() missing current directory .env")
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Plan != models.PlanPro {
		t.Errorf("Plan = %q, want pro", cfg.Plan)
	}
	if cfg.RefreshInterval != defaultRefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", cfg.RefreshInterval, defaultRefreshInterval)
	}
	if cfg.PollInterval != defaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, defaultPollInterval)
	}
	if cfg.HistoryDays != defaultHistoryDays {
		t.Errorf("HistoryDays = %d, want %d", cfg.HistoryDays, defaultHistoryDays)
	}
	if !cfg.Notifications {
		t.Error("Notifications should default to true")
	}
	if cfg.Location == nil {
		t.Error("Location should be set")
	}
	if limit, _ := cfg.PlanTable.Limit(models.PlanPro); limit != plan.DefaultProLimit {
		t.Errorf("PlanTable pro = %d, want default", limit)
	}
	if _, err := os.Stat(filepath.Join(home, ".config", "burnrate-tui")); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("PLAN", "Max20")
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "db", "usage.db"))
	t.Setenv("REFRESH_INTERVAL", "2s")
	t.Setenv("HISTORY_DAYS", "30")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("NOTIFICATIONS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Plan != models.PlanMax20 {
		t.Errorf("Plan = %q, want max20", cfg.Plan)
	}
	if cfg.RefreshInterval != 2*time.Second {
		t.Errorf("RefreshInterval = %v, want 2s", cfg.RefreshInterval)
	}
	if cfg.HistoryDays != 30 {
		t.Errorf("HistoryDays = %d, want 30", cfg.HistoryDays)
	}
	if cfg.Location != time.UTC {
		t.Errorf("Location = %v, want UTC", cfg.Location)
	}
	if cfg.Notifications {
		t.Error("Notifications should be disabled")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"Plan", "PLAN", "enterprise"},
		{"Timezone", "TIMEZONE", "Mars/Olympus"},
		{"HistoryDays", "HISTORY_DAYS", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%s should fail", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	tmpDir := isolate(t)
	envPath := filepath.Join(tmpDir, ".env")
	content := "PLAN=max5\nHISTORY_DAYS=3"
	if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	// godotenv does not override variables that are already set.
	os.Unsetenv("PLAN")
	os.Unsetenv("HISTORY_DAYS")
	t.Cleanup(func() {
		os.Unsetenv("PLAN")
		os.Unsetenv("HISTORY_DAYS")
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Plan != models.PlanMax5 {
		t.Errorf("Plan = %q, want max5", cfg.Plan)
	}
	if cfg.HistoryDays != 3 {
		t.Errorf("HistoryDays = %d, want 3", cfg.HistoryDays)
	}
}
