package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Patreon.BaseURL != "https://www.patreon.com" {
		t.Errorf("Expected default base URL to be https://www.patreon.com, got %s", config.Patreon.BaseURL)
	}

	if config.Output.BaseDirectory != "downloads" {
		t.Errorf("Expected default output directory to be downloads, got %s", config.Output.BaseDirectory)
	}

	if config.Download.MaxPages != 1000 {
		t.Errorf("Expected default max pages to be 1000, got %d", config.Download.MaxPages)
	}

	if config.Storage.SaveMetadata {
		t.Error("Expected metadata sidecars to be disabled by default")
	}

	if err := config.Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("EMAIL", "bare@example.com")
	t.Setenv("PASSWORD", "bare-password")
	t.Setenv("PATREON_EMAIL", "")
	t.Setenv("PATREON_PASSWORD", "")
	t.Setenv("PATREON_SCRAPER_OUTPUT_DIR", "/tmp/test-downloads")
	t.Setenv("PATREON_SCRAPER_MAX_PAGES", "25")
	t.Setenv("PATREON_SCRAPER_TIMEOUT", "15s")
	t.Setenv("PATREON_SCRAPER_NOTIFICATIONS_ENABLED", "true")
	t.Setenv("PATREON_SCRAPER_LOG_LEVEL", "debug")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Patreon.Email != "bare@example.com" {
		t.Errorf("Expected email to be bare@example.com, got %s", config.Patreon.Email)
	}

	if config.Patreon.Password != "bare-password" {
		t.Errorf("Expected password from PASSWORD, got %s", config.Patreon.Password)
	}

	if config.Output.BaseDirectory != "/tmp/test-downloads" {
		t.Errorf("Expected output directory to be /tmp/test-downloads, got %s", config.Output.BaseDirectory)
	}

	if config.Download.MaxPages != 25 {
		t.Errorf("Expected max pages to be 25, got %d", config.Download.MaxPages)
	}

	if config.Download.Timeout != 15*time.Second {
		t.Errorf("Expected timeout to be 15s, got %v", config.Download.Timeout)
	}

	if !config.UI.NotificationsEnabled {
		t.Error("Expected notifications to be enabled")
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected log level to be debug, got %s", config.Logging.Level)
	}
}

func TestLoadFromEnvPrefixedCredentialsWin(t *testing.T) {
	t.Setenv("EMAIL", "bare@example.com")
	t.Setenv("PATREON_EMAIL", "prefixed@example.com")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err != nil {
		t.Fatalf("Failed to load from environment: %v", err)
	}

	if config.Patreon.Email != "prefixed@example.com" {
		t.Errorf("Expected PATREON_EMAIL to take precedence, got %s", config.Patreon.Email)
	}
}

func TestLoadFromEnvInvalidValues(t *testing.T) {
	t.Setenv("PATREON_SCRAPER_MAX_PAGES", "many")

	config := DefaultConfig()
	if err := config.LoadFromEnv(); err == nil {
		t.Error("Expected error for non-numeric max pages")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantError bool
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantError: false,
		},
		{
			name:      "missing credentials are allowed",
			mutate:    func(c *Config) { c.Patreon.Email = ""; c.Patreon.Password = "" },
			wantError: false,
		},
		{
			name:      "base URL without scheme",
			mutate:    func(c *Config) { c.Patreon.BaseURL = "www.patreon.com" },
			wantError: true,
		},
		{
			name:      "empty output directory",
			mutate:    func(c *Config) { c.Output.BaseDirectory = "" },
			wantError: true,
		},
		{
			name:      "negative max pages",
			mutate:    func(c *Config) { c.Download.MaxPages = -1 },
			wantError: true,
		},
		{
			name:      "unknown metadata format",
			mutate:    func(c *Config) { c.Storage.MetadataFormat = "xml" },
			wantError: true,
		},
		{
			name:      "bad permissions",
			mutate:    func(c *Config) { c.Storage.DirPermissions = "rwx" },
			wantError: true,
		},
		{
			name:      "invalid log level",
			mutate:    func(c *Config) { c.Logging.Level = "invalid" },
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			err := config.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateJoinsErrors(t *testing.T) {
	config := DefaultConfig()
	config.Output.BaseDirectory = ""
	config.Logging.Level = "loud"

	err := config.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "output directory") || !strings.Contains(err.Error(), "log level") {
		t.Errorf("Expected both violations in error, got %v", err)
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	config := DefaultConfig()

	flags := map[string]interface{}{
		"email":         "flag@example.com",
		"output":        "/flag/output",
		"max-pages":     7,
		"timeout":       5 * time.Second,
		"save-metadata": true,
		"log-level":     "error",
	}

	config.MergeCommandLineFlags(flags)

	if config.Patreon.Email != "flag@example.com" {
		t.Errorf("Expected email to be flag@example.com, got %s", config.Patreon.Email)
	}

	if config.Output.BaseDirectory != "/flag/output" {
		t.Errorf("Expected output directory to be /flag/output, got %s", config.Output.BaseDirectory)
	}

	if config.Download.MaxPages != 7 {
		t.Errorf("Expected max pages to be 7, got %d", config.Download.MaxPages)
	}

	if config.Download.Timeout != 5*time.Second {
		t.Errorf("Expected timeout to be 5s, got %v", config.Download.Timeout)
	}

	if !config.Storage.SaveMetadata {
		t.Error("Expected save metadata to be enabled")
	}

	if config.Logging.Level != "error" {
		t.Errorf("Expected log level to be error, got %s", config.Logging.Level)
	}
}

func TestSaveAndLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "test-config.yaml")

	config := DefaultConfig()
	config.Patreon.Email = "save@example.com"
	config.Download.MaxPages = 12
	config.Download.Timeout = 90 * time.Second

	if err := config.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat saved config: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected config file mode 0600, got %v", info.Mode().Perm())
	}

	loadedConfig := DefaultConfig()
	if err := loadedConfig.LoadFromFile(configPath); err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.Patreon.Email != "save@example.com" {
		t.Errorf("Expected loaded email to be save@example.com, got %s", loadedConfig.Patreon.Email)
	}

	if loadedConfig.Download.MaxPages != 12 {
		t.Errorf("Expected loaded max pages to be 12, got %d", loadedConfig.Download.MaxPages)
	}

	if loadedConfig.Download.Timeout != 90*time.Second {
		t.Errorf("Expected loaded timeout to be 90s, got %v", loadedConfig.Download.Timeout)
	}
}

func TestLoadPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("EMAIL", "")
	t.Setenv("PASSWORD", "")
	t.Setenv("PATREON_EMAIL", "")
	t.Setenv("PATREON_PASSWORD", "")
	t.Setenv("PATREON_SCRAPER_LOG_LEVEL", "warn")

	configPath := filepath.Join(tmpDir, "config.yaml")
	content := "output:\n  base_directory: from-file\nlogging:\n  level: debug\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	config, err := Load(configPath, map[string]interface{}{"output": "from-flag"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if config.Output.BaseDirectory != "from-flag" {
		t.Errorf("Expected flag to override file, got %s", config.Output.BaseDirectory)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected env to override file, got %s", config.Logging.Level)
	}
}

func TestParsePermissions(t *testing.T) {
	mode, err := ParsePermissions("0750")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if mode != 0750 {
		t.Errorf("Expected 0750, got %o", mode)
	}

	if _, err := ParsePermissions("1777"); err == nil {
		t.Error("Expected out of range error")
	}
}
