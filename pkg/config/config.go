package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultBaseURL is the Patreon web endpoint all API calls are made against
const DefaultBaseURL = "https://www.patreon.com"

// Config holds all configuration options for the Patreon scraper
type Config struct {
	// Patreon account and endpoint
	Patreon PatreonConfig `yaml:"patreon" json:"patreon"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// On-disk layout and sidecar metadata
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Terminal output preferences
	UI UIConfig `yaml:"ui" json:"ui"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// PatreonConfig holds Patreon-specific configuration
type PatreonConfig struct {
	Email     string `yaml:"email" json:"email"`
	Password  string `yaml:"password" json:"password"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory        string `yaml:"base_directory" json:"base_directory"`
	CreateCreatorFolders bool   `yaml:"create_creator_folders" json:"create_creator_folders"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
	MaxPages        int           `yaml:"max_pages" json:"max_pages"`
	SkipAttachments bool          `yaml:"skip_attachments" json:"skip_attachments"`
	SkipImages      bool          `yaml:"skip_images" json:"skip_images"`
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	SaveMetadata    bool   `yaml:"save_metadata" json:"save_metadata"`
	MetadataFormat  string `yaml:"metadata_format" json:"metadata_format"`
	DirPermissions  string `yaml:"dir_permissions" json:"dir_permissions"`
	FilePermissions string `yaml:"file_permissions" json:"file_permissions"`
}

// UIConfig holds terminal output preferences
type UIConfig struct {
	ColorEnabled         bool `yaml:"color_enabled" json:"color_enabled"`
	NotificationsEnabled bool `yaml:"notifications_enabled" json:"notifications_enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Patreon: PatreonConfig{
			BaseURL:   DefaultBaseURL,
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Output: OutputConfig{
			BaseDirectory:        "downloads",
			CreateCreatorFolders: true,
		},
		Download: DownloadConfig{
			Timeout:  60 * time.Second,
			MaxPages: 1000,
		},
		Storage: StorageConfig{
			SaveMetadata:    false,
			MetadataFormat:  "json",
			DirPermissions:  "0755",
			FilePermissions: "0644",
		},
		UI: UIConfig{
			ColorEnabled:         true,
			NotificationsEnabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// Credentials: the bare EMAIL/PASSWORD pair is honored first, the prefixed
	// variables win when both are set.
	if email := os.Getenv("EMAIL"); email != "" {
		c.Patreon.Email = email
	}
	if password := os.Getenv("PASSWORD"); password != "" {
		c.Patreon.Password = password
	}
	if email := os.Getenv("PATREON_EMAIL"); email != "" {
		c.Patreon.Email = email
	}
	if password := os.Getenv("PATREON_PASSWORD"); password != "" {
		c.Patreon.Password = password
	}
	if baseURL := os.Getenv("PATREON_BASE_URL"); baseURL != "" {
		c.Patreon.BaseURL = baseURL
	}
	if userAgent := os.Getenv("PATREON_USER_AGENT"); userAgent != "" {
		c.Patreon.UserAgent = userAgent
	}

	if outputDir := os.Getenv("PATREON_SCRAPER_OUTPUT_DIR"); outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}

	if maxPages := os.Getenv("PATREON_SCRAPER_MAX_PAGES"); maxPages != "" {
		val, err := strconv.Atoi(maxPages)
		if err != nil {
			return fmt.Errorf("invalid PATREON_SCRAPER_MAX_PAGES: %w", err)
		}
		c.Download.MaxPages = val
	}

	if timeout := os.Getenv("PATREON_SCRAPER_TIMEOUT"); timeout != "" {
		val, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid PATREON_SCRAPER_TIMEOUT: %w", err)
		}
		c.Download.Timeout = val
	}

	if notifEnabled := os.Getenv("PATREON_SCRAPER_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.UI.NotificationsEnabled = strings.ToLower(notifEnabled) == "true"
	}

	if logLevel := os.Getenv("PATREON_SCRAPER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".patreon-scraper.yaml",
		".patreon-scraper.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "patreon-scraper", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "patreon-scraper", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".patreon-scraper.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid. Credentials are not required
// here because they may come from the credential manager.
func (c *Config) Validate() error {
	var errs []error

	if c.Patreon.BaseURL == "" {
		errs = append(errs, errors.New("patreon base URL is required"))
	} else if !strings.HasPrefix(c.Patreon.BaseURL, "http://") && !strings.HasPrefix(c.Patreon.BaseURL, "https://") {
		errs = append(errs, errors.New("patreon base URL must start with http:// or https://"))
	}

	if c.Output.BaseDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}

	if c.Download.Timeout < 0 {
		errs = append(errs, errors.New("download timeout cannot be negative"))
	}
	if c.Download.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}

	validFormats := map[string]bool{"json": true, "yaml": true}
	if !validFormats[strings.ToLower(c.Storage.MetadataFormat)] {
		errs = append(errs, errors.New("metadata format must be json or yaml"))
	}
	if _, err := ParsePermissions(c.Storage.DirPermissions); err != nil {
		errs = append(errs, fmt.Errorf("invalid dir permissions: %w", err))
	}
	if _, err := ParsePermissions(c.Storage.FilePermissions); err != nil {
		errs = append(errs, fmt.Errorf("invalid file permissions: %w", err))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validLogFormats := map[string]bool{"text": true, "json": true}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("log format must be text or json"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// HasCredentials reports whether both email and password are configured
func (c *Config) HasCredentials() bool {
	return c.Patreon.Email != "" && c.Patreon.Password != ""
}

// ParsePermissions parses an octal permission string such as "0755"
func ParsePermissions(perm string) (os.FileMode, error) {
	val, err := strconv.ParseUint(perm, 8, 32)
	if err != nil {
		return 0, err
	}
	if val > 0o777 {
		return 0, fmt.Errorf("permission %s out of range", perm)
	}
	return os.FileMode(val), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// 0600 since the file may hold the account password
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if email, ok := flags["email"].(string); ok && email != "" {
		c.Patreon.Email = email
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Patreon.BaseURL = baseURL
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.BaseDirectory = outputDir
	}
	if maxPages, ok := flags["max-pages"].(int); ok && maxPages >= 0 {
		c.Download.MaxPages = maxPages
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Download.Timeout = timeout
	}
	if skip, ok := flags["skip-attachments"].(bool); ok {
		c.Download.SkipAttachments = skip
	}
	if skip, ok := flags["skip-images"].(bool); ok {
		c.Download.SkipImages = skip
	}
	if save, ok := flags["save-metadata"].(bool); ok {
		c.Storage.SaveMetadata = save
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.UI.NotificationsEnabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".patreon-scraper.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
