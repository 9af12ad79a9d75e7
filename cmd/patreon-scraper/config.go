package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"patreonscraper/pkg/config"
	"patreonscraper/pkg/ui"
)

const defaultConfigFile = ".patreon-scraper.yaml"

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage Patreon Scraper configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - .env file
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.patreon-scraper.yaml'
unless a different path is specified with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var writeConfigPath string

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.

The password is masked. With --write the effective configuration, password
included, is also saved as a YAML file readable only by you.`,
	Example: `  # Freeze the current environment into a config file
  PATREON_SCRAPER_OUTPUT_DIR=/data/patreon patreon-scraper config show --write ~/.config/patreon-scraper/config.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the effective configuration and report every problem found.

This command checks:
  - YAML syntax
  - Required fields
  - Value formats and ranges
  - Output and log directory accessibility`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)

	showCmd.Flags().StringVarP(&writeConfigPath, "write", "w", "", "also save the effective configuration to this file")
}

const exampleConfig = `# Patreon Scraper Configuration File
#
# Environment variables override this file:
#   PATREON_EMAIL, PATREON_PASSWORD (or EMAIL, PASSWORD), PATREON_BASE_URL,
#   PATREON_SCRAPER_OUTPUT_DIR, PATREON_SCRAPER_LOG_LEVEL, PATREON_SCRAPER_MAX_PAGES,
#   PATREON_SCRAPER_TIMEOUT, PATREON_SCRAPER_NOTIFICATIONS_ENABLED

# Patreon account
patreon:
  # Prefer 'patreon-scraper auth login' over storing the password here
  email: ""
  password: ""

  base_url: "https://www.patreon.com"

  # Leave empty to use the default browser user agent
  user_agent: ""

# Output layout
output:
  base_directory: "downloads"

  # Put every creator's posts in their own folder
  create_creator_folders: true

# Download configuration
download:
  # Timeout for API calls and for a download's response headers.
  # File bodies stream without a deadline.
  timeout: 60s

  # Maximum post pages per campaign, 0 for unlimited
  max_pages: 1000

  skip_attachments: false
  skip_images: false

# Storage configuration
storage:
  # Write post.json or post.yaml next to every saved post
  save_metadata: false
  metadata_format: "json"

  dir_permissions: "0755"
  file_permissions: "0644"

# UI configuration
ui:
  color_enabled: true
  notifications_enabled: false

# Logging configuration
logging:
  # debug, info, warn, error, disabled
  level: "info"

  # text or json
  format: "text"

  # Log file path, empty to log to stdout only
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = defaultConfigFile
	}

	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Fprintln(ui.Out, "\nTo overwrite, first remove the existing file:")
		fmt.Fprintf(ui.Out, "  rm %s\n", configPath)
		return os.ErrExist
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			ui.PrintError("Failed to create configuration directory", err.Error())
			return err
		}
	}

	// 0600 since the file is meant to hold the account password
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0600); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		return err
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Fprintln(ui.Out, "\nNext steps:")
	fmt.Fprintln(ui.Out, "1. Store your login with 'patreon-scraper auth login'")
	fmt.Fprintln(ui.Out, "2. Run 'patreon-scraper config validate' to check the configuration")
	fmt.Fprintln(ui.Out, "3. Start downloading with 'patreon-scraper scrape'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	data, err := yaml.Marshal(maskedConfig(cfg))
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		return err
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, string(data))

	if writeConfigPath != "" {
		if err := cfg.Save(writeConfigPath); err != nil {
			ui.PrintError("Failed to save configuration", err.Error())
			return err
		}
		ui.PrintSuccess("Configuration saved: " + writeConfigPath)
	}
	return nil
}

// maskedConfig returns a copy of cfg that is safe to print
func maskedConfig(cfg *config.Config) *config.Config {
	display := *cfg
	if display.Patreon.Password != "" {
		display.Patreon.Password = "********"
	}
	return &display
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration has errors:")
		for _, problem := range configProblems(err) {
			fmt.Fprintf(ui.Out, "  - %s\n", problem)
		}
		return err
	}

	var warnings []string
	if !cfg.HasCredentials() {
		warnings = append(warnings, "Patreon email/password not configured (stored credentials will be used)")
	}

	var problems []string
	if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("Cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, problem := range problems {
			fmt.Fprintf(ui.Out, "  - %s\n", problem)
		}
		return errors.New(strings.Join(problems, "; "))
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:")
		for _, warning := range warnings {
			fmt.Fprintf(ui.Out, "  - %s\n", warning)
		}
		fmt.Fprintln(ui.Out)
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Fprintln(ui.Out, "\nConfiguration summary:")
	fmt.Fprintf(ui.Out, "  Output directory: %s\n", cfg.Output.BaseDirectory)
	fmt.Fprintf(ui.Out, "  Timeout: %s\n", cfg.Download.Timeout)
	fmt.Fprintf(ui.Out, "  Max pages: %d\n", cfg.Download.MaxPages)
	fmt.Fprintf(ui.Out, "  Metadata: %t (%s)\n", cfg.Storage.SaveMetadata, cfg.Storage.MetadataFormat)
	fmt.Fprintf(ui.Out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}

// configProblems splits a joined validation error into one line per problem
func configProblems(err error) []string {
	var lines []string
	for _, line := range strings.Split(err.Error(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
