package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"patreonscraper/pkg/config"
	"patreonscraper/pkg/logger"
	"patreonscraper/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	noColor       bool
	notifications bool
	quiet         bool
	verbose       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "patreon-scraper",
	Short: "Download the posts of every Patreon creator you support",
	Long: `Patreon Scraper logs into your Patreon account, lists the campaigns you are
subscribed to and saves every post you can view to disk.

Each post gets its own folder containing the post body as HTML, its attachments
and its cover image:

  downloads/<creator>/<post id> - <tags> - <title> - <date>/

Running without a subcommand is the same as running 'patreon-scraper scrape'.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetColorEnabled(!noColor)

		if quiet || verbose {
			return
		}
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
	RunE: runScrape,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.patreon-scraper.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", false, "send a desktop notification when a run finishes")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress the logo and progress lines")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug logs and skipped posts")

	// The bare command scrapes, so it accepts the scrape flags too
	addScrapeFlags(rootCmd)

	rootCmd.SetVersionTemplate(`Patreon Scraper {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads the configuration with the flags the user actually set and
// initializes the global logger from it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		return nil, err
	}

	if noColor {
		cfg.UI.ColorEnabled = false
	}
	ui.SetColorEnabled(cfg.UI.ColorEnabled)

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// commandLineFlags collects the changed flags in the shape config.MergeCommandLineFlags expects
func commandLineFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	if fs.Changed("notifications") {
		flags["notifications"] = notifications
	}
	switch {
	case logLevel != "":
		flags["log-level"] = logLevel
	case verbose:
		flags["log-level"] = "debug"
	case quiet:
		flags["log-level"] = "error"
	}

	if fs.Lookup("output") == nil {
		return flags
	}
	if outputDir != "" {
		flags["output"] = outputDir
	}
	if fs.Changed("max-pages") {
		flags["max-pages"] = maxPages
	}
	if fs.Changed("timeout") {
		flags["timeout"] = downloadTimeout
	}
	if fs.Changed("skip-attachments") {
		flags["skip-attachments"] = skipAttachments
	}
	if fs.Changed("skip-images") {
		flags["skip-images"] = skipImages
	}
	if fs.Changed("save-metadata") {
		flags["save-metadata"] = saveMetadata
	}
	return flags
}
