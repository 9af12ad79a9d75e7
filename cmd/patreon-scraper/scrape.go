package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"patreonscraper/pkg/auth"
	"patreonscraper/pkg/config"
	"patreonscraper/pkg/logger"
	"patreonscraper/pkg/scraper"
	"patreonscraper/pkg/ui"
)

var (
	// Scrape command flags
	outputDir       string
	accountEmail    string
	campaignFilters []string
	maxPages        int
	downloadTimeout time.Duration
	skipAttachments bool
	skipImages      bool
	saveMetadata    bool
)

var errNoCredentials = errors.New("no Patreon credentials configured")

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Download every viewable post of your subscribed campaigns",
	Long: `Log into Patreon and download every post you can view from the campaigns you
are subscribed to.

Credentials are taken from, in order:
  - The stored account selected with --account
  - PATREON_EMAIL / PATREON_PASSWORD (or EMAIL / PASSWORD), a .env file or the config file
  - The first account stored with 'patreon-scraper auth login'

Failures while downloading a single file, post or campaign are reported and
skipped; the run always finishes with a summary.`,
	Example: `  # Download everything using the default settings
  patreon-scraper scrape

  # Download only two creators into a specific directory
  patreon-scraper scrape --campaign "Jane Doe" --campaign 123456 --output ./patreon

  # Use a specific stored account and skip attachments
  patreon-scraper scrape --account me@example.com --skip-attachments

  # Write a post.json next to every saved post
  patreon-scraper scrape --save-metadata`,
	Args: cobra.NoArgs,
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	addScrapeFlags(scrapeCmd)
}

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory for downloads (default: downloads)")
	cmd.Flags().StringVarP(&accountEmail, "account", "a", "", "use a specific stored account")
	cmd.Flags().StringArrayVar(&campaignFilters, "campaign", nil, "only scrape this campaign id or creator name (repeatable)")
	cmd.Flags().IntVar(&maxPages, "max-pages", 1000, "maximum post pages fetched per campaign (0 for unlimited)")
	cmd.Flags().DurationVar(&downloadTimeout, "timeout", 60*time.Second, "API request timeout (downloads stream without a deadline)")
	cmd.Flags().BoolVar(&skipAttachments, "skip-attachments", false, "do not download post attachments")
	cmd.Flags().BoolVar(&skipImages, "skip-images", false, "do not download post cover images")
	cmd.Flags().BoolVar(&saveMetadata, "save-metadata", false, "write a metadata file next to every saved post")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}
	logger.GetLogger().WithField("version", version).Info("Patreon Scraper starting")

	email, password, err := resolveCredentials(cfg, accountEmail)
	if err != nil {
		ui.PrintError("No Patreon credentials", err.Error())
		fmt.Fprintln(ui.Out)
		auth.ShowCredentialHelp(ui.Out)
		return err
	}
	ui.PrintInfo("Account", email)
	ui.PrintInfo("Output", cfg.Output.BaseDirectory)

	s, err := scraper.New(cfg, logger.GetLogger())
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		return err
	}
	s.SetCampaignFilter(campaignFilters)
	if !quiet {
		s.SetProgress(ui.NewStatusTracker(verbose))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ui.PrintHighlight("[LOGGING IN]")
	summary := s.Run(ctx, email, password)

	printSummary(summary)
	notify(cfg, summary)

	// Run failures are reported, not turned into an exit code
	return nil
}

// resolveCredentials picks the login for a run: an explicitly requested stored
// account, then configured credentials, then the default stored account.
func resolveCredentials(cfg *config.Config, account string) (string, string, error) {
	if account == "" && cfg.HasCredentials() {
		return cfg.Patreon.Email, cfg.Patreon.Password, nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		return "", "", fmt.Errorf("failed to initialize credential manager: %w", err)
	}
	return credentialsFrom(manager, cfg, account)
}

func credentialsFrom(manager *auth.Manager, cfg *config.Config, account string) (string, string, error) {
	if account != "" {
		stored, err := manager.Retrieve(account)
		if err != nil {
			return "", "", fmt.Errorf("%w (run 'patreon-scraper auth list' to see stored accounts)", err)
		}
		return stored.Email, stored.Password, nil
	}

	if cfg.HasCredentials() {
		return cfg.Patreon.Email, cfg.Patreon.Password, nil
	}

	stored, err := manager.RetrieveDefault()
	if err != nil {
		return "", "", errNoCredentials
	}
	return stored.Email, stored.Password, nil
}

func printSummary(summary *scraper.Summary) {
	fmt.Fprintln(ui.Out)
	if summary.Err != nil {
		if errors.Is(summary.Err, context.Canceled) {
			ui.PrintWarning("Run interrupted")
		} else {
			ui.PrintError("RUN ABORTED", summary.Err.Error())
		}
	}

	ui.PrintBox(
		ui.Cyan("Campaigns:        ")+fmt.Sprintf("%d (%d failed)", summary.Campaigns, summary.CampaignsFailed),
		ui.Cyan("Posts saved:      ")+fmt.Sprintf("%d", summary.PostsSaved),
		ui.Cyan("Posts skipped:    ")+fmt.Sprintf("%d", summary.PostsSkipped),
		ui.Cyan("Posts failed:     ")+fmt.Sprintf("%d", summary.PostsFailed),
		ui.Cyan("Files downloaded: ")+fmt.Sprintf("%d", summary.FilesDownloaded),
		ui.Cyan("Files failed:     ")+fmt.Sprintf("%d", summary.FilesFailed),
		ui.Cyan("Written to disk:  ")+fmt.Sprintf("%d files (%s)", summary.FilesWritten, ui.FormatBytes(summary.BytesWritten)),
		ui.Cyan("Duration:         ")+summary.Duration().Round(time.Second).String(),
	)

	if summary.Err == nil && !summary.HasFailures() {
		ui.PrintSuccess("[SCRAPE COMPLETED SUCCESSFULLY]")
	}
}

func notify(cfg *config.Config, summary *scraper.Summary) {
	notifier := ui.NewNotifier(cfg.UI.NotificationsEnabled)
	switch {
	case summary.Err != nil:
		notifier.SendError("Patreon scrape aborted", summary.Err.Error())
	case summary.HasFailures():
		notifier.SendNotification("Patreon scrape finished with errors", summary.String())
	default:
		notifier.SendSuccess("Patreon scrape complete", fmt.Sprintf("%d posts saved", summary.PostsSaved))
	}
}
