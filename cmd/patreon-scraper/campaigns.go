package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"patreonscraper/pkg/auth"
	"patreonscraper/pkg/logger"
	"patreonscraper/pkg/scraper"
	"patreonscraper/pkg/ui"
)

// campaignsCmd represents the campaigns command
var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "List the campaigns you are subscribed to",
	Long: `Log into Patreon and list the campaigns of the creators you support, without
downloading anything. The ids and names printed here can be passed to
'patreon-scraper scrape --campaign'.`,
	Args: cobra.NoArgs,
	RunE: runCampaigns,
}

func init() {
	rootCmd.AddCommand(campaignsCmd)
	campaignsCmd.Flags().StringVarP(&accountEmail, "account", "a", "", "use a specific stored account")
}

func runCampaigns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		return err
	}

	email, password, err := resolveCredentials(cfg, accountEmail)
	if err != nil {
		ui.PrintError("No Patreon credentials", err.Error())
		fmt.Fprintln(ui.Out)
		auth.ShowCredentialHelp(ui.Out)
		return err
	}

	s, err := scraper.New(cfg, logger.GetLogger())
	if err != nil {
		ui.PrintError("Failed to initialize scraper", err.Error())
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	campaigns, err := s.Campaigns(ctx, email, password)
	if err != nil {
		ui.PrintError("Failed to list campaigns", err.Error())
		return err
	}

	if len(campaigns) == 0 {
		ui.PrintWarning("No subscribed campaigns found")
		return nil
	}

	ui.PrintHighlight(fmt.Sprintf("Subscribed campaigns (%d)", len(campaigns)))
	fmt.Fprintln(ui.Out)
	for _, campaign := range campaigns {
		fmt.Fprintf(ui.Out, "  %-12s %s\n", ui.Dim(campaign.ID), ui.Yellow(campaign.CreatorName))
	}
	return nil
}
