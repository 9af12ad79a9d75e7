package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"patreonscraper/pkg/auth"
	"patreonscraper/pkg/config"
	"patreonscraper/pkg/logger"
	"patreonscraper/pkg/patreon"
	"patreonscraper/pkg/ui"
)

var verifyLogin bool

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored Patreon credentials",
	Long: `Manage stored Patreon credentials.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read only)

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Store a Patreon email and password",
	Long: `Store a Patreon email and password in the system keychain or encrypted file.

You will be prompted for the email (if not given) and the password. The password
is never echoed. Use --verify to check the login against Patreon before storing it.`,
	Example: `  # Interactive login
  patreon-scraper auth login

  # Login with email and check it works
  patreon-scraper auth login me@example.com --verify`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [email]",
	Short: "Remove stored credentials",
	Long: `Remove stored Patreon credentials.

If no email is provided, you will be shown a list of stored accounts to choose from.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored accounts",
	Long:  `List all stored Patreon accounts with masked passwords.`,
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)

	loginCmd.Flags().BoolVar(&verifyLogin, "verify", false, "log into Patreon with the credentials before storing them")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	var email string
	if len(args) > 0 {
		email = strings.TrimSpace(args[0])
	} else {
		fmt.Fprint(ui.Out, "Patreon email: ")
		email, err = readLine(reader)
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}
	if email == "" {
		ui.PrintError("Email is required")
		return auth.ErrInvalidCredentials
	}

	if existing, _ := manager.Retrieve(email); existing != nil {
		fmt.Fprintf(ui.Out, "Account '%s' already exists. Update credentials? (y/N): ", email)
		answer, _ := readLine(reader)
		if !strings.HasPrefix(strings.ToLower(answer), "y") {
			return nil
		}
	}

	fmt.Fprint(ui.Out, "Patreon password: ")
	password, err := readPassword(reader)
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		ui.PrintError("Password is required")
		return auth.ErrInvalidCredentials
	}

	if verifyLogin {
		if err := verifyCredentials(cmd, email, password); err != nil {
			ui.PrintError("Patreon rejected the login", err.Error())
			return err
		}
		ui.PrintSuccess("Login verified")
	}

	account := &auth.Account{
		Email:        email,
		Password:     password,
		LastModified: time.Now(),
	}
	if err := manager.Store(account); err != nil {
		ui.PrintError("Failed to store credentials", err.Error())
		return err
	}

	ui.PrintSuccess("Account saved: " + email)
	fmt.Fprintln(ui.Out, "\nStart downloading with:")
	fmt.Fprintf(ui.Out, "  $ patreon-scraper scrape --account %s\n", email)
	return nil
}

// verifyCredentials performs one login against the configured Patreon endpoint
func verifyCredentials(cmd *cobra.Command, email, password string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	client, err := patreon.NewClientFromConfig(cfg, logger.NewNopLogger())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Download.Timeout)
	defer cancel()
	return client.Login(ctx, email, password)
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		accounts, _ := manager.List()
		if len(accounts) == 0 {
			ui.PrintWarning("No stored accounts found")
			return nil
		}

		fmt.Fprintln(ui.Out, "Select account to remove:")
		for i, account := range accounts {
			fmt.Fprintf(ui.Out, "  %d. %s\n", i+1, account.Email)
		}
		fmt.Fprint(ui.Out, "  0. Cancel\n\nChoice: ")

		input, _ := readLine(bufio.NewReader(os.Stdin))
		var choice int
		fmt.Sscanf(input, "%d", &choice)

		switch {
		case choice == 0:
			return nil
		case choice < 0 || choice > len(accounts):
			ui.PrintError("Invalid choice")
			return fmt.Errorf("invalid choice %q", input)
		}
		email = accounts[choice-1].Email
	}

	if err := manager.Delete(email); err != nil {
		ui.PrintError("Failed to remove account", err.Error())
		return err
	}
	ui.PrintSuccess("Account removed: " + email)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		return err
	}

	accounts, err := manager.List()
	if err != nil {
		ui.PrintError("Failed to list accounts", err.Error())
		return err
	}

	if len(accounts) == 0 {
		ui.PrintInfo("No stored accounts", "Use 'patreon-scraper auth login' to add an account")
		return nil
	}

	printAccounts(ui.Out, accounts)
	return nil
}

func printAccounts(w io.Writer, accounts []*auth.Account) {
	ui.PrintHighlight("Stored Accounts")
	fmt.Fprintln(w)

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Fprintf(w, "%d. Email: %s\n", i+1, sanitized.Email)
		fmt.Fprintf(w, "   Password: %s\n", sanitized.Password)
		if !sanitized.LastModified.IsZero() {
			fmt.Fprintf(w, "   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		}
		fmt.Fprintln(w)
	}
}

func readLine(reader *bufio.Reader) (string, error) {
	input, err := reader.ReadString('\n')
	if err != nil && !(err == io.EOF && input != "") {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// readPassword reads a password from stdin without echoing when stdin is a terminal
func readPassword(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(ui.Out)
		if err == nil {
			return strings.TrimSpace(string(password)), nil
		}
	}
	return readLine(reader)
}
