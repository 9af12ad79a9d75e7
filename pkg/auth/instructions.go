package auth

import (
	"fmt"
	"io"
)

// ShowCredentialHelp prints the ways the scraper can be given a Patreon login
func ShowCredentialHelp(w io.Writer) {
	fmt.Fprintln(w, "No Patreon credentials found. Provide them in one of these ways:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  1. Store them once:        patreon-scraper auth login")
	fmt.Fprintln(w, "  2. Environment variables:  PATREON_EMAIL / PATREON_PASSWORD (or EMAIL / PASSWORD)")
	fmt.Fprintln(w, "  3. A .env file in the working directory with the same variables")
	fmt.Fprintln(w, "  4. The config file:        patreon.email / patreon.password")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stored credentials are kept in the system keychain when available, otherwise in an\n")
	fmt.Fprintf(w, "encrypted file. Set %s to choose the file's passphrase.\n", PassphraseEnv)
}
