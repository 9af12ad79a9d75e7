package ui

import (
	"fmt"
	"io"
	"os"
)

// ASCIILogo is printed at the start of a scrape
const ASCIILogo = `
 ____   _  _____ ____  _____ ___  _   _
|  _ \ / \|_   _|  _ \| ____/ _ \| \ | |
| |_) / _ \ | | | |_) |  _|| | | |  \| |
|  __/ ___ \| | |  _ <| |__| |_| | |\  |
|_| /_/   \_\_| |_| \_\_____\___/|_| \_|
            post archiver
`

// Out receives everything this package prints
var Out io.Writer = os.Stdout

// PrintLogo prints the ASCII logo
func PrintLogo() {
	fmt.Fprintln(Out, render(logoStyle, ASCIILogo))
}

// PrintError prints an error message, followed by the first argument if given
func PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, args[0])
	}
	fmt.Fprintln(Out, Red(msg))
}

// PrintSuccess prints a success message
func PrintSuccess(msg string) {
	fmt.Fprintln(Out, Green(msg))
}

// PrintInfo prints a label/value pair
func PrintInfo(label string, value string) {
	fmt.Fprintf(Out, "%s: %s\n", Cyan(label), Yellow(value))
}

// PrintWarning prints a warning message, followed by the first argument if given
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		msg = fmt.Sprintf("%s: %v", msg, args[0])
	}
	fmt.Fprintln(Out, render(warningStyle, msg))
}

// PrintHighlight prints a highlighted message
func PrintHighlight(msg string) {
	fmt.Fprintln(Out, Magenta(msg))
}

// PrintBox prints lines inside a rounded border
func PrintBox(lines ...string) {
	body := ""
	for i, line := range lines {
		if i > 0 {
			body += "\n"
		}
		body += line
	}
	fmt.Fprintln(Out, render(summaryStyle, body))
}
