package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const notificationAppName = "Patreon Scraper"

// NotificationSender delivers a desktop notification
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	return exec.Command("notify-send", "--app-name", notificationAppName, title, message).Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, appleScriptEscape(message), appleScriptEscape(title))
	return exec.Command("osascript", "-e", script).Run()
}

// WindowsNotificationSender sends a balloon tip through PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		Add-Type -AssemblyName System.Windows.Forms
		$n = New-Object System.Windows.Forms.NotifyIcon
		$n.Icon = [System.Drawing.SystemIcons]::Information
		$n.Visible = $true
		$n.ShowBalloonTip(5000, '%s', '%s', 'Info')
	`, powerShellEscape(title), powerShellEscape(message))
	return exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script).Run()
}

// Notifier prints run notifications and, when enabled, mirrors them to the desktop
type Notifier struct {
	sender  NotificationSender
	enabled bool
}

// NewNotifier creates a Notifier for the current platform
func NewNotifier(enabled bool) *Notifier {
	var sender NotificationSender
	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	case "windows":
		sender = &WindowsNotificationSender{}
	}
	return NewNotifierWithSender(sender, enabled)
}

// NewNotifierWithSender creates a Notifier with an explicit sender
func NewNotifierWithSender(sender NotificationSender, enabled bool) *Notifier {
	return &Notifier{sender: sender, enabled: enabled}
}

// SendNotification prints and sends an informational notification
func (n *Notifier) SendNotification(title, message string) {
	fmt.Fprintf(Out, "\n%s: %s\n", Cyan(title), Yellow(message))
	n.send(title, message)
}

// SendError prints and sends an error notification
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(Out, "\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

// SendSuccess prints and sends a success notification
func (n *Notifier) SendSuccess(title, message string) {
	fmt.Fprintf(Out, "\n%s: %s\n", Green(title), Green(message))
	n.send(title, message)
}

func (n *Notifier) send(title, message string) {
	if !n.enabled || n.sender == nil {
		return
	}
	// Desktop delivery is best effort.
	_ = n.sender.Send(title, message)
}

func appleScriptEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func powerShellEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
