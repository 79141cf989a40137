package tui

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// formatTime renders a relative timestamp for last-seen and history displays.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// shortMAC compresses a MAC address for narrow columns: first and last octet
// pairs with an ellipsis between.
func shortMAC(mac string) string {
	if len(mac) <= 11 {
		return mac
	}
	return mac[:5] + "…" + mac[len(mac)-5:]
}
