package tui

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the IOTDECK logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "I O T D E C K" as a flowing wave of cyan light,
// deep sea blue (#123a46) -> bright cyan (#3ecce4).
func renderShimmerLogo(frame int) string {
	const text = "IOTDECK"
	n := len(text)

	var out string
	t := float64(frame)

	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		// One smooth wave advancing through the text
		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)

		tide := math.Sin(t*0.035) * 0.12
		b = b*0.75 + tide + 0.18

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		// Continuous RGB interpolation: deep sea blue -> bright cyan
		r := clampByte(18 + b*(62-18))
		g := clampByte(58 + b*(204-58))
		bl := clampByte(70 + b*(228-70))

		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(color))
		out += s.Render(string(text[i]))

		if i < n-1 {
			out += "  "
		}
	}

	return out
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles, neutral palette
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Accent / action styles
	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3ecce4"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#34d474"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0944a"))

	// Device status
	onlineDotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	offlineDotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	// Channel type colors
	typeColors = map[string]lipgloss.Color{
		"sensor": lipgloss.Color("#60a0e0"),
		"switch": lipgloss.Color("#d4a844"),
		"dimmer": lipgloss.Color("#b080d0"),
		"meter":  lipgloss.Color("#3ecce4"),
		"text":   lipgloss.Color("#8890a0"),
	}

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3ecce4")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))
)

// TypeStyle returns a style for a channel type badge.
func TypeStyle(deviceType string) lipgloss.Style {
	if c, ok := typeColors[deviceType]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return metaStyle
}

// helpEntry renders one "key action" pair for the help bar.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}
