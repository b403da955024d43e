package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type StartupSummary struct {
	HTTPAddr    string
	Source      string
	Format      string
	Watch       bool
	StoryTitle  string
	Steps       []string
	Offset      float64
	Arbitration string
	Journal     string
	Headless    bool
}

var summaryBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#fbbf24")).
	Padding(0, 1)

var (
	summaryHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fbbf24"))
	summaryKey     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ca3af")).Width(14)
)

// Render lays the summary out as a bordered block.
func (s *StartupSummary) Render() string {
	row := func(k, v string) string {
		return lipgloss.JoinHorizontal(lipgloss.Top, summaryKey.Render(k), v)
	}
	rows := []string{
		summaryHeading.Render("STARTUP SUMMARY"),
		"",
		summaryHeading.Render("[HTTP]"),
		row("listen", s.HTTPAddr),
		"",
		summaryHeading.Render("[DATA]"),
		row("source", s.Source),
		row("format", s.Format),
		row("watch", onOff(s.Watch)),
		"",
		summaryHeading.Render("[STORY]"),
		row("title", orDefault(s.StoryTitle, "-")),
		row("offset", fmt.Sprintf("%.2f", s.Offset)),
		row("arbitration", s.Arbitration),
		row("steps", formatList(s.Steps)),
		"",
		summaryHeading.Render("[OUTPUT]"),
		row("journal", s.Journal),
		row("headless", onOff(s.Headless)),
	}
	return summaryBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (s *StartupSummary) Print() {
	fmt.Println(s.Render())
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func formatList(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
