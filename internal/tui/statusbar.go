package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type statusInfo struct {
	count      int
	filter     string
	state      string
	fetchedAt  time.Time
	searching  bool
	refreshing bool
}

func renderStatusBar(s statusInfo, width int) string {
	stateStyle := lipgloss.NewStyle().Foreground(colorGreen)
	if s.state == "stale" {
		stateStyle = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	}

	left := fmt.Sprintf(" %d headlines", s.count)
	if s.filter != "All" {
		left += " · " + s.filter
	}
	if s.state != "" {
		left += " · " + stateStyle.Render(s.state)
		if !s.fetchedAt.IsZero() {
			left += " " + relativeTime(s.fetchedAt)
		}
	}
	if s.refreshing {
		left += " (refreshing...)"
	}

	right := " r refresh  / search  f filter  ? help  q quit "
	if s.searching {
		right = " esc cancel  enter search "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(width).Render(left + fmt.Sprintf("%*s", gap, "") + right)
}
