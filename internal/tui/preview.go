package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderPreview lays out the selected headline in a fixed-height pane.
// Scrolling stops at the last line of content.
func renderPreview(e *entry, width, height, scroll int) string {
	if e == nil {
		return lipglossCenter("Select a headline", width, height)
	}
	w := max(10, width-2)

	when := "undated"
	if !e.Published.IsZero() {
		when = e.Published.Format("Jan 2, 2006 15:04")
	}
	summary := strings.Join(strings.Fields(e.Summary), " ")
	if summary == "" {
		summary = "(No summary available)"
	}

	lines := strings.Split(lipgloss.JoinVertical(lipgloss.Left,
		previewTitleStyle.Width(w).Render(e.Title),
		previewSourceStyle.Render(sourceLabel(*e)+" · "+when),
		previewBodyStyle.Width(w).Render(summary),
		previewLinkStyle.Width(w).Render("Read more: "+e.Link),
	), "\n")

	scroll = min(max(0, scroll), max(0, len(lines)-1))
	lines = lines[scroll:]
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}

// sourceLabel prefers the channel title reported by the feed and shows the
// configured feed name alongside it when they differ.
func sourceLabel(e entry) string {
	switch {
	case e.Source == "" || e.Source == "Unknown Source":
		return e.Feed
	case strings.EqualFold(e.Source, e.Feed) || e.Feed == "":
		return e.Source
	default:
		return e.Source + " (" + e.Feed + ")"
	}
}
