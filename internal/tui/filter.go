package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// filterBar holds the feed tabs. No active feed means all feeds.
type filterBar struct {
	feeds        []string
	active       map[string]bool
	filterMode   bool
	filterCursor int
}

func newFilterBar(feeds []string) filterBar {
	return filterBar{
		feeds:  feeds,
		active: make(map[string]bool),
	}
}

func (f *filterBar) toggle(feed string) {
	if f.active[feed] {
		delete(f.active, feed)
		return
	}
	f.active[feed] = true
	// Selecting every feed is the same as selecting none.
	if len(f.active) == len(f.feeds) {
		f.clear()
	}
}

func (f *filterBar) toggleCurrent() {
	if f.filterCursor < len(f.feeds) {
		f.toggle(f.feeds[f.filterCursor])
	}
}

func (f *filterBar) clear() {
	f.active = make(map[string]bool)
}

// activeFeeds returns the selected feeds in tab order, or nil for all.
func (f *filterBar) activeFeeds() []string {
	if len(f.active) == 0 {
		return nil
	}
	var out []string
	for _, name := range f.feeds {
		if f.active[name] {
			out = append(out, name)
		}
	}
	return out
}

func (f *filterBar) activeLabel() string {
	active := f.activeFeeds()
	if active == nil {
		return "All"
	}
	return strings.Join(active, ", ")
}

// tabLabel numbers the first nine tabs to match their toggle keys.
func (f *filterBar) tabLabel(i int) string {
	label := f.feeds[i]
	if i < 9 {
		label = fmt.Sprintf("%d %s", i+1, label)
	}
	if f.filterMode && i == f.filterCursor {
		label = "[" + label + "]"
	}
	return label
}

func (f *filterBar) render(width int) string {
	allStyle := tabInactiveStyle
	if len(f.active) == 0 {
		allStyle = tabActiveStyle
	}
	parts := []string{allStyle.Render("All")}
	for i, name := range f.feeds {
		style := tabInactiveStyle
		if f.active[name] {
			style = tabActiveStyle
		}
		parts = append(parts, style.Render(f.tabLabel(i)))
	}

	sep := tabSeparatorStyle.Render(" · ")
	row := parts[0]
	for _, part := range parts[1:] {
		candidate := row + sep + part
		if lipgloss.Width(candidate) > width {
			break
		}
		row = candidate
	}

	return lipgloss.NewStyle().
		Background(colorTabBg).
		Width(width).
		PaddingLeft(1).
		Render(row)
}
