package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/unifai-network/unifai-toolkits/internal/record"
)

// entry is one headline as shown in the list and preview panes.
type entry struct {
	Feed      string
	Source    string
	Title     string
	Link      string
	Summary   string
	Published time.Time
}

func entriesFrom(records []record.Record, search string) []entry {
	q := strings.ToLower(strings.TrimSpace(search))
	out := make([]entry, 0, len(records))
	for _, r := range records {
		e := entry{
			Feed:    r.Text("feed"),
			Source:  r.Text("source"),
			Title:   r.Text("title"),
			Link:    r.Text("link"),
			Summary: r.Text("summary"),
		}
		if ts := int64(r.Number("publishedAt")); ts > 0 {
			e.Published = time.Unix(ts, 0)
		}
		if q != "" && !e.matches(q) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// matches reports whether the lower-cased query appears in the title or summary.
func (e entry) matches(q string) bool {
	return strings.Contains(strings.ToLower(e.Title), q) ||
		strings.Contains(strings.ToLower(e.Summary), q)
}

func relativeTime(t time.Time) string {
	if t.IsZero() {
		return "undated"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

func renderListItem(e entry, selected bool, width int) string {
	if width < 10 {
		width = 30
	}

	var title string
	if selected {
		title = itemSelectedStyle.Render("> " + truncateStr(e.Title, width-4))
	} else {
		title = itemTitleStyle.Render("  " + truncateStr(e.Title, width-4))
	}

	meta := "  " + itemSourceStyle.Render(e.Feed) + " " + itemTimeStyle.Render("· "+relativeTime(e.Published))

	return title + "\n" + meta
}

func truncateStr(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// visibleRange returns the [start, end) window of n items that keeps cursor
// on screen when each item takes itemHeight lines.
func visibleRange(n, cursor, height, itemHeight int) (int, int) {
	visible := height / itemHeight
	if visible < 1 {
		visible = 1
	}
	start := 0
	if cursor >= visible {
		start = cursor - visible + 1
	}
	end := start + visible
	if end > n {
		end = n
		start = max(0, end-visible)
	}
	return start, end
}

func renderList(entries []entry, cursor int, height int, width int) string {
	if len(entries) == 0 {
		return lipglossCenter("No headlines", width, height)
	}

	// 2 lines per item plus a blank separator
	start, end := visibleRange(len(entries), cursor, height, 3)

	var b strings.Builder
	for i := start; i < end; i++ {
		b.WriteString(renderListItem(entries[i], i == cursor, width))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

func lipglossCenter(s string, width, height int) string {
	return strings.Repeat("\n", height/3) + strings.Repeat(" ", max(0, (width-len(s))/2)) + s
}
