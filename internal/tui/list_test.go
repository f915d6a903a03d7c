package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/unifai-network/unifai-toolkits/internal/record"
)

func TestTruncateStr(t *testing.T) {
	tests := []struct {
		input string
		n     int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"test", 0, ""},
	}
	for _, tt := range tests {
		got := truncateStr(tt.input, tt.n)
		if got != tt.want {
			t.Errorf("truncateStr(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
		}
	}
}

func TestTruncateStrUTF8(t *testing.T) {
	got := truncateStr("日本語テスト", 5)
	want := "日本..."
	if got != want {
		t.Errorf("truncateStr(Japanese, 5) = %q, want %q", got, want)
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Now()

	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-30 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m"},
		{now.Add(-3 * time.Hour), "3h"},
		{now.Add(-2 * 24 * time.Hour), "2d"},
		{time.Time{}, "undated"},
	}
	for _, tt := range tests {
		got := relativeTime(tt.t)
		if got != tt.want {
			t.Errorf("relativeTime(%v ago) = %q, want %q", now.Sub(tt.t), got, tt.want)
		}
	}
}

func TestRelativeTimeOld(t *testing.T) {
	old := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	got := relativeTime(old)
	if got != "Jun 15" {
		t.Errorf("relativeTime(old date) = %q, want %q", got, "Jun 15")
	}
}

func TestEntriesFrom(t *testing.T) {
	records := []record.Record{
		{"feed": "CoinDesk", "title": "Bitcoin ETF inflows", "summary": "Record week", "publishedAt": int64(1700000000)},
		{"feed": "Decrypt", "title": "Solana upgrade", "summary": "Validators adopt new client"},
		{"feed": "Decrypt", "title": "NFT market", "summary": "Volumes slide on bitcoin dip"},
	}

	all := entriesFrom(records, "")
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].Published.Unix() != 1700000000 {
		t.Errorf("expected published from publishedAt, got %v", all[0].Published)
	}
	if !all[1].Published.IsZero() {
		t.Errorf("expected zero published when absent, got %v", all[1].Published)
	}

	got := entriesFrom(records, "  BITCOIN ")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for bitcoin, got %d", len(got))
	}
	if got[0].Title != "Bitcoin ETF inflows" || got[1].Title != "NFT market" {
		t.Errorf("unexpected matches: %q, %q", got[0].Title, got[1].Title)
	}
}

func TestVisibleRange(t *testing.T) {
	tests := []struct {
		n, cursor, height int
		start, end        int
	}{
		{10, 0, 9, 0, 3},
		{10, 5, 9, 3, 6},
		{10, 9, 9, 7, 10},
		{2, 1, 9, 0, 2},
		{5, 0, 1, 0, 1},
	}
	for _, tt := range tests {
		start, end := visibleRange(tt.n, tt.cursor, tt.height, 3)
		if start != tt.start || end != tt.end {
			t.Errorf("visibleRange(%d, %d, %d) = [%d, %d), want [%d, %d)",
				tt.n, tt.cursor, tt.height, start, end, tt.start, tt.end)
		}
	}
}

func TestSourceLabel(t *testing.T) {
	tests := []struct {
		e    entry
		want string
	}{
		{entry{Feed: "Decrypt", Source: "Decrypt"}, "Decrypt"},
		{entry{Feed: "Decrypt", Source: "Unknown Source"}, "Decrypt"},
		{entry{Feed: "The Block", Source: "The Block Crypto"}, "The Block Crypto (The Block)"},
		{entry{Source: "Only Source"}, "Only Source"},
	}
	for _, tt := range tests {
		if got := sourceLabel(tt.e); got != tt.want {
			t.Errorf("sourceLabel(%+v) = %q, want %q", tt.e, got, tt.want)
		}
	}
}

func TestFilterBar(t *testing.T) {
	f := newFilterBar([]string{"CoinDesk", "Decrypt", "The Block"})
	if f.activeFeeds() != nil || f.activeLabel() != "All" {
		t.Fatal("new filter bar should select all feeds")
	}

	f.toggle("The Block")
	f.toggle("CoinDesk")
	got := f.activeFeeds()
	if len(got) != 2 || got[0] != "CoinDesk" || got[1] != "The Block" {
		t.Errorf("expected feeds in tab order, got %v", got)
	}
	if f.activeLabel() != "CoinDesk, The Block" {
		t.Errorf("unexpected label %q", f.activeLabel())
	}

	f.toggle("Decrypt")
	if f.activeFeeds() != nil {
		t.Errorf("selecting every feed should collapse to all, got %v", f.activeFeeds())
	}

	f.filterMode = true
	f.filterCursor = 1
	if got := f.tabLabel(1); got != "[2 Decrypt]" {
		t.Errorf("tabLabel(1) = %q, want %q", got, "[2 Decrypt]")
	}
}

func TestRenderPreview(t *testing.T) {
	e := &entry{Feed: "CoinDesk", Title: "ETH staking hits record", Link: "https://example.com/a"}

	out := renderPreview(e, 40, 12, 0)
	if n := len(strings.Split(out, "\n")); n != 12 {
		t.Errorf("expected 12 lines, got %d", n)
	}
	if !strings.Contains(out, "No summary available") || !strings.Contains(out, "undated") {
		t.Errorf("expected placeholders in preview:\n%s", out)
	}

	// Scrolling past the end keeps the last content line visible.
	out = renderPreview(e, 40, 12, 500)
	if !strings.Contains(out, "example.com/a") {
		t.Errorf("expected link after overscroll:\n%s", out)
	}

	if out := renderPreview(nil, 40, 5, 0); !strings.Contains(out, "Select a headline") {
		t.Errorf("expected empty-state prompt, got %q", out)
	}
}
