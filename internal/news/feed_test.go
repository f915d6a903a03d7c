package news

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/unifai-network/unifai-toolkits/internal/config"
	"github.com/unifai-network/unifai-toolkits/internal/record"
)

func TestArticleID(t *testing.T) {
	id1 := articleID("https://example.com/post-1")
	id2 := articleID("https://example.com/post-2")
	id1again := articleID("https://example.com/post-1")

	if id1 == id2 {
		t.Error("different URLs should produce different IDs")
	}
	if id1 != id1again {
		t.Error("same URL should produce same ID")
	}
	if len(id1) != 32 {
		t.Errorf("expected 32-char hex string, got %d chars: %s", len(id1), id1)
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Hello</p>", "Hello"},
		{"<b>Bold</b> and <i>italic</i>", "Bold and italic"},
		{"No tags here", "No tags here"},
		{"<div>two  spaces</div>", "two  spaces"},
		{"Price fell < 5% today", "Price fell < 5% today"},
		{"ETH flips > BTC volume", "ETH flips > BTC volume"},
		{"a <b>bold</b> claim: 3 < 4", "a bold claim: 3 < 4"},
		{"", ""},
		{"<a href=\"url\">Link</a> text", "Link text"},
	}
	for _, tt := range tests {
		got := stripHTML(tt.input)
		if got != tt.want {
			t.Errorf("stripHTML(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCleanSummary(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"<p>Bitcoin &amp; Ether rally</p>", "Bitcoin & Ether rally"},
		{"<p>SEC&#8217;s new\n\n  rule</p>", "SEC’s new rule"},
		{"&lt;b&gt;escaped&lt;/b&gt;", "<b>escaped</b>"},
		{"<p>Price fell</p> < 5% today", "Price fell < 5% today"},
		{"ETH flips > BTC volume", "ETH flips > BTC volume"},
		{"<div>  Multiple \n  spaces  </div>", "Multiple spaces"},
		{"   ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		got := cleanSummary(tt.input)
		if got != tt.want {
			t.Errorf("cleanSummary(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestEntries(t *testing.T) {
	pub := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	upd := time.Date(2025, 3, 2, 9, 30, 0, 0, time.UTC)
	parsed := &gofeed.Feed{
		Items: []*gofeed.Item{
			{Title: "A", Link: "https://a.example/1", Published: "Sat, 01 Mar 2025 09:30:00 +0000", PublishedParsed: &pub, Description: "<p>one</p>"},
			{Title: "B", Link: "https://a.example/2", UpdatedParsed: &upd, Content: "<div>two</div>"},
			{Title: "C", Link: "https://a.example/3"},
		},
	}

	got := entries("Decrypt", parsed)
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	if got[0].Text("source") != unknownSource {
		t.Errorf("expected %q for untitled feed, got %q", unknownSource, got[0].Text("source"))
	}
	if got[0].Text("feed") != "Decrypt" {
		t.Errorf("expected feed name Decrypt, got %q", got[0].Text("feed"))
	}
	if got[0].Number("publishedAt") != float64(pub.Unix()) {
		t.Errorf("unexpected publishedAt %v", got[0]["publishedAt"])
	}
	if got[0].Text("summary") != "one" {
		t.Errorf("expected summary 'one', got %q", got[0].Text("summary"))
	}
	if got[1].Number("publishedAt") != float64(upd.Unix()) {
		t.Errorf("expected updated time as fallback, got %v", got[1]["publishedAt"])
	}
	if got[1].Text("summary") != "two" {
		t.Errorf("expected content fallback 'two', got %q", got[1].Text("summary"))
	}
	if got[2].Number("publishedAt") != 0 || got[2].Text("published") != "" {
		t.Errorf("expected neutral published fields, got %v", got[2])
	}
}

func TestEntriesCapsPerFeed(t *testing.T) {
	parsed := &gofeed.Feed{Title: "Big"}
	for i := 0; i < MaxPerFeed+5; i++ {
		parsed.Items = append(parsed.Items, &gofeed.Item{Title: "x", Link: "https://big.example/" + string(rune('a'+i))})
	}
	if got := entries("Big", parsed); len(got) != MaxPerFeed {
		t.Errorf("expected %d entries, got %d", MaxPerFeed, len(got))
	}
}

const rssBody = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Crypto News</title>
  <link>https://news.example</link>
  <item>
    <title>Ether hits new high</title>
    <link>https://news.example/ether</link>
    <pubDate>Mon, 03 Mar 2025 10:00:00 +0000</pubDate>
    <description>&lt;p&gt;Ether &amp;amp; friends&lt;/p&gt;</description>
  </item>
</channel>
</rss>`

func TestRSSFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	got, err := NewRSSFetcher(5 * time.Second).Fetch(context.Background(), config.Feed{Name: "Test", URL: srv.URL})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	if got[0].Text("source") != "Test Crypto News" {
		t.Errorf("unexpected source %q", got[0].Text("source"))
	}
	if got[0].Text("summary") != "Ether & friends" {
		t.Errorf("unexpected summary %q", got[0].Text("summary"))
	}
	if got[0].Text("published") == "" {
		t.Error("expected raw published string")
	}
}

func TestUpstreamFetchesRSSConcurrently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssBody))
	}))
	defer srv.Close()

	names := []string{"CoinDesk", "Cointelegraph", "Decrypt", "The Block", "CryptoSlate"}
	feeds := make([]config.Feed, len(names))
	for i, n := range names {
		feeds[i] = config.Feed{Name: n, URL: srv.URL + "/" + strconv.Itoa(i), Enabled: true}
	}

	up := NewUpstream(feeds, NewRSSFetcher(5*time.Second), nil)
	for range 3 {
		got, err := up.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if len(got) != len(names) {
			t.Fatalf("expected one entry per feed, got %d", len(got))
		}
		for i, r := range got {
			if r.Text("feed") != names[i] {
				t.Errorf("entry %d: feed %q, want %q", i, r.Text("feed"), names[i])
			}
		}
	}
}

type stubFetcher map[string]stubResult

type stubResult struct {
	items []record.Record
	err   error
}

func (s stubFetcher) Fetch(ctx context.Context, feed config.Feed) ([]record.Record, error) {
	r := s[feed.Name]
	return r.items, r.err
}

func item(feed, title string, publishedAt int64) record.Record {
	return record.Record{"feed": feed, "title": title, "publishedAt": publishedAt}
}

func TestUpstreamKeepsFeedOrderAndSkipsFailures(t *testing.T) {
	feeds := []config.Feed{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	fetcher := stubFetcher{
		"A": {items: []record.Record{item("A", "a1", 1), item("A", "a2", 2)}},
		"B": {err: errors.New("timeout")},
		"C": {items: []record.Record{item("C", "c1", 3)}},
	}

	got, err := NewUpstream(feeds, fetcher, nil).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	var titles []string
	for _, r := range got {
		titles = append(titles, r.Text("title"))
	}
	if strings.Join(titles, ",") != "a1,a2,c1" {
		t.Errorf("unexpected titles %v", titles)
	}
}

func TestUpstreamAllFeedsFail(t *testing.T) {
	feeds := []config.Feed{{Name: "A"}, {Name: "B"}}
	fetcher := stubFetcher{
		"A": {err: errors.New("dns")},
		"B": {err: errors.New("tls")},
	}

	_, err := NewUpstream(feeds, fetcher, nil).Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error when every feed fails")
	}
	if !strings.Contains(err.Error(), "dns") || !strings.Contains(err.Error(), "tls") {
		t.Errorf("expected joined causes, got %v", err)
	}
}

func TestUpstreamNoFeeds(t *testing.T) {
	got, err := NewUpstream(nil, stubFetcher{}, nil).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}
