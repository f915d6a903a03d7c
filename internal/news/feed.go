package news

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/unifai-network/unifai-toolkits/internal/config"
	"github.com/unifai-network/unifai-toolkits/internal/record"
)

// MaxPerFeed is how many entries are kept from each feed.
const MaxPerFeed = 10

const unknownSource = "Unknown Source"

// FeedFetcher loads the entries of a single feed.
type FeedFetcher interface {
	Fetch(ctx context.Context, feed config.Feed) ([]record.Record, error)
}

// RSSFetcher is safe for concurrent use. gofeed parsers are not, so each
// Fetch builds its own on top of the shared client.
type RSSFetcher struct {
	client *http.Client
}

// NewRSSFetcher creates an RSSFetcher whose requests give up after timeout.
// A non-positive timeout uses 20s.
func NewRSSFetcher(timeout time.Duration) *RSSFetcher {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &RSSFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *RSSFetcher) Fetch(ctx context.Context, feed config.Feed) ([]record.Record, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	parser.UserAgent = "unifai-toolkits/1.0"
	parsed, err := parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", feed.Name, err)
	}
	return entries(feed.Name, parsed), nil
}

// entries maps the first MaxPerFeed items of a parsed feed to records.
func entries(feedName string, parsed *gofeed.Feed) []record.Record {
	source := parsed.Title
	if source == "" {
		source = unknownSource
	}

	items := parsed.Items
	if len(items) > MaxPerFeed {
		items = items[:MaxPerFeed]
	}

	out := make([]record.Record, 0, len(items))
	for _, item := range items {
		var publishedAt int64
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed.Unix()
		} else if item.UpdatedParsed != nil {
			publishedAt = item.UpdatedParsed.Unix()
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		out = append(out, record.Record{
			"id":          articleID(item.Link),
			"feed":        feedName,
			"title":       item.Title,
			"link":        item.Link,
			"published":   item.Published,
			"publishedAt": publishedAt,
			"source":      source,
			"summary":     cleanSummary(summary),
		})
	}
	return out
}

func articleID(link string) string {
	h := sha256.Sum256([]byte(link))
	return fmt.Sprintf("%x", h[:16])
}

// cleanSummary strips tags, unescapes entities and collapses whitespace.
func cleanSummary(s string) string {
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(html.UnescapeString(stripHTML(s))), " ")
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

// stripHTML removes complete tags only; a stray < or > is left as text.
func stripHTML(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Upstream fetches every enabled feed concurrently and concatenates the
// results in feed order. It implements collection.Fetcher.
type Upstream struct {
	feeds   []config.Feed
	fetcher FeedFetcher
	logger  *slog.Logger
}

func NewUpstream(feeds []config.Feed, fetcher FeedFetcher, logger *slog.Logger) *Upstream {
	if fetcher == nil {
		fetcher = NewRSSFetcher(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Upstream{feeds: feeds, fetcher: fetcher, logger: logger}
}

// Fetch skips feeds that fail and only errors when all of them do.
func (u *Upstream) Fetch(ctx context.Context) ([]record.Record, error) {
	var (
		mu      sync.Mutex
		perFeed = make([][]record.Record, len(u.feeds))
		errs    []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(5)
	for i, feed := range u.feeds {
		g.Go(func() error {
			items, err := u.fetcher.Fetch(gctx, feed)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				u.logger.Warn("feed fetch failed", "feed", feed.Name, "err", err)
				errs = append(errs, err)
				return nil
			}
			perFeed[i] = items
			return nil
		})
	}
	_ = g.Wait()

	if len(u.feeds) > 0 && len(errs) == len(u.feeds) {
		return nil, fmt.Errorf("all %d feeds failed: %w", len(u.feeds), errors.Join(errs...))
	}

	var out []record.Record
	for _, items := range perFeed {
		out = append(out, items...)
	}
	if out == nil {
		out = []record.Record{}
	}
	return out, nil
}
