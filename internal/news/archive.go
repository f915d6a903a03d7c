package news

import (
	"log/slog"
	"time"

	"github.com/unifai-network/unifai-toolkits/internal/archive"
	"github.com/unifai-network/unifai-toolkits/internal/collection"
	"github.com/unifai-network/unifai-toolkits/internal/record"
)

// Articles converts news records to archive rows. Records without a link
// are skipped since the link is the identity.
func Articles(records []record.Record, fetchedAt time.Time) []archive.Article {
	out := make([]archive.Article, 0, len(records))
	for _, r := range records {
		link := r.Text("link")
		if link == "" {
			continue
		}
		id := r.Text("id")
		if id == "" {
			id = articleID(link)
		}
		var published time.Time
		if ts := int64(r.Number("publishedAt")); ts > 0 {
			published = time.Unix(ts, 0)
		}
		out = append(out, archive.Article{
			ID:        id,
			Feed:      r.Text("feed"),
			Source:    r.Text("source"),
			Title:     r.Text("title"),
			Link:      link,
			Summary:   r.Text("summary"),
			Published: published,
			FetchedAt: fetchedAt,
		})
	}
	return out
}

// ArchiveHook stores each refreshed news snapshot in a.
func ArchiveHook(a *archive.Archive, logger *slog.Logger) func(collection.Snapshot) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(s collection.Snapshot) {
		if err := a.UpsertArticles(Articles(s.Records, s.FetchedAt)); err != nil {
			logger.Warn("archiving news failed", "err", err)
		}
	}
}
