package archive

import "time"

// Article is a news entry as kept in the archive.
type Article struct {
	ID        string    `json:"id"`
	Feed      string    `json:"feed"`
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Summary   string    `json:"summary,omitempty"`
	Published time.Time `json:"published"` // zero when the feed gave no date
	FetchedAt time.Time `json:"fetchedAt"`
}

type QueryOpts struct {
	Since  time.Time
	Feeds  []string
	Search string
	Limit  int
}

// Refresh is one successful collection refresh.
type Refresh struct {
	Collection string
	FetchedAt  time.Time
	Records    int
}

type Stats struct {
	Articles  int
	Refreshes int
	SizeBytes int64
}
