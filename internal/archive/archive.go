// Package archive keeps a local sqlite history of served news entries and
// collection refreshes. It is write-behind only: the in-memory collections
// never read from it.
package archive

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNoRefresh = errors.New("no refresh recorded")

type Archive struct {
	readDB  *sql.DB
	writeDB *sql.DB
	path    string
}

func Open(dbPath string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating archive dir: %w", err)
	}

	writeDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	readDB, err := sql.Open("sqlite", dbPath+"?mode=ro")
	if err != nil {
		writeDB.Close()
		return nil, fmt.Errorf("opening read db: %w", err)
	}

	a := &Archive{readDB: readDB, writeDB: writeDB, path: dbPath}
	if err := a.init(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Archive) init() error {
	_, err := a.writeDB.Exec(`
		CREATE TABLE IF NOT EXISTS articles (
			id          TEXT PRIMARY KEY,
			feed        TEXT NOT NULL,
			source      TEXT NOT NULL DEFAULT '',
			title       TEXT NOT NULL,
			link        TEXT NOT NULL,
			summary     TEXT NOT NULL DEFAULT '',
			published   DATETIME,
			fetched_at  DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_articles_fetched ON articles(fetched_at DESC);
		CREATE INDEX IF NOT EXISTS idx_articles_feed ON articles(feed);

		CREATE TABLE IF NOT EXISTS refreshes (
			collection  TEXT NOT NULL,
			fetched_at  DATETIME NOT NULL,
			records     INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_refreshes_collection ON refreshes(collection, fetched_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("initializing schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) Close() error {
	var errs []error
	if a.readDB != nil {
		errs = append(errs, a.readDB.Close())
	}
	if a.writeDB != nil {
		errs = append(errs, a.writeDB.Close())
	}
	return errors.Join(errs...)
}

func (a *Archive) UpsertArticles(articles []Article) error {
	tx, err := a.writeDB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO articles (id, feed, source, title, link, summary, published, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			summary = excluded.summary,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, art := range articles {
		var published any
		if !art.Published.IsZero() {
			published = art.Published.UTC()
		}
		_, err := stmt.Exec(art.ID, art.Feed, art.Source, art.Title, art.Link, art.Summary, published, art.FetchedAt.UTC())
		if err != nil {
			return fmt.Errorf("upserting article %s: %w", art.ID, err)
		}
	}

	return tx.Commit()
}

// GetArticles returns archived articles, most recently fetched first.
func (a *Archive) GetArticles(opts QueryOpts) ([]Article, error) {
	var (
		where []string
		args  []any
	)

	if !opts.Since.IsZero() {
		where = append(where, "fetched_at >= ?")
		args = append(args, opts.Since.UTC())
	}

	if len(opts.Feeds) > 0 {
		placeholders := make([]string, len(opts.Feeds))
		for i, f := range opts.Feeds {
			placeholders[i] = "?"
			args = append(args, strings.ToLower(f))
		}
		where = append(where, "lower(feed) IN ("+strings.Join(placeholders, ",")+")") //nolint:gosec
	}

	if opts.Search != "" {
		where = append(where, "(title LIKE ? OR summary LIKE ?)")
		term := "%" + opts.Search + "%"
		args = append(args, term, term)
	}

	query := "SELECT id, feed, source, title, link, summary, published, fetched_at FROM articles"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY fetched_at DESC, published DESC"

	limit := opts.Limit
	if limit <= 0 {
		limit = 500
	}
	query += fmt.Sprintf(" LIMIT %d", limit)

	rows, err := a.readDB.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		var (
			art       Article
			published sql.NullTime
		)
		if err := rows.Scan(&art.ID, &art.Feed, &art.Source, &art.Title, &art.Link, &art.Summary, &published, &art.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		if published.Valid {
			art.Published = published.Time
		}
		articles = append(articles, art)
	}
	return articles, rows.Err()
}

// RecordRefresh appends a refresh row for collection.
func (a *Archive) RecordRefresh(r Refresh) error {
	_, err := a.writeDB.Exec(
		"INSERT INTO refreshes (collection, fetched_at, records) VALUES (?, ?, ?)",
		r.Collection, r.FetchedAt.UTC(), r.Records,
	)
	if err != nil {
		return fmt.Errorf("recording refresh: %w", err)
	}
	return nil
}

// LastRefresh returns the latest refresh of collection, or ErrNoRefresh.
func (a *Archive) LastRefresh(collection string) (Refresh, error) {
	r := Refresh{Collection: collection}
	err := a.readDB.QueryRow(
		"SELECT fetched_at, records FROM refreshes WHERE collection = ? ORDER BY fetched_at DESC LIMIT 1",
		collection,
	).Scan(&r.FetchedAt, &r.Records)
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNoRefresh
	}
	if err != nil {
		return r, fmt.Errorf("reading last refresh: %w", err)
	}
	return r, nil
}

// Prune deletes articles and refresh rows older than retention and returns
// the number of articles removed.
func (a *Archive) Prune(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC()

	res, err := a.writeDB.Exec("DELETE FROM articles WHERE fetched_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning articles: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if _, err := a.writeDB.Exec("DELETE FROM refreshes WHERE fetched_at < ?", cutoff); err != nil {
		return deleted, fmt.Errorf("pruning refreshes: %w", err)
	}
	if deleted > 0 {
		if _, err := a.writeDB.Exec("VACUUM"); err != nil {
			return deleted, fmt.Errorf("vacuum: %w", err)
		}
	}
	return deleted, nil
}

func (a *Archive) Stats() (Stats, error) {
	var s Stats
	if err := a.readDB.QueryRow("SELECT COUNT(*) FROM articles").Scan(&s.Articles); err != nil {
		return s, fmt.Errorf("counting articles: %w", err)
	}
	if err := a.readDB.QueryRow("SELECT COUNT(*) FROM refreshes").Scan(&s.Refreshes); err != nil {
		return s, fmt.Errorf("counting refreshes: %w", err)
	}
	info, err := os.Stat(a.path)
	if err != nil {
		return s, fmt.Errorf("stat archive: %w", err)
	}
	s.SizeBytes = info.Size()
	return s, nil
}
