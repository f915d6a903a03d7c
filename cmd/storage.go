package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unifai-network/unifai-toolkits/internal/archive"
	"github.com/unifai-network/unifai-toolkits/internal/config"
)

var (
	flagPruneOlderThan string

	flagHistorySince  string
	flagHistoryFeeds  []string
	flagHistorySearch string
	flagHistoryLimit  int
	flagHistoryFormat string
)

// openArchive opens the archive regardless of archive.enabled, so history
// written earlier stays inspectable after the archive is switched off.
func openArchive() (*config.Config, *archive.Archive, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	db, err := archive.Open(cfg.ArchivePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening archive: %w", err)
	}
	return cfg, db, nil
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old entries from the archive",
	Long: `Delete archived headlines and refresh records older than the retention
period and reclaim disk space.

Uses archive.retention from config (default: 30d) unless overridden with --older-than.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		retention := cfg.RetentionDuration()
		if flagPruneOlderThan != "" {
			d, err := config.ParseDuration(flagPruneOlderThan)
			if err != nil {
				return fmt.Errorf("invalid --older-than value: %w", err)
			}
			retention = d
		}

		deleted, err := db.Prune(retention)
		if err != nil {
			return fmt.Errorf("pruning: %w", err)
		}

		if deleted == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to prune.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d articles older than %s.\n", deleted, formatDuration(retention))
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show archive statistics and last refreshes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		s, err := db.Stats()
		if err != nil {
			return fmt.Errorf("reading stats: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Archive: %s\n", db.Path())
		if !cfg.Archive.Enabled {
			fmt.Fprintln(out, "Recording: disabled")
		}
		fmt.Fprintf(out, "Articles: %d\n", s.Articles)
		fmt.Fprintf(out, "Refreshes: %d\n", s.Refreshes)
		fmt.Fprintf(out, "Size: %s\n", formatBytes(s.SizeBytes))

		ttls := map[string]time.Duration{
			poolsCollection: cfg.PoolsTTL(),
			newsCollection:  cfg.NewsTTL(),
		}
		for _, name := range []string{poolsCollection, newsCollection} {
			r, err := db.LastRefresh(name)
			if errors.Is(err, archive.ErrNoRefresh) {
				fmt.Fprintf(out, "%s: never refreshed (ttl %s)\n", name, formatDuration(ttls[name]))
				continue
			}
			if err != nil {
				return fmt.Errorf("reading last refresh: %w", err)
			}
			fmt.Fprintf(out, "%s: %d records at %s (ttl %s)\n",
				name, r.Records, formatTime(r.FetchedAt), formatDuration(ttls[name]))
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(flagHistoryFormat); err != nil {
			return err
		}
		opts := archive.QueryOpts{
			Feeds:  flagHistoryFeeds,
			Search: flagHistorySearch,
			Limit:  flagHistoryLimit,
		}
		if flagHistorySince != "" {
			d, err := config.ParseDuration(flagHistorySince)
			if err != nil {
				return fmt.Errorf("invalid --since value: %w", err)
			}
			opts.Since = time.Now().Add(-d)
		}

		_, db, err := openArchive()
		if err != nil {
			return err
		}
		defer db.Close()

		articles, err := db.GetArticles(opts)
		if err != nil {
			return fmt.Errorf("querying archive: %w", err)
		}
		if flagHistoryFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), articles)
		}
		rows := make([][]string, 0, len(articles))
		for _, a := range articles {
			rows = append(rows, []string{a.Feed, formatTime(a.Published), truncate(a.Title, 80)})
		}
		return writeTable(cmd.OutOrStdout(), []string{"FEED", "PUBLISHED", "TITLE"}, rows)
	},
}

func init() {
	pruneCmd.Flags().StringVar(&flagPruneOlderThan, "older-than", "", "override retention period (e.g., 30d, 720h)")

	f := historyCmd.Flags()
	f.StringVar(&flagHistorySince, "since", "", "only entries archived within this duration (e.g., 7d, 24h)")
	f.StringSliceVar(&flagHistoryFeeds, "feed", nil, "only these feeds (repeatable)")
	f.StringVar(&flagHistorySearch, "search", "", "match title or summary")
	f.IntVar(&flagHistoryLimit, "limit", 50, "maximum entries")
	f.StringVar(&flagHistoryFormat, "format", formatTable, "output format: table or json")
}
