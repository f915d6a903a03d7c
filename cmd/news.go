package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/unifai-network/unifai-toolkits/internal/news"
	"github.com/unifai-network/unifai-toolkits/internal/record"
)

var (
	flagNewsLimitPerFeed int
	flagNewsSources      []string
	flagNewsFormat       string
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show the latest Web3 headlines",
	Long: `Print the newest headlines from the configured crypto news feeds.

--limit-per-feed caps entries per feed (1-10, default 5; other values fall
back to 5). --source restricts output to the named feeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(flagNewsFormat); err != nil {
			return err
		}
		payload := newsPayload(cmd.Flags())

		t, err := newToolkit(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer t.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := t.prime(ctx, t.news.Collection()); err != nil {
			return err
		}

		results, err := t.news.Latest(ctx, payload)
		if err != nil {
			return err
		}
		if flagNewsFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{"results": results})
		}
		return writeTable(cmd.OutOrStdout(), []string{"FEED", "PUBLISHED", "TITLE"}, newsRows(results))
	},
}

func init() {
	f := newsCmd.Flags()
	f.IntVar(&flagNewsLimitPerFeed, "limit-per-feed", news.DefaultLimitPerFeed, "entries per feed (1-10)")
	f.StringSliceVar(&flagNewsSources, "source", nil, "only these feeds (repeatable)")
	f.StringVar(&flagNewsFormat, "format", formatTable, "output format: table or json")
}

func newsPayload(fs *pflag.FlagSet) news.Payload {
	p := news.Payload{Sources: flagNewsSources}
	if fs.Changed("limit-per-feed") {
		n := news.Count(flagNewsLimitPerFeed)
		p.LimitPerFeed = &n
	}
	return p
}

func newsRows(rs []record.Record) [][]string {
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		var published time.Time
		if ts := int64(r.Number("publishedAt")); ts > 0 {
			published = time.Unix(ts, 0)
		}
		rows = append(rows, []string{r.Text("feed"), formatTime(published), truncate(r.Text("title"), 80)})
	}
	return rows
}
