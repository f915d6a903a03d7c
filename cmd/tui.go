package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/unifai-network/unifai-toolkits/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Launch the news browser",
	Long:  "Browse the latest Web3 headlines in a two-pane terminal UI.",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The alternate screen owns the terminal, so logs are dropped.
	t, err := newToolkit(io.Discard)
	if err != nil {
		return err
	}
	defer t.Close()

	if flagRefresh {
		cmd.Println("Fetching feeds...")
		if err := t.prime(context.Background(), t.news.Collection()); err != nil {
			warnf("%v", err)
		}
	}

	return tui.Run(tui.RunOpts{
		News:  t.news,
		Feeds: t.cfg.FeedNames(),
	})
}
