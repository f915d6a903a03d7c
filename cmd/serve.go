package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/unifai-network/unifai-toolkits/internal/news"
	"github.com/unifai-network/unifai-toolkits/internal/pools"
	"github.com/unifai-network/unifai-toolkits/internal/server"
)

var flagServeAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the JSON action server",
	Long: `Serve the toolkit actions over HTTP:

  POST /actions/get_pools     filter, sort and limit yield pools
  POST /actions/getWeb3News   latest headlines per feed
  GET  /actions               registered action names
  GET  /healthz               cache state per collection
  GET  /metrics               Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := newToolkit(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer t.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := t.prime(ctx, t.collections()...); err != nil {
			return err
		}

		addr := t.cfg.Server.Addr
		if flagServeAddr != "" {
			addr = flagServeAddr
		}
		srv := server.New(server.Options{
			Addr:        addr,
			RateLimit:   t.cfg.Server.RateLimit,
			Burst:       t.cfg.Server.Burst,
			Logger:      t.logger,
			Metrics:     t.metrics,
			Collections: t.collections(),
		})
		srv.Register(pools.Action, server.PoolsAction(t.pools))
		srv.Register(news.Action, server.NewsAction(t.news))

		return srv.ListenAndRun(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "listen address (overrides server.addr)")
}
