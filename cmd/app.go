package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/unifai-network/unifai-toolkits/internal/archive"
	"github.com/unifai-network/unifai-toolkits/internal/collection"
	"github.com/unifai-network/unifai-toolkits/internal/config"
	"github.com/unifai-network/unifai-toolkits/internal/logging"
	"github.com/unifai-network/unifai-toolkits/internal/metrics"
	"github.com/unifai-network/unifai-toolkits/internal/news"
	"github.com/unifai-network/unifai-toolkits/internal/pools"
)

const (
	metricsNamespace = "toolkits"
	poolsCollection  = "pools"
	newsCollection   = "news"
)

// toolkit is everything a command needs, built once from config.
type toolkit struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	archive *archive.Archive // nil when disabled
	pools   *pools.Service
	news    *news.Service
}

// newToolkit loads config and wires both collections. Logs go to logOut.
// The archive is opened only when enabled in config.
func newToolkit(logOut io.Writer) (*toolkit, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(cfg.Logging, logOut)
	slog.SetDefault(logger)

	t := &toolkit{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(metricsNamespace),
	}

	var poolsHooks, newsHooks []func(collection.Snapshot)
	if cfg.Archive.Enabled {
		db, err := archive.Open(cfg.ArchivePath())
		if err != nil {
			return nil, fmt.Errorf("opening archive: %w", err)
		}
		t.archive = db
		if n, err := db.Prune(cfg.RetentionDuration()); err != nil {
			logger.Warn("pruning archive failed", "err", err)
		} else if n > 0 {
			logger.Info("pruned archive", "articles", n)
		}
		poolsHooks = append(poolsHooks, db.RefreshHook(logger))
		newsHooks = append(newsHooks, db.RefreshHook(logger), news.ArchiveHook(db, logger))
	}

	poolsColl := collection.New(
		pools.NewClient(cfg.Pools.Endpoint, cfg.PoolsTimeout()),
		collection.Options{
			Name:      poolsCollection,
			TTL:       cfg.PoolsTTL(),
			Logger:    logger,
			Metrics:   t.metrics,
			OnRefresh: poolsHooks,
		},
	)
	t.pools = pools.NewService(poolsColl, pools.NewEngine(cfg.Pools.DefaultLimit, cfg.Pools.MaxLimit))

	feeds := cfg.EnabledFeeds()
	newsColl := collection.New(
		news.NewUpstream(feeds, news.NewRSSFetcher(cfg.NewsTimeout()), logger),
		collection.Options{
			Name:      newsCollection,
			TTL:       cfg.NewsTTL(),
			Logger:    logger,
			Metrics:   t.metrics,
			OnRefresh: newsHooks,
		},
	)
	t.news = news.NewService(newsColl, len(feeds))

	return t, nil
}

func (t *toolkit) collections() []*collection.Collection {
	return []*collection.Collection{t.pools.Collection(), t.news.Collection()}
}

// prime runs the --refresh flag: an immediate fetch that ignores the TTL.
func (t *toolkit) prime(ctx context.Context, colls ...*collection.Collection) error {
	if !flagRefresh {
		return nil
	}
	for _, c := range colls {
		if _, err := c.Refresh(ctx); err != nil {
			return fmt.Errorf("refreshing %s: %w", c.Name(), err)
		}
		if err := c.Snapshot().LastErr; err != nil {
			warnf("refreshing %s failed, serving cached data: %v", c.Name(), err)
		}
	}
	return nil
}

func (t *toolkit) Close() error {
	if t.archive != nil {
		return t.archive.Close()
	}
	return nil
}
