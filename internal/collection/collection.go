// Package collection caches a remote record collection for a bounded time.
//
// A Collection holds one snapshot per upstream source. Reads inside the TTL
// return the snapshot as-is; the first read after it expires refreshes it
// while holding the collection's lock, so concurrent readers in the same
// stale window block and then share the one fetch. A failed refresh keeps
// the previous snapshot and only surfaces an error when there is nothing
// cached yet.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/unifai-network/unifai-toolkits/internal/metrics"
	"github.com/unifai-network/unifai-toolkits/internal/record"
)

// ErrUpstream is returned when the upstream fetch fails and no snapshot is
// cached yet.
var ErrUpstream = errors.New("upstream fetch failed")

// Fetcher loads the full collection from its upstream.
type Fetcher interface {
	Fetch(ctx context.Context) ([]record.Record, error)
}

// FetchFunc adapts a function to Fetcher.
type FetchFunc func(ctx context.Context) ([]record.Record, error)

// Fetch calls f(ctx).
func (f FetchFunc) Fetch(ctx context.Context) ([]record.Record, error) {
	return f(ctx)
}

// State is the cache state of a collection at a point in time.
type State int

const (
	StateEmpty State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Snapshot is a read-only view of the cached collection.
type Snapshot struct {
	Name      string
	Records   []record.Record
	FetchedAt time.Time
	State     State
	LastErr   error
}

// Options configure a Collection.
type Options struct {
	// Name labels logs and metrics.
	Name string
	// TTL is how long a snapshot stays fresh. TTL <= 0 makes every read stale.
	TTL time.Duration
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Logger defaults to slog.Default().
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// OnRefresh runs under the lock after each successful refresh.
	OnRefresh []func(Snapshot)
}

// Collection is the time-bounded cache for one upstream.
type Collection struct {
	fetcher Fetcher
	opts    Options
	logger  *slog.Logger

	mu        sync.Mutex // guards everything below, held across fetches
	records   []record.Record
	fetchedAt time.Time
	hasData   bool
	lastErr   error
}

// New creates an empty Collection backed by fetcher.
func New(fetcher Fetcher, opts Options) *Collection {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Name == "" {
		opts.Name = "collection"
	}
	return &Collection{
		fetcher: fetcher,
		opts:    opts,
		logger:  opts.Logger.With("collection", opts.Name),
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.opts.Name
}

// TTL returns the configured time-to-live.
func (c *Collection) TTL() time.Duration {
	return c.opts.TTL
}

// Get returns the cached records, refreshing them first when stale.
// The returned slice is shared and must not be modified.
func (c *Collection) Get(ctx context.Context) ([]record.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.staleLocked() {
		return c.records, nil
	}
	return c.refreshLocked(ctx)
}

// Refresh fetches regardless of the TTL, with the same failure policy as Get.
func (c *Collection) Refresh(ctx context.Context) ([]record.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshLocked(ctx)
}

// Snapshot returns the current state without fetching.
func (c *Collection) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Collection) snapshotLocked() Snapshot {
	s := Snapshot{
		Name:      c.opts.Name,
		Records:   c.records,
		FetchedAt: c.fetchedAt,
		LastErr:   c.lastErr,
	}
	switch {
	case !c.hasData:
		s.State = StateEmpty
	case c.staleLocked():
		s.State = StateStale
	default:
		s.State = StateFresh
	}
	return s
}

func (c *Collection) staleLocked() bool {
	if !c.hasData || c.opts.TTL <= 0 {
		return true
	}
	return c.opts.Clock().Sub(c.fetchedAt) >= c.opts.TTL
}

func (c *Collection) refreshLocked(ctx context.Context) ([]record.Record, error) {
	// Latency is wall time; the injected clock only drives staleness.
	start := time.Now()
	records, err := c.fetcher.Fetch(ctx)
	if m := c.opts.Metrics; m != nil {
		m.FetchDuration.WithLabelValues(c.opts.Name).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		c.lastErr = err
		c.countFetch("error")
		if !c.hasData {
			c.logger.Error("upstream fetch failed, nothing cached", "err", err)
			return nil, fmt.Errorf("%w: %s: %w", ErrUpstream, c.opts.Name, err)
		}
		c.logger.Warn("serving stale collection",
			"err", err,
			"fetched_at", c.fetchedAt,
			"records", len(c.records),
		)
		if m := c.opts.Metrics; m != nil {
			m.StaleServes.WithLabelValues(c.opts.Name).Inc()
		}
		return c.records, nil
	}

	if records == nil {
		records = []record.Record{}
	}
	now := c.opts.Clock()
	if !now.After(c.fetchedAt) {
		// Keep timestamps strictly increasing under coarse clocks.
		now = c.fetchedAt.Add(time.Nanosecond)
	}
	c.records = records
	c.fetchedAt = now
	c.hasData = true
	c.lastErr = nil
	c.countFetch("ok")

	if m := c.opts.Metrics; m != nil {
		m.CachedRecords.WithLabelValues(c.opts.Name).Set(float64(len(records)))
		m.LastRefresh.WithLabelValues(c.opts.Name).Set(float64(now.Unix()))
	}
	c.logger.Debug("collection refreshed", "records", len(records), "fetched_at", now)

	if len(c.opts.OnRefresh) > 0 {
		snap := c.snapshotLocked()
		for _, hook := range c.opts.OnRefresh {
			hook(snap)
		}
	}
	return c.records, nil
}

func (c *Collection) countFetch(result string) {
	if m := c.opts.Metrics; m != nil {
		m.FetchesTotal.WithLabelValues(c.opts.Name, result).Inc()
	}
}
