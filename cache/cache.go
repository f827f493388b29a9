// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/danielhkuo/pollview/metrics"
	"github.com/danielhkuo/pollview/models"
)

const keyPrefix = "pollview:results:"

// Fetcher loads the raw results payload for a poll
type Fetcher interface {
	FetchResults(ctx context.Context, pollID string) (models.PollResults, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, pollID string) (models.PollResults, error)

func (f FetcherFunc) FetchResults(ctx context.Context, pollID string) (models.PollResults, error) {
	return f(ctx, pollID)
}

// ResultsCache sits in front of a Fetcher. Concurrent loads of the same poll
// share one upstream call. When a redis client is configured, payloads are
// kept there for ttl; redis failures fall through to the fetcher.
//
// The shared call is detached from the caller that started it, so one
// disconnecting viewer does not fail the others waiting on the same fetch.
type ResultsCache struct {
	rdb          *redis.Client
	next         Fetcher
	ttl          time.Duration
	fetchTimeout time.Duration
	group        singleflight.Group

	mu       sync.Mutex
	versions map[string]uint64
}

type Option func(*ResultsCache)

// WithFetchTimeout bounds a shared fetch once it no longer follows the
// caller's context
func WithFetchTimeout(d time.Duration) Option {
	return func(c *ResultsCache) {
		c.fetchTimeout = d
	}
}

// New creates a cache. rdb may be nil, in which case only concurrent loads
// are collapsed.
func New(rdb *redis.Client, next Fetcher, ttl time.Duration, opts ...Option) *ResultsCache {
	c := &ResultsCache{
		rdb:      rdb,
		next:     next,
		ttl:      ttl,
		versions: make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClient creates a redis client from a URL such as redis://localhost:6379/0
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return rdb, nil
}

func key(pollID string) string {
	return keyPrefix + pollID
}

// FetchResults returns the cached payload or loads it from the next fetcher
func (c *ResultsCache) FetchResults(ctx context.Context, pollID string) (models.PollResults, error) {
	if res, ok := c.get(ctx, pollID); ok {
		metrics.CacheHitsTotal.WithLabelValues("redis").Inc()
		return res, nil
	}

	ch := c.group.DoChan(pollID, func() (any, error) {
		metrics.CacheMissesTotal.Inc()

		fetchCtx := context.WithoutCancel(ctx)
		if c.fetchTimeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, c.fetchTimeout)
			defer cancel()
		}

		version := c.version(pollID)
		res, err := c.next.FetchResults(fetchCtx, pollID)
		if err != nil {
			return models.PollResults{}, err
		}
		c.store(fetchCtx, pollID, version, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		return models.PollResults{}, ctx.Err()
	case r := <-ch:
		if r.Shared {
			metrics.CacheHitsTotal.WithLabelValues("singleflight").Inc()
		}
		if r.Err != nil {
			return models.PollResults{}, r.Err
		}
		return r.Val.(models.PollResults), nil
	}
}

// store caches a fetched payload unless the poll was invalidated after the
// fetch began. A write racing an Invalidate is undone.
func (c *ResultsCache) store(ctx context.Context, pollID string, version uint64, res models.PollResults) {
	if c.rdb == nil || c.version(pollID) != version {
		return
	}
	c.set(ctx, pollID, res)
	if c.version(pollID) != version {
		c.del(ctx, pollID)
	}
}

func (c *ResultsCache) version(pollID string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[pollID]
}

// Invalidate drops the cached payload for a poll
func (c *ResultsCache) Invalidate(ctx context.Context, pollID string) {
	c.mu.Lock()
	c.versions[pollID]++
	c.mu.Unlock()

	c.group.Forget(pollID)
	c.del(ctx, pollID)
}

func (c *ResultsCache) del(ctx context.Context, pollID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, key(pollID)).Err(); err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("del").Inc()
		slog.Warn("failed to invalidate cached results", "error", err, "poll_id", pollID)
	}
}

func (c *ResultsCache) get(ctx context.Context, pollID string) (models.PollResults, bool) {
	if c.rdb == nil {
		return models.PollResults{}, false
	}

	data, err := c.rdb.Get(ctx, key(pollID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.PollResults{}, false
	}
	if err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("get").Inc()
		slog.Warn("failed to read cached results", "error", err, "poll_id", pollID)
		return models.PollResults{}, false
	}

	var res models.PollResults
	if err := json.Unmarshal(data, &res); err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("decode").Inc()
		slog.Warn("discarding undecodable cached results", "error", err, "poll_id", pollID)
		return models.PollResults{}, false
	}

	return res, true
}

func (c *ResultsCache) set(ctx context.Context, pollID string, res models.PollResults) {
	if c.rdb == nil || c.ttl <= 0 {
		return
	}

	data, err := json.Marshal(res)
	if err != nil {
		slog.Warn("failed to encode results for cache", "error", err, "poll_id", pollID)
		return
	}

	if err := c.rdb.Set(ctx, key(pollID), data, c.ttl).Err(); err != nil {
		metrics.CacheErrorsTotal.WithLabelValues("set").Inc()
		slog.Warn("failed to cache results", "error", err, "poll_id", pollID)
	}
}
