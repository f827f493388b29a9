// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/danielhkuo/pollview/cache"
	"github.com/danielhkuo/pollview/chart"
	"github.com/danielhkuo/pollview/cliparse"
	"github.com/danielhkuo/pollview/db"
	"github.com/danielhkuo/pollview/handlers"
	"github.com/danielhkuo/pollview/middleware"
	"github.com/danielhkuo/pollview/upstream"
	"github.com/danielhkuo/pollview/view"
)

// Deps holds the services behind the routes
type Deps struct {
	Loader       *handlers.ResultsLoader
	Snapshots    *db.SnapshotStore
	Upstream     *upstream.Client
	Cache        *cache.ResultsCache
	Limiter      *middleware.RateLimiter
	Clock        clockwork.Clock
	LiveInterval time.Duration
}

// NewDeps wires the services from configuration. rdb may be nil to run
// without redis.
func NewDeps(database *sql.DB, rdb *redis.Client, cfg cliparse.Config, settings chart.Settings, clock clockwork.Clock) (Deps, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	client, err := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout, upstream.WithClock(clock))
	if err != nil {
		return Deps{}, fmt.Errorf("failed to create upstream client: %w", err)
	}

	resultsCache := cache.New(rdb, client, cfg.CacheTTL, cache.WithFetchTimeout(cfg.UpstreamTimeout))
	snapshots := db.NewSnapshotStore(database, cfg.DatabaseType)
	builder := view.NewBuilder(chart.NewAdapter(settings), clock)

	return Deps{
		Loader:       handlers.NewResultsLoader(resultsCache, snapshots, builder, clock),
		Snapshots:    snapshots,
		Upstream:     client,
		Cache:        resultsCache,
		Limiter:      middleware.NewRateLimiter(cfg.VoteRateLimit, cfg.VoteRateBurst, clock),
		Clock:        clock,
		LiveInterval: cfg.LiveInterval,
	}, nil
}

func NewRouter(deps Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	resultsHandler := handlers.NewResultsHandler(deps.Loader, deps.Snapshots)
	votingHandler := handlers.NewVotingHandler(deps.Upstream, deps.Cache)
	liveHandler := handlers.NewLiveHandler(deps.Loader, deps.LiveInterval, deps.Clock)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	// Results (public)
	mux.HandleFunc("GET /polls/{id}/view", middleware.WithLogging(resultsHandler.View))
	mux.HandleFunc("GET /polls/{id}/chart.svg", middleware.WithLogging(resultsHandler.ChartSVG))
	mux.HandleFunc("GET /polls/{id}/ring.svg", middleware.WithLogging(resultsHandler.RingSVG))
	mux.HandleFunc("GET /polls/{id}/trend", middleware.WithLogging(resultsHandler.Trend))

	// Voting (rate limited per client)
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(middleware.WithRateLimit(deps.Limiter, votingHandler.SubmitVote)))

	// Live updates
	mux.HandleFunc("GET /polls/{id}/live", middleware.WithLogging(liveHandler.Stream))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollview API v1"))
	})

	return mux
}
