// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/danielhkuo/pollview/cache"
	"github.com/danielhkuo/pollview/chart"
	"github.com/danielhkuo/pollview/db"
	"github.com/danielhkuo/pollview/metrics"
	"github.com/danielhkuo/pollview/models"
	"github.com/danielhkuo/pollview/upstream"
	"github.com/danielhkuo/pollview/view"
)

// ErrNoResults is returned when upstream is unavailable and no snapshot of
// the poll has been stored yet
var ErrNoResults = errors.New("results unavailable")

// ResultsLoader turns upstream payloads into results views and keeps the
// snapshot history up to date
type ResultsLoader struct {
	fetcher   cache.Fetcher
	snapshots *db.SnapshotStore
	builder   *view.Builder
	clock     clockwork.Clock

	mu       sync.Mutex        // guards lastHash and snapshot writes
	lastHash map[string]string // poll id -> inputs hash of the newest stored snapshot
}

func NewResultsLoader(fetcher cache.Fetcher, snapshots *db.SnapshotStore, builder *view.Builder, clock clockwork.Clock) *ResultsLoader {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ResultsLoader{
		fetcher:   fetcher,
		snapshots: snapshots,
		builder:   builder,
		clock:     clock,
		lastHash:  make(map[string]string),
	}
}

func (l *ResultsLoader) Settings() chart.Settings {
	return l.builder.Settings()
}

// Load returns the current view of a poll. When upstream fails for any reason
// other than an unknown poll, the newest stored snapshot is served instead
// with Stale set.
func (l *ResultsLoader) Load(ctx context.Context, pollID string) (models.ResultsView, error) {
	res, err := l.fetcher.FetchResults(ctx, pollID)
	if err != nil {
		if errors.Is(err, upstream.ErrPollNotFound) || ctx.Err() != nil {
			return models.ResultsView{}, err
		}
		return l.loadStale(ctx, pollID, err)
	}

	v, issues := l.builder.BuildWithIssues(res)
	metrics.AggregationsTotal.Inc()

	for _, issue := range issues {
		slog.Warn("tally integrity issue",
			"poll_id", pollID,
			"kind", issue.Kind,
			"detail", issue.String(),
		)
		metrics.IntegrityIssuesTotal.WithLabelValues(string(issue.Kind)).Inc()
	}

	if err := l.record(ctx, pollID, res, v); err != nil {
		// history is best effort
		slog.Error("failed to store snapshot", "poll_id", pollID, "error", err)
	}

	return v, nil
}

func (l *ResultsLoader) loadStale(ctx context.Context, pollID string, cause error) (models.ResultsView, error) {
	snap, err := l.snapshots.Latest(ctx, pollID)
	if errors.Is(err, db.ErrSnapshotNotFound) {
		return models.ResultsView{}, fmt.Errorf("%w: %w", ErrNoResults, cause)
	}
	if err != nil {
		return models.ResultsView{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	slog.Warn("serving stale results",
		"poll_id", pollID,
		"captured_at", snap.CapturedAt,
		"error", cause,
	)
	metrics.StaleViewsTotal.Inc()

	v := l.builder.Build(snap.Payload)
	v.Stale = true
	return v, nil
}

// record stores a snapshot when the payload differs from the newest one.
// Calls are serialised so concurrent loads of one payload store it once.
func (l *ResultsLoader) record(ctx context.Context, pollID string, res models.PollResults, v models.ResultsView) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	last, known := l.lastHash[pollID]
	if !known {
		latest, err := l.snapshots.Latest(ctx, pollID)
		switch {
		case err == nil:
			last = latest.InputsHash
			l.lastHash[pollID] = last
		case errors.Is(err, db.ErrSnapshotNotFound):
		default:
			return err
		}
	}

	if last == v.InputsHash {
		return nil
	}

	_, err := l.snapshots.Save(ctx, models.Snapshot{
		PollID:        pollID,
		CapturedAt:    l.clock.Now(),
		TotalVotes:    v.Summary.TotalVotes,
		ReportedTotal: res.Total,
		InputsHash:    v.InputsHash,
		Payload:       res,
	})
	if err != nil {
		return err
	}
	metrics.SnapshotsSavedTotal.Inc()
	slog.Debug("snapshot stored", "poll_id", pollID, "total_votes", v.Summary.TotalVotes)

	l.lastHash[pollID] = v.InputsHash
	return nil
}
