// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollview/models"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

const DefaultTrendLimit = 100

var placeholder = regexp.MustCompile(`\$\d+`)

// SnapshotStore persists the last known results of each poll so views can
// still be served while upstream is down, and so vote totals can be charted
// over time.
type SnapshotStore struct {
	db     *sql.DB
	dbType string
}

func NewSnapshotStore(db *sql.DB, dbType string) *SnapshotStore {
	return &SnapshotStore{db: db, dbType: dbType}
}

// rebind rewrites $n placeholders for drivers that expect ?
func (s *SnapshotStore) rebind(query string) string {
	if s.dbType == TypeSQLite {
		return placeholder.ReplaceAllString(query, "?")
	}
	return query
}

// Save stores a snapshot and returns it with its generated ID
func (s *SnapshotStore) Save(ctx context.Context, snap models.Snapshot) (models.Snapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now()
	}
	snap.CapturedAt = snap.CapturedAt.UTC().Truncate(time.Millisecond)
	if snap.PollID == "" {
		snap.PollID = snap.Payload.Poll.ID
	}

	payload, err := json.Marshal(snap.Payload)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to encode snapshot payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO result_snapshot (id, poll_id, captured_at, total_votes, reported_total, inputs_hash, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`), snap.ID, snap.PollID, snap.CapturedAt.UnixMilli(), snap.TotalVotes, snap.ReportedTotal, snap.InputsHash, string(payload))
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return snap, nil
}

// Latest returns the most recent snapshot for a poll
func (s *SnapshotStore) Latest(ctx context.Context, pollID string) (models.Snapshot, error) {
	var (
		snap       models.Snapshot
		capturedAt int64
		payload    string
	)

	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, poll_id, captured_at, total_votes, reported_total, inputs_hash, payload
		FROM result_snapshot
		WHERE poll_id = $1
		ORDER BY captured_at DESC, id DESC
		LIMIT 1
	`), pollID).Scan(
		&snap.ID, &snap.PollID, &capturedAt, &snap.TotalVotes,
		&snap.ReportedTotal, &snap.InputsHash, &payload,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to query snapshot: %w", err)
	}

	snap.CapturedAt = time.UnixMilli(capturedAt).UTC()
	if err := json.Unmarshal([]byte(payload), &snap.Payload); err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to decode snapshot payload: %w", err)
	}

	return snap, nil
}

// Trend returns up to limit of the most recent vote totals for a poll,
// oldest first
func (s *SnapshotStore) Trend(ctx context.Context, pollID string, limit int) ([]models.TrendPoint, error) {
	if limit <= 0 {
		limit = DefaultTrendLimit
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT captured_at, total_votes
		FROM result_snapshot
		WHERE poll_id = $1
		ORDER BY captured_at DESC, id DESC
		LIMIT $2
	`), pollID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend: %w", err)
	}
	defer rows.Close()

	points := []models.TrendPoint{}
	for rows.Next() {
		var (
			capturedAt int64
			point      models.TrendPoint
		)
		if err := rows.Scan(&capturedAt, &point.TotalVotes); err != nil {
			return nil, fmt.Errorf("failed to scan trend point: %w", err)
		}
		point.CapturedAt = time.UnixMilli(capturedAt).UTC()
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trend: %w", err)
	}

	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}

	return points, nil
}
