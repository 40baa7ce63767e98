package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/health"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

const selectSnapshotColumns = `id, user_id, score, health_state, trend_direction, components, calculated_at`

func scanSnapshot(s scanner) (*health.Snapshot, error) {
	var snap health.Snapshot

	var state, trend string

	var components []byte

	if err := s.Scan(&snap.ID, &snap.UserID, &snap.Score, &state, &trend, &components, &snap.CalculatedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(components, &snap.Components); err != nil {
		return nil, fmt.Errorf("decoding components: %w", err)
	}

	snap.HealthState = health.State(state)
	snap.TrendDirection = health.Trend(trend)

	return &snap, nil
}

func (s *Store) LatestSnapshot(ctx context.Context, userID string) (*health.Snapshot, error) {
	query := `SELECT ` + selectSnapshotColumns + `
		FROM health_scores
		WHERE user_id = $1
		ORDER BY calculated_at DESC
		LIMIT 1`

	snap, err := scanSnapshot(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, fmt.Errorf("getting latest snapshot: %w", err)
	}

	return snap, nil
}

func (s *Store) CreateSnapshot(ctx context.Context, snap *health.Snapshot) error {
	components, err := json.Marshal(snap.Components)
	if err != nil {
		return fmt.Errorf("encoding components: %w", err)
	}

	query := `
		INSERT INTO health_scores (id, user_id, score, health_state, trend_direction, components, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = s.db.ExecContext(ctx, query,
		snap.ID,
		snap.UserID,
		snap.Score,
		snap.HealthState,
		snap.TrendDirection,
		components,
		snap.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	return nil
}

func (s *Store) ListSnapshots(ctx context.Context, userID string, limit int) ([]*health.Snapshot, error) {
	query := `SELECT ` + selectSnapshotColumns + `
		FROM health_scores
		WHERE user_id = $1
		ORDER BY calculated_at DESC
		LIMIT $2`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*health.Snapshot

	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning snapshot: %w", err)
		}

		snapshots = append(snapshots, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating snapshots: %w", err)
	}

	return snapshots, nil
}
