package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
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

const selectInsightColumns = `
	id, user_id, insight_type, severity, title, explanation, supporting_data,
	status, created_at, resolved_at, updated_at
`

// Expected column order matches selectInsightColumns.
func scanInsight(s scanner) (*insight.Insight, error) {
	var in insight.Insight

	var typ, severity, status string

	var data []byte

	if err := s.Scan(
		&in.ID, &in.UserID, &typ, &severity, &in.Title, &in.Explanation, &data,
		&status, &in.CreatedAt, &in.ResolvedAt, &in.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &in.SupportingData); err != nil {
			return nil, fmt.Errorf("decoding supporting data: %w", err)
		}
	}

	in.Type = insight.Type(typ)
	in.Severity = insight.Severity(severity)
	in.Status = insight.Status(status)

	return &in, nil
}

func encodeData(data map[string]any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}

	return json.Marshal(data)
}

func (s *Store) FindActiveSince(ctx context.Context, userID string, typ insight.Type, since time.Time) (*insight.Insight, error) {
	query := `SELECT ` + selectInsightColumns + `
		FROM insights
		WHERE user_id = $1 AND insight_type = $2 AND status = $3 AND created_at >= $4
		ORDER BY created_at DESC
		LIMIT 1`

	in, err := scanInsight(s.db.QueryRowContext(ctx, query, userID, typ, insight.StatusActive, since))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, fmt.Errorf("finding recent insight: %w", err)
	}

	return in, nil
}

func (s *Store) CreateInsight(ctx context.Context, in *insight.Insight) error {
	data, err := encodeData(in.SupportingData)
	if err != nil {
		return fmt.Errorf("encoding supporting data: %w", err)
	}

	query := `
		INSERT INTO insights (id, user_id, insight_type, severity, title, explanation, supporting_data, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = s.db.ExecContext(ctx, query,
		in.ID,
		in.UserID,
		in.Type,
		in.Severity,
		in.Title,
		in.Explanation,
		data,
		in.Status,
		in.CreatedAt,
		in.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating insight: %w", err)
	}

	return nil
}

func (s *Store) GetInsight(ctx context.Context, userID string, id uuid.UUID) (*insight.Insight, error) {
	query := `SELECT ` + selectInsightColumns + `
		FROM insights
		WHERE id = $1 AND user_id = $2`

	in, err := scanInsight(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, fmt.Errorf("getting insight: %w", err)
	}

	return in, nil
}

func (s *Store) UpdateInsight(ctx context.Context, in *insight.Insight) error {
	data, err := encodeData(in.SupportingData)
	if err != nil {
		return fmt.Errorf("encoding supporting data: %w", err)
	}

	query := `
		UPDATE insights
		SET status = $1, supporting_data = $2, resolved_at = $3, updated_at = $4
		WHERE id = $5 AND user_id = $6
	`

	res, err := s.db.ExecContext(ctx, query, in.Status, data, in.ResolvedAt, in.UpdatedAt, in.ID, in.UserID)
	if err != nil {
		return fmt.Errorf("updating insight: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating insight: %w", err)
	}

	if n == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (s *Store) ListInsights(ctx context.Context, filter insight.ListFilter) ([]*insight.Insight, error) {
	query := `SELECT ` + selectInsightColumns + ` FROM insights WHERE user_id = $1`

	args := []any{filter.UserID}
	argIdx := 2

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Type != nil {
		query += fmt.Sprintf(" AND insight_type = $%d", argIdx)

		args = append(args, *filter.Type)
		argIdx++
	}

	query += `
		ORDER BY CASE severity
			WHEN 'critical' THEN 4
			WHEN 'high' THEN 3
			WHEN 'medium' THEN 2
			WHEN 'low' THEN 1
			ELSE 0
		END DESC, created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing insights: %w", err)
	}
	defer rows.Close()

	var insights []*insight.Insight

	for rows.Next() {
		in, err := scanInsight(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning insight: %w", err)
		}

		insights = append(insights, in)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating insights: %w", err)
	}

	return insights, nil
}
