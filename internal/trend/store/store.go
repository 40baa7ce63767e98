package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/MrJamesThe3rd/finsight/internal/trend"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreatePeriods inserts all periods in one transaction.
func (s *Store) CreatePeriods(ctx context.Context, periods []*trend.Period) error {
	if len(periods) == 0 {
		return nil
	}

	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO trend_periods (id, user_id, period_type, period_start, period_end, metrics, comparisons, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	stmt, err := dbTx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range periods {
		m, err := json.Marshal(p.Metrics)
		if err != nil {
			return fmt.Errorf("encoding metrics: %w", err)
		}

		c, err := json.Marshal(p.Comparisons)
		if err != nil {
			return fmt.Errorf("encoding comparisons: %w", err)
		}

		if _, err := stmt.ExecContext(ctx, p.ID, p.UserID, p.PeriodType, p.PeriodStart, p.PeriodEnd, m, c, p.CalculatedAt); err != nil {
			return fmt.Errorf("creating period: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) ListPeriods(ctx context.Context, userID string, periodType trend.PeriodType, limit int) ([]*trend.Period, error) {
	query := `
		SELECT id, user_id, period_type, period_start, period_end, metrics, comparisons, calculated_at
		FROM trend_periods
		WHERE user_id = $1`

	args := []any{userID}

	if periodType != "" {
		query += " AND period_type = $2"

		args = append(args, periodType)
	}

	query += fmt.Sprintf(" ORDER BY calculated_at DESC, period_start DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing periods: %w", err)
	}
	defer rows.Close()

	var periods []*trend.Period

	for rows.Next() {
		var p trend.Period

		var typ string

		var m, c []byte

		if err := rows.Scan(&p.ID, &p.UserID, &typ, &p.PeriodStart, &p.PeriodEnd, &m, &c, &p.CalculatedAt); err != nil {
			return nil, fmt.Errorf("scanning period: %w", err)
		}

		if err := json.Unmarshal(m, &p.Metrics); err != nil {
			return nil, fmt.Errorf("decoding metrics: %w", err)
		}

		if err := json.Unmarshal(c, &p.Comparisons); err != nil {
			return nil, fmt.Errorf("decoding comparisons: %w", err)
		}

		p.PeriodType = trend.PeriodType(typ)
		periods = append(periods, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating periods: %w", err)
	}

	return periods, nil
}
