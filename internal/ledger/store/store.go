package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order: id, user_id, account_id, category_id, amount, description, date, created_at
func scanEntry(s scanner) (*ledger.Entry, error) {
	var e ledger.Entry

	if err := s.Scan(
		&e.ID, &e.UserID, &e.AccountID, &e.CategoryID, &e.Amount, &e.Description, &e.Date, &e.CreatedAt,
	); err != nil {
		return nil, err
	}

	return &e, nil
}

const selectEntryColumns = `id, user_id, account_id, category_id, amount, description, date, created_at`

const insertEntry = `
	INSERT INTO ledger_entries (user_id, account_id, category_id, amount, description, date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, NOW())
	RETURNING id, created_at
`

func (s *Store) CreateEntry(ctx context.Context, e *ledger.Entry) error {
	err := s.db.QueryRowContext(ctx, insertEntry,
		e.UserID,
		e.AccountID,
		e.CategoryID,
		e.Amount,
		e.Description,
		e.Date,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating entry: %w", err)
	}

	return nil
}

func (s *Store) ListEntries(ctx context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + ` FROM ledger_entries WHERE user_id = $1`

	args := []any{filter.UserID}
	argIdx := 2

	if filter.CategoryID != nil {
		query += fmt.Sprintf(" AND category_id = $%d", argIdx)

		args = append(args, *filter.CategoryID)
		argIdx++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIdx)

		args = append(args, *filter.From)
		argIdx++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIdx)

		args = append(args, *filter.To)
		argIdx++
	}

	query += " ORDER BY date ASC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	defer rows.Close()

	var entries []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

// LatestEntry returns the most recent entry by date, or apperr.ErrNotFound when the user has none.
func (s *Store) LatestEntry(ctx context.Context, userID string) (*ledger.Entry, error) {
	query := `SELECT ` + selectEntryColumns + `
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT 1`

	e, err := scanEntry(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}

		return nil, fmt.Errorf("getting latest entry: %w", err)
	}

	return e, nil
}

func (s *Store) ListActiveBudgets(ctx context.Context, userID string) ([]*ledger.Budget, error) {
	query := `
		SELECT b.id, b.user_id, b.category_id, c.name, b.period, b.amount, b.start_date, b.end_date, b.is_active
		FROM budgets b
		JOIN categories c ON c.id = b.category_id
		WHERE b.user_id = $1 AND b.is_active
		ORDER BY c.name ASC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing budgets: %w", err)
	}
	defer rows.Close()

	var budgets []*ledger.Budget

	for rows.Next() {
		var b ledger.Budget

		var period string

		if err := rows.Scan(
			&b.ID, &b.UserID, &b.CategoryID, &b.CategoryName, &period, &b.Amount, &b.StartDate, &b.EndDate, &b.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scanning budget: %w", err)
		}

		b.Period = ledger.Period(period)
		budgets = append(budgets, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating budgets: %w", err)
	}

	return budgets, nil
}

func (s *Store) ListActiveGoals(ctx context.Context, userID string) ([]*ledger.Goal, error) {
	query := `
		SELECT id, user_id, name, target_amount, current_amount, target_date, status
		FROM goals
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, ledger.GoalActive)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	defer rows.Close()

	var goals []*ledger.Goal

	for rows.Next() {
		var g ledger.Goal

		var status string

		if err := rows.Scan(
			&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate, &status,
		); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}

		g.Status = ledger.GoalStatus(status)
		goals = append(goals, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating goals: %w", err)
	}

	return goals, nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var ids []string

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return ids, nil
}

func importLockKey(userID string, minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(userID))
	h.Write([]byte{0})
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction serialized against concurrent imports of the same user and date range.
func (s *Store) BeginImport(ctx context.Context, userID string, minDate, maxDate time.Time) (ledger.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", importLockKey(userID, minDate, maxDate)); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, userID string, params []ledger.CreateParams) ([]*ledger.Entry, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date        string
		Amount      string
		Description string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			Date:        p.Date.Format(time.DateOnly),
			Amount:      p.Amount.StringFixed(2),
			Description: p.Description,
		}] = struct{}{}
	}

	query := `SELECT ` + selectEntryColumns + `
		FROM ledger_entries
		WHERE user_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date ASC`

	rows, err := itx.tx.QueryContext(ctx, query, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*ledger.Entry

	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		k := lookupKey{
			Date:        e.Date.Format(time.DateOnly),
			Amount:      e.Amount.StringFixed(2),
			Description: e.Description,
		}
		if _, found := keySet[k]; !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateEntries(ctx context.Context, entries []*ledger.Entry) error {
	for _, e := range entries {
		err := itx.tx.QueryRowContext(ctx, insertEntry,
			e.UserID,
			e.AccountID,
			e.CategoryID,
			e.Amount,
			e.Description,
			e.Date,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return fmt.Errorf("creating entry: %w", err)
		}
	}

	return nil
}
