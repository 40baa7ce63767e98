package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=ledger
type Repository interface {
	CreateEntry(ctx context.Context, e *Entry) error
	ListEntries(ctx context.Context, filter ListFilter) ([]*Entry, error)

	BeginImport(ctx context.Context, userID string, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, userID string, params []CreateParams) ([]*Entry, error)
	CreateEntries(ctx context.Context, entries []*Entry) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// ListFilter selects entries for one user. From and To are inclusive bounds.
type ListFilter struct {
	UserID     string
	CategoryID *uuid.UUID
	From       *time.Time
	To         *time.Time
	Limit      int
}

func (s *Service) Create(ctx context.Context, userID string, params CreateParams) (*Entry, error) {
	if userID == "" || params.AccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: user and account are required", apperr.ErrValidation)
	}

	if params.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", apperr.ErrValidation)
	}

	e := newEntry(userID, params)
	if err := s.repo.CreateEntry(ctx, e); err != nil {
		return nil, err
	}

	return e, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, filter)
}

type ImportResult struct {
	Imported []*Entry
	Skipped  []CreateParams
}

// Import inserts a batch of entries, skipping rows that already exist with the same
// account, date, amount and description.
func (s *Service) Import(ctx context.Context, userID string, params []CreateParams) (*ImportResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user is required", apperr.ErrValidation)
	}

	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, userID, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	seen := make(map[dupKey]struct{}, len(duplicates))
	for _, d := range duplicates {
		seen[keyOf(d.AccountID, d.Date, d.Amount, d.Description)] = struct{}{}
	}

	result := &ImportResult{}

	var entries []*Entry

	for _, p := range params {
		k := keyOf(p.AccountID, p.Date, p.Amount, p.Description)
		if _, found := seen[k]; found {
			result.Skipped = append(result.Skipped, p)
			continue
		}

		// Repeated rows inside the same file collapse as well.
		seen[k] = struct{}{}

		entries = append(entries, newEntry(userID, p))
	}

	if len(entries) > 0 {
		if err := itx.CreateEntries(ctx, entries); err != nil {
			return nil, fmt.Errorf("create entries: %w", err)
		}
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	result.Imported = entries

	return result, nil
}

type dupKey struct {
	AccountID   uuid.UUID
	Date        string
	Amount      string
	Description string
}

func keyOf(accountID uuid.UUID, date time.Time, amount decimal.Decimal, description string) dupKey {
	return dupKey{
		AccountID:   accountID,
		Date:        date.Format(time.DateOnly),
		Amount:      amount.StringFixed(2),
		Description: description,
	}
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func newEntry(userID string, p CreateParams) *Entry {
	return &Entry{
		UserID:      userID,
		AccountID:   p.AccountID,
		CategoryID:  p.CategoryID,
		Amount:      p.Amount,
		Description: p.Description,
		Date:        p.Date,
	}
}
