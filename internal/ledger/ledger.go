package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is a single signed ledger movement. Positive amounts are income, negative amounts are expenses.
type Entry struct {
	ID          uuid.UUID
	UserID      string
	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Amount      decimal.Decimal
	Description string
	Date        time.Time
	CreatedAt   time.Time
}

// Value returns the amount as a float for statistical work.
func (e *Entry) Value() float64 {
	return e.Amount.InexactFloat64()
}

// Period is the recurrence of a budget.
type Period string

const (
	PeriodWeekly    Period = "weekly"
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

// Budget is a spending limit for one category.
type Budget struct {
	ID           uuid.UUID
	UserID       string
	CategoryID   uuid.UUID
	CategoryName string
	Period       Period
	Amount       decimal.Decimal
	StartDate    time.Time
	EndDate      *time.Time
	IsActive     bool
}

// MonthlyAmount normalizes the budget limit to a month of the given length.
func (b *Budget) MonthlyAmount(daysInMonth int) float64 {
	amount := b.Amount.InexactFloat64()

	switch b.Period {
	case PeriodWeekly:
		return amount * float64(daysInMonth) / 7
	case PeriodQuarterly:
		return amount / 3
	case PeriodYearly:
		return amount / 12
	default:
		return amount
	}
}

// GoalStatus represents the lifecycle state of a savings goal.
type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalPaused    GoalStatus = "paused"
)

// Goal is a savings target.
type Goal struct {
	ID            uuid.UUID
	UserID        string
	Name          string
	TargetAmount  decimal.Decimal
	CurrentAmount decimal.Decimal
	TargetDate    *time.Time
	Status        GoalStatus
}
