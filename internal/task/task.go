package task

import (
	"time"

	"github.com/google/uuid"
)

// Type categorizes the follow-up work a task asks for.
type Type string

const (
	TypeBudgetAdjustment Type = "budget_adjustment"
	TypeGoalReview       Type = "goal_review"
	TypeSpendingReview   Type = "spending_review"
	TypePaymentReminder  Type = "payment_reminder"
	TypeAccountReview    Type = "account_review"
	TypeCategoryCleanup  Type = "category_cleanup"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Rank orders priorities from low (1) to urgent (4). Unknown priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	default:
		return 0
	}
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDismissed  Status = "dismissed"
	StatusArchived   Status = "archived"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusCompleted, StatusDismissed, StatusArchived:
		return true
	default:
		return false
	}
}

type Task struct {
	ID              uuid.UUID  `json:"id"`
	UserID          string     `json:"userId"`
	SourceInsightID *uuid.UUID `json:"sourceInsightId,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Type            Type       `json:"taskType"`
	Priority        Priority   `json:"priority"`
	Status          Status     `json:"status"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Statistics summarizes a user's tasks.
type Statistics struct {
	Total      int              `json:"total"`
	Open       int              `json:"open"`
	InProgress int              `json:"inProgress"`
	Completed  int              `json:"completed"`
	Overdue    int              `json:"overdue"`
	ByPriority map[Priority]int `json:"byPriority"`
	ByType     map[Type]int     `json:"byType"`
}
