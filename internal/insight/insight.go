package insight

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies the rule that produced an insight.
type Type string

const (
	TypeSpendingSpike      Type = "spending_spike"
	TypeSavingsDrop        Type = "savings_drop"
	TypeBudgetLeakage      Type = "budget_leakage"
	TypeCategoryAnomaly    Type = "category_anomaly"
	TypeIncomeDip          Type = "income_dip"
	TypeDebtGrowth         Type = "debt_growth"
	TypeTransactionSilence Type = "transaction_silence"
	TypeGoalMilestone      Type = "goal_milestone"
	TypePositiveTrend      Type = "positive_trend"
)

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from low (1) to critical (4). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}

	return 0
}

type Status string

const (
	StatusActive    Status = "active"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
	StatusEscalated Status = "escalated"
)

// Insight is a detected pattern in a user's finances. Insights are never deleted,
// only moved out of the active status.
type Insight struct {
	ID             uuid.UUID      `json:"id"`
	UserID         string         `json:"userId"`
	Type           Type           `json:"insightType"`
	Severity       Severity       `json:"severity"`
	Title          string         `json:"title"`
	Explanation    string         `json:"explanation"`
	SupportingData map[string]any `json:"supportingData,omitempty"`
	Status         Status         `json:"status"`
	CreatedAt      time.Time      `json:"createdAt"`
	ResolvedAt     *time.Time     `json:"resolvedAt,omitempty"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Draft is an insight a rule wants to raise, before deduplication.
type Draft struct {
	Type           Type
	Severity       Severity
	Title          string
	Explanation    string
	SupportingData map[string]any
}
