// Package health computes the composite 0-100 financial health score.
package health

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// State is the qualitative band a score falls into.
type State string

const (
	StateStable    State = "stable"
	StateImproving State = "improving"
	StateDrifting  State = "drifting"
	StateAtRisk    State = "at_risk"
)

// Trend compares a score with the previous snapshot.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// Component weights. They sum to 1.
const (
	weightSavingsRate       = 0.25
	weightBudgetAdherence   = 0.25
	weightIncomeStability   = 0.20
	weightExpenseVolatility = 0.15
	weightGoalProgress      = 0.15
)

// trendThreshold is the score delta beyond which the trend is no longer stable.
const trendThreshold = 5

// Components are the five sub-scores, each in [0,100].
type Components struct {
	SavingsRate       float64 `json:"savingsRate"`
	BudgetAdherence   float64 `json:"budgetAdherence"`
	IncomeStability   float64 `json:"incomeStability"`
	ExpenseVolatility float64 `json:"expenseVolatility"`
	GoalProgress      float64 `json:"goalProgress"`
}

// Snapshot is one persisted score calculation. Snapshots are append-only.
type Snapshot struct {
	ID             uuid.UUID
	UserID         string
	Score          int
	HealthState    State
	TrendDirection Trend
	Components     Components
	CalculatedAt   time.Time
}

// Result is returned to callers of Calculate.
type Result struct {
	Score          int        `json:"score"`
	HealthState    State      `json:"healthState"`
	TrendDirection Trend      `json:"trendDirection"`
	Components     Components `json:"components"`
	PreviousScore  *int       `json:"previousScore,omitempty"`
}

// Score returns the rounded weighted sum of the components.
func Score(c Components) int {
	weighted := c.SavingsRate*weightSavingsRate +
		c.BudgetAdherence*weightBudgetAdherence +
		c.IncomeStability*weightIncomeStability +
		c.ExpenseVolatility*weightExpenseVolatility +
		c.GoalProgress*weightGoalProgress

	return int(math.Round(weighted))
}

// Direction compares score with the previous one. A nil previous means no history.
func Direction(score int, previous *int) Trend {
	if previous == nil {
		return TrendStable
	}

	delta := score - *previous

	switch {
	case delta > trendThreshold:
		return TrendImproving
	case delta < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// StateFor maps a score and trend to a state. A declining trend between 60 and 80
// has no branch of its own and lands on drifting.
func StateFor(score int, trend Trend) State {
	switch {
	case score >= 80:
		return StateStable
	case score >= 60 && trend == TrendImproving:
		return StateImproving
	case score >= 40:
		return StateDrifting
	default:
		return StateAtRisk
	}
}
