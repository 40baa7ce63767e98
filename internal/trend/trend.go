package trend

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/metrics"
)

// PeriodType is the granularity of a trend period.
type PeriodType string

const (
	Daily   PeriodType = "daily"
	Weekly  PeriodType = "weekly"
	Monthly PeriodType = "monthly"
)

func (p PeriodType) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly:
		return true
	}

	return false
}

// Comparisons are income percentage changes against earlier periods of the same type.
type Comparisons struct {
	VsPreviousPeriod float64 `json:"vsPreviousPeriod"`
	Vs3MonthAverage  float64 `json:"vs3MonthAverage"`
	Vs6MonthAverage  float64 `json:"vs6MonthAverage"`
}

// Period is one materialized window. PeriodEnd is exclusive.
type Period struct {
	ID           uuid.UUID
	UserID       string
	PeriodType   PeriodType
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Metrics      metrics.PeriodMetrics
	Comparisons  Comparisons
	CalculatedAt time.Time
}
