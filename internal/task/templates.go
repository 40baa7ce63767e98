package task

import (
	"strings"

	"github.com/MrJamesThe3rd/finsight/internal/insight"
)

type template struct {
	typ     Type
	actions []string
	// priority, when set, replaces the severity-derived default.
	priority Priority
}

var templates = map[insight.Type]template{
	insight.TypeSpendingSpike: {
		typ: TypeSpendingReview,
		actions: []string{
			"Review recent transactions to identify the source of the spike",
			"Consider if these are one-time expenses or new patterns",
			"Adjust budget categories if this becomes a new normal",
			"Set up spending alerts for future monitoring",
		},
	},
	insight.TypeSavingsDrop: {
		typ: TypeGoalReview,
		actions: []string{
			"Review recent expense increases",
			"Identify areas where spending can be reduced",
			"Consider increasing income sources",
			"Adjust savings goals if needed",
		},
	},
	insight.TypeBudgetLeakage: {
		typ: TypeBudgetAdjustment,
		actions: []string{
			"Review spending in the affected category",
			"Adjust budget allocations if needed",
			"Set up category-specific spending alerts",
			"Consider setting spending limits",
		},
	},
	insight.TypeIncomeDip: {
		typ: TypeSpendingReview,
		actions: []string{
			"Review income sources for stability",
			"Consider additional income streams",
			"Adjust budget to account for lower income",
			"Review and prioritize essential expenses",
		},
	},
	insight.TypeDebtGrowth: {
		typ: TypePaymentReminder,
		actions: []string{
			"Review debt payment strategy",
			"Consider debt consolidation options",
			"Ensure payments are going toward principal",
			"Review interest rates and refinancing opportunities",
		},
	},
	insight.TypeTransactionSilence: {
		typ: TypeAccountReview,
		actions: []string{
			"Check if transactions are being imported correctly",
			"Consider manual entry of recent transactions",
			"Review account connections",
			"Set up transaction reminders",
		},
		priority: PriorityLow,
	},
	insight.TypeCategoryAnomaly: {
		typ: TypeCategoryCleanup,
		actions: []string{
			"Review the transactions behind the unusual category totals",
			"Recategorize entries that landed in the wrong category",
			"Merge or split categories that no longer fit your spending",
			"Check the category budget still reflects reality",
		},
	},
}

var fallback = template{
	typ: TypeSpendingReview,
	actions: []string{
		"Review the insight and the transactions behind it",
		"Decide whether your budget or goals need adjusting",
		"Note any follow-up you want to revisit",
		"Resolve or dismiss the insight once handled",
	},
}

func templateFor(t insight.Type) template {
	if tpl, ok := templates[t]; ok {
		return tpl
	}

	return fallback
}

func (t template) describe(base string) string {
	var b strings.Builder

	b.WriteString(base)
	b.WriteString("\n\nSuggested actions:")

	for _, a := range t.actions {
		b.WriteString("\n• ")
		b.WriteString(a)
	}

	return b.String()
}

// PriorityFor maps an insight severity onto a task priority.
func PriorityFor(s insight.Severity) Priority {
	switch s {
	case insight.SeverityCritical:
		return PriorityUrgent
	case insight.SeverityHigh:
		return PriorityHigh
	case insight.SeverityLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}
