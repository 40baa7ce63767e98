package signal

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/insight"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	"github.com/MrJamesThe3rd/finsight/internal/metrics"
)

const (
	currentDays    = 30
	comparisonDays = 90
	historicalDays = 180

	// comparisonScale brings the 60-day comparison window's totals to a 30-day equivalent.
	comparisonScale = float64(currentDays) / float64(comparisonDays-currentDays)

	debtPaymentMin = 100
	silenceDays    = 7
)

type windows struct {
	now        time.Time
	current    []*ledger.Entry
	comparison []*ledger.Entry
	historical []*ledger.Entry
	latest     *ledger.Entry
}

type rule struct {
	typ      insight.Type
	severity insight.Severity
	title    string
	check    func(w *windows) (map[string]any, string, bool)
}

// rules are evaluated in order, every call, independently of each other.
var rules = []rule{
	{typ: insight.TypeSpendingSpike, severity: insight.SeverityHigh, title: "Spending Spike", check: spendingSpike},
	{typ: insight.TypeSavingsDrop, severity: insight.SeverityCritical, title: "Savings Rate Drop", check: savingsDrop},
	{typ: insight.TypeBudgetLeakage, severity: insight.SeverityMedium, title: "Budget Leakage", check: budgetLeakage},
	{typ: insight.TypeIncomeDip, severity: insight.SeverityHigh, title: "Income Dip", check: incomeDip},
	{typ: insight.TypeDebtGrowth, severity: insight.SeverityMedium, title: "Debt Growth", check: debtGrowth},
	{typ: insight.TypeTransactionSilence, severity: insight.SeverityLow, title: "Transaction Silence", check: transactionSilence},
}

func evaluate(w *windows) []insight.Draft {
	var drafts []insight.Draft

	for _, r := range rules {
		data, explanation, fired := r.check(w)
		if !fired {
			continue
		}

		drafts = append(drafts, insight.Draft{
			Type:           r.typ,
			Severity:       r.severity,
			Title:          r.title,
			Explanation:    explanation,
			SupportingData: data,
		})
	}

	return drafts
}

func spendingSpike(w *windows) (map[string]any, string, bool) {
	current := metrics.Aggregate(w.current).ExpenseTotal
	average := metrics.Mean(metrics.MonthlyExpenses(w.historical))

	if average <= 0 {
		return nil, "", false
	}

	increase := metrics.RelativeChange(current, average)
	if increase <= 30 {
		return nil, "", false
	}

	data := map[string]any{
		"currentSpending":    current,
		"historicalAverage":  average,
		"percentageIncrease": increase,
	}

	return data, fmt.Sprintf(
		"Your spending increased by %.1f%% compared to your recent average. "+
			"This spike may indicate unusual expenses or a change in spending patterns that warrants attention.",
		increase,
	), true
}

func savingsDrop(w *windows) (map[string]any, string, bool) {
	current := metrics.Aggregate(w.current)
	previous := metrics.Aggregate(w.comparison).SavingsRate

	if previous <= 0 {
		return nil, "", false
	}

	drop := (previous - current.SavingsRate) / previous * 100
	if drop <= 20 {
		return nil, "", false
	}

	data := map[string]any{
		"currentSavingsRate":  current.SavingsRate,
		"previousSavingsRate": previous,
		"relativeDrop":        drop,
		"income":              current.IncomeTotal,
		"expenses":            current.ExpenseTotal,
	}

	return data, fmt.Sprintf(
		"Your savings rate dropped from %.1f%% to %.1f%%. "+
			"This significant decrease could impact your financial goals and should be addressed.",
		previous, current.SavingsRate,
	), true
}

func budgetLeakage(w *windows) (map[string]any, string, bool) {
	current := metrics.CategorySpending(w.current)
	typical := metrics.CategorySpending(w.comparison)

	var categories []map[string]any

	for id, spend := range current {
		baseline := typical[id] * comparisonScale
		if baseline <= 0 {
			continue
		}

		increase := metrics.RelativeChange(spend, baseline)
		if increase <= 50 {
			continue
		}

		categories = append(categories, map[string]any{
			"categoryId":         id.String(),
			"currentSpending":    spend,
			"typicalSpending":    baseline,
			"percentageIncrease": increase,
		})
	}

	if len(categories) == 0 {
		return nil, "", false
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i]["categoryId"].(string) < categories[j]["categoryId"].(string)
	})

	return map[string]any{"categories": categories},
		"You've exceeded your typical spending in certain categories. " +
			"Review your recent expenses to identify any unusual purchases or budget adjustments needed.",
		true
}

func incomeDip(w *windows) (map[string]any, string, bool) {
	current := metrics.Aggregate(w.current).IncomeTotal
	previous := metrics.Aggregate(w.comparison).IncomeTotal * comparisonScale

	if previous <= 0 {
		return nil, "", false
	}

	decrease := (previous - current) / previous * 100
	if decrease <= 20 {
		return nil, "", false
	}

	data := map[string]any{
		"currentIncome":      current,
		"previousIncome":     previous,
		"percentageDecrease": decrease,
	}

	return data, fmt.Sprintf(
		"Your income decreased by %.1f%% compared to the previous period. "+
			"This decline may require adjusting your budget or financial planning.",
		decrease,
	), true
}

func debtGrowth(w *windows) (map[string]any, string, bool) {
	current := metrics.DebtPayments(w.current, debtPaymentMin)
	previous := metrics.DebtPayments(w.comparison, debtPaymentMin) * comparisonScale

	if previous <= 0 {
		return nil, "", false
	}

	increase := metrics.RelativeChange(current, previous)
	if increase <= 15 {
		return nil, "", false
	}

	data := map[string]any{
		"currentDebtPayments":  current,
		"previousDebtPayments": previous,
		"percentageIncrease":   increase,
	}

	return data, "Your debt payments have increased significantly. " +
		"While paying down debt is positive, ensure this aligns with your overall debt reduction strategy.", true
}

func transactionSilence(w *windows) (map[string]any, string, bool) {
	if w.latest == nil {
		return map[string]any{"daysSinceLastTransaction": nil},
			"No financial transactions have been recorded yet. " +
				"Add or import your transactions so your finances can be analyzed.",
			true
	}

	days := int(math.Floor(w.now.Sub(w.latest.Date).Hours() / 24))
	if days <= silenceDays {
		return nil, "", false
	}

	data := map[string]any{
		"daysSinceLastTransaction": days,
		"lastTransactionDate":      w.latest.Date.Format(time.DateOnly),
	}

	return data, fmt.Sprintf(
		"No financial transactions have been recorded for %d days. "+
			"This may indicate you're not tracking expenses or there could be an issue with data import.",
		days,
	), true
}
