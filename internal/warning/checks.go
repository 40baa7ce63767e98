package warning

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/finsight/internal/insight"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	"github.com/MrJamesThe3rd/finsight/internal/metrics"
)

const (
	savingsHistoryMonths = 12
	savingsTrailMonths   = 3
	debtHistoryMonths    = 6
	debtCompareMonths    = 3

	debtPaymentMin = 50
	principalShare = 0.8
)

// EstimatePrincipal assumes 80% of a large payment reduces principal, unless its
// description marks it as interest or a fee.
func EstimatePrincipal(e *ledger.Entry) float64 {
	desc := strings.ToLower(e.Description)
	if strings.Contains(desc, "interest") || strings.Contains(desc, "fee") {
		return 0
	}

	return math.Abs(e.Value()) * principalShare
}

func budgetOverruns(now time.Time, budgets []*ledger.Budget, entries []*ledger.Entry) []insight.Draft {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()
	elapsed := now.Day()

	spending := metrics.CategorySpending(metrics.Since(entries, monthStart))

	var drafts []insight.Draft

	for _, b := range budgets {
		if b.StartDate.After(now) || (b.EndDate != nil && b.EndDate.Before(monthStart)) {
			continue
		}

		limit := b.MonthlyAmount(daysInMonth)
		if limit <= 0 {
			continue
		}

		current := spending[b.CategoryID]
		projected := current / float64(elapsed) * float64(daysInMonth)
		overage := projected - limit
		pct := overage / limit * 100

		severity, ok := overrunSeverity(pct)
		if !ok {
			continue
		}

		name := b.CategoryName
		if name == "" {
			name = "Category " + b.CategoryID.String()
		}

		remaining := daysInMonth - elapsed

		drafts = append(drafts, insight.Draft{
			Type:     insight.TypeBudgetLeakage,
			Severity: severity,
			Title:    "Projected Budget Overrun: " + name,
			Explanation: fmt.Sprintf(
				"Based on your current spending pace, you're projected to exceed your %s budget by %.1f%% (%.2f) by the end of the month. "+
					"With %d days remaining, consider adjusting your spending or budget allocation.",
				name, pct, overage, remaining,
			),
			SupportingData: map[string]any{
				"categoryId":        b.CategoryID.String(),
				"categoryName":      name,
				"currentSpending":   current,
				"projectedTotal":    projected,
				"budgetAmount":      limit,
				"overage":           overage,
				"overagePercentage": pct,
				"daysRemaining":     remaining,
			},
		})
	}

	return drafts
}

func overrunSeverity(pct float64) (insight.Severity, bool) {
	switch {
	case pct > 50:
		return insight.SeverityCritical, true
	case pct > 25:
		return insight.SeverityHigh, true
	case pct > 10:
		return insight.SeverityMedium, true
	default:
		return "", false
	}
}

// savingsDepletion approximates the savings balance as the net of the last twelve
// months, floored at zero. Entries carry no account balances.
func savingsDepletion(now time.Time, entries []*ledger.Entry) (insight.Draft, bool) {
	trailing := metrics.Since(entries, now.AddDate(0, -savingsTrailMonths, 0))
	avg := metrics.Mean(metrics.MonthlySavings(trailing))

	burn := math.Max(0, -avg)
	if burn == 0 {
		return insight.Draft{}, false
	}

	balance := math.Max(0, metrics.Aggregate(entries).SavingsTotal)
	runway := balance / burn

	var severity insight.Severity

	switch {
	case runway < 1:
		severity = insight.SeverityCritical
	case runway < 3:
		severity = insight.SeverityHigh
	case runway < 6:
		severity = insight.SeverityMedium
	default:
		return insight.Draft{}, false
	}

	depletion := now.AddDate(0, 0, int(math.Round(runway*30)))

	return insight.Draft{
		Type:     insight.TypeSavingsDrop,
		Severity: severity,
		Title:    "Savings Depletion Warning",
		Explanation: fmt.Sprintf(
			"At your current savings rate, your savings are projected to run out in %.1f months (around %s). "+
				"Consider increasing income or reducing expenses to extend your runway.",
			runway, depletion.Format("Jan 2, 2006"),
		),
		SupportingData: map[string]any{
			"currentSavings":         balance,
			"monthlyBurnRate":        burn,
			"monthsOfRunway":         runway,
			"projectedDepletionDate": depletion.Format(time.DateOnly),
			"recommendedActions":     savingsRecommendations(runway, burn),
		},
	}, true
}

func savingsRecommendations(runway, burn float64) []string {
	var out []string

	switch {
	case runway < 1:
		out = append(out,
			"Immediate action required: Consider emergency expense reduction",
			"Look into temporary income increases",
		)
	case runway < 3:
		out = append(out,
			"Review and reduce non-essential expenses",
			"Consider temporarily pausing some financial goals",
		)
	case runway < 6:
		out = append(out,
			"Optimize budget allocations",
			"Look for subscription and recurring payment optimization",
		)
	}

	if burn > 1000 {
		out = append(out, "High monthly burn rate detected - review major expense categories")
	}

	return out
}

type debtMonth struct {
	payments  float64
	reduction float64
}

// debtStagnation compares the last three months with data against the three before them.
func debtStagnation(now time.Time, entries []*ledger.Entry, principal PrincipalEstimator) (insight.Draft, bool) {
	months := make(map[string]*debtMonth)

	for _, e := range metrics.Since(entries, now.AddDate(0, -debtHistoryMonths, 0)) {
		key := e.Date.Format("2006-01")

		m, ok := months[key]
		if !ok {
			m = &debtMonth{}
			months[key] = m
		}

		v := e.Value()
		if v < 0 && math.Abs(v) > debtPaymentMin {
			m.payments += math.Abs(v)
			m.reduction += principal(e)
		}
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	if len(keys) <= debtCompareMonths {
		return insight.Draft{}, false
	}

	recent := keys[len(keys)-debtCompareMonths:]
	older := keys[max(0, len(keys)-2*debtCompareMonths) : len(keys)-debtCompareMonths]

	recentPay, recentRed := averageDebt(months, recent)
	olderPay, olderRed := averageDebt(months, older)

	var paymentIncrease, reductionDecrease, efficiency float64
	if olderPay > 0 {
		paymentIncrease = (recentPay - olderPay) / olderPay * 100
	}

	if olderRed > 0 {
		reductionDecrease = (recentRed - olderRed) / olderRed * 100
	}

	if recentPay > 0 {
		efficiency = recentRed / recentPay * 100
	}

	stagnant := reductionDecrease < -10

	var severity insight.Severity

	switch {
	case stagnant && paymentIncrease > 20 && reductionDecrease < -20:
		severity = insight.SeverityHigh
	case stagnant && paymentIncrease > 10:
		severity = insight.SeverityMedium
	default:
		return insight.Draft{}, false
	}

	return insight.Draft{
		Type:     insight.TypeDebtGrowth,
		Severity: severity,
		Title:    "Debt Payment Inefficiency Detected",
		Explanation: fmt.Sprintf(
			"Your debt payments have increased by %.1f%%, but debt reduction has decreased by %.1f%%. "+
				"This suggests payment inefficiency - consider reviewing your payment strategy and ensuring payments are going toward principal reduction.",
			paymentIncrease, math.Abs(reductionDecrease),
		),
		SupportingData: map[string]any{
			"debtPayments":       recentPay,
			"debtReduction":      recentRed,
			"paymentIncrease":    paymentIncrease,
			"reductionDecrease":  reductionDecrease,
			"paymentEfficiency":  efficiency,
			"stagnationMonths":   1,
			"recommendedActions": debtRecommendations(paymentIncrease, reductionDecrease, efficiency),
		},
	}, true
}

func averageDebt(months map[string]*debtMonth, keys []string) (payments, reduction float64) {
	for _, k := range keys {
		payments += months[k].payments
		reduction += months[k].reduction
	}

	n := float64(len(keys))

	return payments / n, reduction / n
}

func debtRecommendations(paymentIncrease, reductionDecrease, efficiency float64) []string {
	var out []string

	if paymentIncrease > 20 && reductionDecrease < -20 {
		out = append(out,
			"Review debt payment strategy - ensure payments are reducing principal",
			"Consider debt consolidation or refinancing options",
		)
	}

	if efficiency < 50 {
		out = append(out,
			"High payment inefficiency detected - check for fees or interest-only payments",
			"Prioritize high-interest debt reduction",
		)
	}

	return append(out, "Review debt payment allocation and timing")
}
