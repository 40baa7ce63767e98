// Package metrics turns ledger entries into period totals and provides the shared
// statistics used by the scoring and detection engines. Everything here is pure.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finsight/internal/ledger"
)

// PeriodMetrics are the aggregated totals of one window.
type PeriodMetrics struct {
	IncomeTotal        float64 `json:"incomeTotal"`
	ExpenseTotal       float64 `json:"expenseTotal"`
	SavingsTotal       float64 `json:"savingsTotal"`
	SavingsRate        float64 `json:"savingsRate"`
	TransactionCount   int     `json:"transactionCount"`
	AverageTransaction float64 `json:"averageTransaction"`
}

var hundred = decimal.NewFromInt(100)

// Aggregate sums the entries exactly and converts to floats once at the end, so the
// result does not depend on the order of the input.
func Aggregate(entries []*ledger.Entry) PeriodMetrics {
	income := decimal.Zero
	expense := decimal.Zero
	absolute := decimal.Zero

	for _, e := range entries {
		switch e.Amount.Sign() {
		case 1:
			income = income.Add(e.Amount)
		case -1:
			expense = expense.Add(e.Amount.Abs())
		}

		absolute = absolute.Add(e.Amount.Abs())
	}

	savings := income.Sub(expense)

	m := PeriodMetrics{
		IncomeTotal:      income.InexactFloat64(),
		ExpenseTotal:     expense.InexactFloat64(),
		SavingsTotal:     savings.InexactFloat64(),
		TransactionCount: len(entries),
	}

	if income.IsPositive() {
		m.SavingsRate = savings.Div(income).Mul(hundred).InexactFloat64()
	}

	if len(entries) > 0 {
		m.AverageTransaction = absolute.Div(decimal.NewFromInt(int64(len(entries)))).InexactFloat64()
	}

	return m
}

// PercentageChange compares income totals. A zero previous income yields 0.
func PercentageChange(current, previous PeriodMetrics) float64 {
	if previous.IncomeTotal == 0 {
		return 0
	}

	return (current.IncomeTotal - previous.IncomeTotal) / math.Abs(previous.IncomeTotal) * 100
}

// RelativeChange returns (current-baseline)/baseline*100, or 0 for a zero baseline.
func RelativeChange(current, baseline float64) float64 {
	if baseline == 0 {
		return 0
	}

	return (current - baseline) / baseline * 100
}

// Average returns the field-wise mean of the given periods.
func Average(periods []PeriodMetrics) PeriodMetrics {
	if len(periods) == 0 {
		return PeriodMetrics{}
	}

	var avg PeriodMetrics

	var count float64

	for _, p := range periods {
		avg.IncomeTotal += p.IncomeTotal
		avg.ExpenseTotal += p.ExpenseTotal
		avg.SavingsTotal += p.SavingsTotal
		avg.SavingsRate += p.SavingsRate
		avg.AverageTransaction += p.AverageTransaction
		count += float64(p.TransactionCount)
	}

	n := float64(len(periods))
	avg.IncomeTotal /= n
	avg.ExpenseTotal /= n
	avg.SavingsTotal /= n
	avg.SavingsRate /= n
	avg.AverageTransaction /= n
	avg.TransactionCount = int(math.Round(count / n))

	return avg
}

// Mean returns the arithmetic mean, or 0 for no values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// CoefficientOfVariation is the population standard deviation divided by the mean.
// It returns 0 when the mean is 0.
func CoefficientOfVariation(values []float64) float64 {
	mean := Mean(values)
	if mean == 0 {
		return 0
	}

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}

	variance /= float64(len(values))

	return math.Sqrt(variance) / mean
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Between returns the entries with from <= date < to.
func Between(entries []*ledger.Entry, from, to time.Time) []*ledger.Entry {
	var out []*ledger.Entry

	for _, e := range entries {
		if e.Date.Before(from) || !e.Date.Before(to) {
			continue
		}

		out = append(out, e)
	}

	return out
}

// Since returns the entries dated at or after from.
func Since(entries []*ledger.Entry, from time.Time) []*ledger.Entry {
	var out []*ledger.Entry

	for _, e := range entries {
		if !e.Date.Before(from) {
			out = append(out, e)
		}
	}

	return out
}

// MonthlyIncome sums positive amounts per calendar month, oldest month first.
func MonthlyIncome(entries []*ledger.Entry) []float64 {
	return groupSums(entries, monthKey, func(e *ledger.Entry) (float64, bool) {
		v := e.Value()
		return v, v > 0
	})
}

// MonthlyExpenses sums absolute negative amounts per calendar month, oldest month first.
func MonthlyExpenses(entries []*ledger.Entry) []float64 {
	return groupSums(entries, monthKey, expenseValue)
}

// MonthlySavings nets income against expenses per calendar month, oldest month first.
func MonthlySavings(entries []*ledger.Entry) []float64 {
	return groupSums(entries, monthKey, func(e *ledger.Entry) (float64, bool) {
		return e.Value(), true
	})
}

// DailyExpenses sums absolute negative amounts per calendar day, oldest day first.
func DailyExpenses(entries []*ledger.Entry) []float64 {
	return groupSums(entries, dayKey, expenseValue)
}

// CategorySpending sums absolute negative amounts per category. Uncategorized entries are ignored.
func CategorySpending(entries []*ledger.Entry) map[uuid.UUID]float64 {
	out := make(map[uuid.UUID]float64)

	for _, e := range entries {
		if e.CategoryID == nil || !e.Amount.IsNegative() {
			continue
		}

		out[*e.CategoryID] += e.Amount.Abs().InexactFloat64()
	}

	return out
}

// DebtPayments sums expenses whose magnitude exceeds minAmount. Large outflows stand in
// for debt payments because entries carry no debt tag.
func DebtPayments(entries []*ledger.Entry, minAmount float64) float64 {
	var total float64

	for _, e := range entries {
		v := e.Value()
		if v < 0 && math.Abs(v) > minAmount {
			total += math.Abs(v)
		}
	}

	return total
}

func monthKey(t time.Time) string { return t.Format("2006-01") }
func dayKey(t time.Time) string   { return t.Format(time.DateOnly) }

func expenseValue(e *ledger.Entry) (float64, bool) {
	v := e.Value()
	return math.Abs(v), v < 0
}

func groupSums(entries []*ledger.Entry, key func(time.Time) string, value func(*ledger.Entry) (float64, bool)) []float64 {
	sums := make(map[string]float64)

	for _, e := range entries {
		v, ok := value(e)
		if !ok {
			continue
		}

		sums[key(e.Date)] += v
	}

	keys := make([]string, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = sums[k]
	}

	return out
}
