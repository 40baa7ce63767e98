package warning_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
	"github.com/MrJamesThe3rd/finsight/internal/insight/insighttest"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	"github.com/MrJamesThe3rd/finsight/internal/warning"
)

func entry(amount string, date time.Time) *ledger.Entry {
	return &ledger.Entry{Amount: decimal.RequireFromString(amount), Date: date}
}

func spend(amount string, date time.Time, category uuid.UUID) *ledger.Entry {
	e := entry(amount, date)
	e.CategoryID = &category

	return e
}

func payment(amount, description string, date time.Time) *ledger.Entry {
	e := entry(amount, date)
	e.Description = description

	return e
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 9, 0, 0, 0, time.UTC)
}

func ofType(drafts []insight.Draft, typ insight.Type) []insight.Draft {
	var out []insight.Draft

	for _, d := range drafts {
		if d.Type == typ {
			out = append(out, d)
		}
	}

	return out
}

func detect(t *testing.T, now time.Time, entries []*ledger.Entry, budgets []*ledger.Budget, opts ...warning.Option) []insight.Draft {
	t.Helper()

	ctrl := gomock.NewController(t)
	l := warning.NewMockLedgerReader(ctrl)
	l.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(entries, nil)
	l.EXPECT().ListActiveBudgets(gomock.Any(), "user-1").Return(budgets, nil)

	opts = append(opts, warning.WithClock(func() time.Time { return now }))
	sys := warning.NewSystem(l, warning.NewMockRecorder(ctrl), opts...)

	drafts, err := sys.Detect(context.Background(), "user-1")
	require.NoError(t, err)

	return drafts
}

func TestSystem_BudgetOverruns(t *testing.T) {
	// June has 30 days; 22 have elapsed.
	now := time.Date(2024, 6, 22, 12, 0, 0, 0, time.UTC)

	groceries, dining, transport, expired, unnamed := uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()
	mayEnd := date(2024, 5, 31)

	budgets := []*ledger.Budget{
		{CategoryID: groceries, CategoryName: "Groceries", Period: ledger.PeriodMonthly, Amount: decimal.NewFromInt(420)},
		{CategoryID: dining, CategoryName: "Dining", Period: ledger.PeriodMonthly, Amount: decimal.NewFromInt(300)},
		{CategoryID: transport, CategoryName: "Transport", Period: ledger.PeriodWeekly, Amount: decimal.NewFromInt(70)},
		{CategoryID: expired, CategoryName: "Travel", Period: ledger.PeriodMonthly, Amount: decimal.NewFromInt(100), EndDate: &mayEnd},
		{CategoryID: unnamed, Period: ledger.PeriodMonthly, Amount: decimal.NewFromInt(100)},
	}

	entries := []*ledger.Entry{
		spend("-500", date(2024, 5, 30), groceries),
		spend("-308", date(2024, 6, 10), groceries),
		spend("-440", date(2024, 6, 5), dining),
		spend("-330", date(2024, 6, 12), transport),
		spend("-1000", date(2024, 6, 2), expired),
		spend("-200", date(2024, 6, 3), unnamed),
	}

	got := ofType(detect(t, now, entries, budgets), insight.TypeBudgetLeakage)
	require.Len(t, got, 3)

	assert.Equal(t, "Projected Budget Overrun: Dining", got[0].Title)
	assert.Equal(t, insight.SeverityCritical, got[0].Severity)
	assert.InDelta(t, 600, got[0].SupportingData["projectedTotal"], 1e-9)
	assert.InDelta(t, 100, got[0].SupportingData["overagePercentage"], 1e-9)
	assert.Equal(t, 8, got[0].SupportingData["daysRemaining"])
	assert.Contains(t, got[0].Explanation, "by 100.0% (300.00)")

	assert.Equal(t, "Projected Budget Overrun: Transport", got[1].Title)
	assert.Equal(t, insight.SeverityHigh, got[1].Severity)
	assert.InDelta(t, 300, got[1].SupportingData["budgetAmount"], 1e-9)
	assert.InDelta(t, 50, got[1].SupportingData["overagePercentage"], 1e-9)

	assert.Equal(t, "Projected Budget Overrun: Category "+unnamed.String(), got[2].Title)
}

func TestSystem_BudgetOnPace(t *testing.T) {
	now := time.Date(2024, 6, 22, 12, 0, 0, 0, time.UTC)
	groceries := uuid.New()

	budgets := []*ledger.Budget{
		{CategoryID: groceries, CategoryName: "Groceries", Period: ledger.PeriodMonthly, Amount: decimal.NewFromInt(420)},
	}

	entries := []*ledger.Entry{
		spend("-308", date(2024, 6, 10), groceries),
	}

	assert.Empty(t, ofType(detect(t, now, entries, budgets), insight.TypeBudgetLeakage))
}

func TestSystem_SavingsDepletion(t *testing.T) {
	now := time.Date(2024, 6, 22, 12, 0, 0, 0, time.UTC)

	burning := func(bonus, monthly string) []*ledger.Entry {
		var entries []*ledger.Entry
		if bonus != "" {
			entries = append(entries, entry(bonus, date(2023, 8, 1)))
		}

		for _, m := range []time.Month{time.April, time.May, time.June} {
			entries = append(entries, entry(monthly, date(2024, m, 1)))
		}

		return entries
	}

	type testCase struct {
		name         string
		entries      []*ledger.Entry
		wantSeverity insight.Severity
		wantRunway   float64
		wantActions  int
		wantDate     string
	}

	tests := []testCase{
		{
			name:         "TwoMonthsLeft",
			entries:      burning("10000", "-2000"),
			wantSeverity: insight.SeverityHigh,
			wantRunway:   2,
			wantActions:  3,
			wantDate:     "2024-08-21",
		},
		{
			name:         "NothingSaved",
			entries:      burning("", "-800"),
			wantSeverity: insight.SeverityCritical,
			wantRunway:   0,
			wantActions:  2,
			wantDate:     "2024-06-22",
		},
		{
			name:         "ThreeMonthsLeft",
			entries:      burning("18000", "-3000"),
			wantSeverity: insight.SeverityMedium,
			wantRunway:   3,
			wantActions:  3,
			wantDate:     "2024-09-20",
		},
		{
			name:    "LongRunway",
			entries: burning("30000", "-1000"),
		},
		{
			name: "SavingMoney",
			entries: []*ledger.Entry{
				entry("3000", date(2024, 5, 1)),
				entry("-1000", date(2024, 5, 2)),
				entry("3000", date(2024, 6, 1)),
				entry("-1000", date(2024, 6, 2)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ofType(detect(t, now, tt.entries, nil), insight.TypeSavingsDrop)

			if tt.wantSeverity == "" {
				assert.Empty(t, got)
				return
			}

			require.Len(t, got, 1)
			assert.Equal(t, "Savings Depletion Warning", got[0].Title)
			assert.Equal(t, tt.wantSeverity, got[0].Severity)
			assert.InDelta(t, tt.wantRunway, got[0].SupportingData["monthsOfRunway"], 1e-9)
			assert.Equal(t, tt.wantDate, got[0].SupportingData["projectedDepletionDate"])
			assert.Len(t, got[0].SupportingData["recommendedActions"], tt.wantActions)
		})
	}
}

func TestSystem_DebtStagnation(t *testing.T) {
	now := time.Date(2024, 7, 20, 12, 0, 0, 0, time.UTC)

	ledgerWith := func(principal, interest string) []*ledger.Entry {
		var entries []*ledger.Entry

		for _, m := range []time.Month{time.February, time.March, time.April} {
			entries = append(entries, payment("-500", "Loan payment", date(2024, m, 5)))
		}

		for _, m := range []time.Month{time.May, time.June, time.July} {
			entries = append(entries,
				payment(principal, "Loan payment", date(2024, m, 5)),
				payment(interest, "Loan interest", date(2024, m, 5)),
			)
		}

		return entries
	}

	type testCase struct {
		name         string
		entries      []*ledger.Entry
		opts         []warning.Option
		wantSeverity insight.Severity
		wantActions  int
	}

	tests := []testCase{
		{
			name:         "PaymentsUpPrincipalDown",
			entries:      ledgerWith("-350", "-300"),
			wantSeverity: insight.SeverityHigh,
			wantActions:  5,
		},
		{
			name:         "ModerateInefficiency",
			entries:      ledgerWith("-400", "-250"),
			wantSeverity: insight.SeverityMedium,
			wantActions:  3,
		},
		{
			name:    "PrincipalTracksPayments",
			entries: ledgerWith("-350", "-300"),
			opts: []warning.Option{warning.WithPrincipalEstimator(func(e *ledger.Entry) float64 {
				return e.Amount.Abs().InexactFloat64() * 0.8
			})},
		},
		{
			name: "TooLittleHistory",
			entries: []*ledger.Entry{
				payment("-500", "Loan payment", date(2024, 5, 5)),
				payment("-900", "Loan interest", date(2024, 6, 5)),
				payment("-900", "Loan interest", date(2024, 7, 5)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ofType(detect(t, now, tt.entries, nil, tt.opts...), insight.TypeDebtGrowth)

			if tt.wantSeverity == "" {
				assert.Empty(t, got)
				return
			}

			require.Len(t, got, 1)
			assert.Equal(t, "Debt Payment Inefficiency Detected", got[0].Title)
			assert.Equal(t, tt.wantSeverity, got[0].Severity)
			assert.InDelta(t, 30, got[0].SupportingData["paymentIncrease"], 1e-9)
			assert.Len(t, got[0].SupportingData["recommendedActions"], tt.wantActions)
		})
	}
}

func TestEstimatePrincipal(t *testing.T) {
	assert.InDelta(t, 400, warning.EstimatePrincipal(payment("-500", "Mortgage", date(2024, 1, 1))), 1e-9)
	assert.Zero(t, warning.EstimatePrincipal(payment("-60", "Card INTEREST charge", date(2024, 1, 1))))
	assert.Zero(t, warning.EstimatePrincipal(payment("-75", "Late fee", date(2024, 1, 1))))
}

func TestSystem_Generate(t *testing.T) {
	now := time.Date(2024, 6, 22, 12, 0, 0, 0, time.UTC)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := warning.NewMockLedgerReader(ctrl)
	r := warning.NewMockRecorder(ctrl)

	l.EXPECT().
		ListEntries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f ledger.ListFilter) ([]*ledger.Entry, error) {
			assert.Equal(t, "user-1", f.UserID)
			assert.Equal(t, now.AddDate(-1, 0, 0), *f.From)
			assert.Equal(t, now, *f.To)

			return []*ledger.Entry{entry("-800", date(2024, 6, 1))}, nil
		})
	l.EXPECT().ListActiveBudgets(gomock.Any(), "user-1").Return(nil, nil)

	want := []*insight.Insight{{ID: uuid.New(), Type: insight.TypeSavingsDrop}}
	r.EXPECT().Record(gomock.Any(), "user-1", warning.DedupWindow, gomock.Len(1)).Return(want, nil)

	sys := warning.NewSystem(l, r, warning.WithClock(func() time.Time { return now }))

	got, err := sys.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSystem_Generate_DedupWindow(t *testing.T) {
	now := time.Date(2024, 6, 22, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	dining, bars := uuid.New(), uuid.New()
	budgets := []*ledger.Budget{
		{CategoryID: dining, CategoryName: "Dining", Period: ledger.PeriodMonthly, Amount: decimal.NewFromInt(100)},
		{CategoryID: bars, CategoryName: "Bars", Period: ledger.PeriodMonthly, Amount: decimal.NewFromInt(100)},
	}
	entries := []*ledger.Entry{
		entry("5000", date(2024, 1, 2)),
		spend("-300", date(2024, 6, 3), dining),
		spend("-300", date(2024, 6, 4), bars),
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	l := warning.NewMockLedgerReader(ctrl)
	l.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(entries, nil).AnyTimes()
	l.EXPECT().ListActiveBudgets(gomock.Any(), "user-1").Return(budgets, nil).AnyTimes()

	store := insighttest.NewStore()
	insights := insight.NewService(store, insight.WithClock(clock))
	sys := warning.NewSystem(l, insights, warning.WithClock(clock))

	got, err := sys.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Same(t, got[0], got[1])
	assert.Len(t, store.Active(insight.TypeBudgetLeakage), 1)

	now = now.Add(2 * 24 * time.Hour)
	_, err = sys.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, store.Active(insight.TypeBudgetLeakage), 1)

	now = now.Add(2 * 24 * time.Hour)
	_, err = sys.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, store.Active(insight.TypeBudgetLeakage), 2)
}

func TestSystem_Errors(t *testing.T) {
	type testCase struct {
		name       string
		userID     string
		setupMocks func(l *warning.MockLedgerReader, r *warning.MockRecorder)
		wantErr    error
	}

	tests := []testCase{
		{
			name:    "NoUser",
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:   "EntriesFailure",
			userID: "user-1",
			setupMocks: func(l *warning.MockLedgerReader, _ *warning.MockRecorder) {
				l.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))
			},
			wantErr: apperr.ErrCalculation,
		},
		{
			name:   "BudgetsFailure",
			userID: "user-1",
			setupMocks: func(l *warning.MockLedgerReader, _ *warning.MockRecorder) {
				l.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(nil, nil)
				l.EXPECT().ListActiveBudgets(gomock.Any(), "user-1").Return(nil, errors.New("timeout"))
			},
			wantErr: apperr.ErrCalculation,
		},
		{
			name:   "RecordFailure",
			userID: "user-1",
			setupMocks: func(l *warning.MockLedgerReader, r *warning.MockRecorder) {
				l.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(nil, nil)
				l.EXPECT().ListActiveBudgets(gomock.Any(), "user-1").Return(nil, nil)
				r.EXPECT().Record(gomock.Any(), "user-1", warning.DedupWindow, gomock.Any()).Return(nil, errors.New("deadlock"))
			},
			wantErr: apperr.ErrCalculation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			l := warning.NewMockLedgerReader(ctrl)
			r := warning.NewMockRecorder(ctrl)

			if tt.setupMocks != nil {
				tt.setupMocks(l, r)
			}

			sys := warning.NewSystem(l, r)

			_, err := sys.Generate(context.Background(), tt.userID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
