package signal_test

import (
	"context"
	"errors"
	"sync"
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
	"github.com/MrJamesThe3rd/finsight/internal/signal"
)

var now = time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func date(month time.Month, day int) time.Time {
	return time.Date(2024, month, day, 9, 0, 0, 0, time.UTC)
}

func entry(amount string, d time.Time) *ledger.Entry {
	return &ledger.Entry{ID: uuid.New(), UserID: "user-1", Amount: decimal.RequireFromString(amount), Date: d}
}

// fakeLedger serves entries honoring the filter's date bounds.
type fakeLedger struct {
	entries []*ledger.Entry
}

func (f *fakeLedger) ListEntries(_ context.Context, filter ledger.ListFilter) ([]*ledger.Entry, error) {
	var out []*ledger.Entry

	for _, e := range f.entries {
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}

		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}

		out = append(out, e)
	}

	return out, nil
}

func (f *fakeLedger) LatestEntry(_ context.Context, _ string) (*ledger.Entry, error) {
	var latest *ledger.Entry

	for _, e := range f.entries {
		if latest == nil || e.Date.After(latest.Date) {
			latest = e
		}
	}

	if latest == nil {
		return nil, apperr.ErrNotFound
	}

	return latest, nil
}

func newEngine(entries []*ledger.Entry) (*signal.Engine, *insighttest.Store) {
	store := insighttest.NewStore()
	svc := insight.NewService(store, insight.WithClock(clock))

	return signal.NewEngine(&fakeLedger{entries: entries}, svc, signal.WithClock(clock)), store
}

func ofType(insights []*insight.Insight, typ insight.Type) []*insight.Insight {
	var out []*insight.Insight

	for _, in := range insights {
		if in.Type == typ {
			out = append(out, in)
		}
	}

	return out
}

func steadyLedger() []*ledger.Entry {
	var entries []*ledger.Entry

	for m := time.January; m <= time.June; m++ {
		entries = append(entries, entry("3000", date(m, 10)), entry("-1000", date(m, 12)))
	}

	return append(entries, entry("-50", date(time.June, 28)))
}

func TestEngine_Generate_SteadyLedgerIsQuiet(t *testing.T) {
	engine, store := newEngine(steadyLedger())

	got, err := engine.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, store.All())
}

func TestEngine_Generate_SpendingSpike(t *testing.T) {
	var entries []*ledger.Entry
	for m := time.January; m <= time.May; m++ {
		entries = append(entries, entry("-1720", date(m, 10)))
	}

	entries = append(entries, entry("-2500", date(time.June, 15)))

	engine, _ := newEngine(entries)

	got, err := engine.Generate(context.Background(), "user-1")
	require.NoError(t, err)

	spikes := ofType(got, insight.TypeSpendingSpike)
	require.Len(t, spikes, 1)

	spike := spikes[0]
	assert.Equal(t, insight.SeverityHigh, spike.Severity)
	assert.Equal(t, "Spending Spike", spike.Title)
	assert.InDelta(t, 1850, spike.SupportingData["historicalAverage"], 1e-9)
	assert.InDelta(t, 2500, spike.SupportingData["currentSpending"], 1e-9)
	assert.InDelta(t, 35.1, spike.SupportingData["percentageIncrease"], 0.05)
	assert.Contains(t, spike.Explanation, "35.1%")
}

func TestEngine_Generate_SavingsDrop(t *testing.T) {
	entries := []*ledger.Entry{
		entry("3000", date(time.April, 15)),
		entry("-1881", date(time.April, 20)),
		entry("3000", date(time.May, 15)),
		entry("-1881", date(time.May, 20)),
		entry("3000", date(time.June, 15)),
		entry("-2220", date(time.June, 20)),
	}

	engine, _ := newEngine(entries)

	got, err := engine.Generate(context.Background(), "user-1")
	require.NoError(t, err)

	drops := ofType(got, insight.TypeSavingsDrop)
	require.Len(t, drops, 1)

	drop := drops[0]
	assert.Equal(t, insight.SeverityCritical, drop.Severity)
	assert.InDelta(t, 37.3, drop.SupportingData["previousSavingsRate"], 1e-9)
	assert.InDelta(t, 26.0, drop.SupportingData["currentSavingsRate"], 1e-9)
	assert.InDelta(t, 30.3, drop.SupportingData["relativeDrop"], 0.05)
	assert.Contains(t, drop.Explanation, "from 37.3% to 26.0%")
}

func TestEngine_Generate_BudgetLeakage(t *testing.T) {
	groceries := uuid.New()
	dining := uuid.New()

	categorized := func(amount string, d time.Time, cat uuid.UUID) *ledger.Entry {
		e := entry(amount, d)
		e.CategoryID = &cat

		return e
	}

	entries := append(steadyLedger(),
		categorized("-100", date(time.April, 20), groceries),
		categorized("-100", date(time.May, 20), groceries),
		categorized("-200", date(time.June, 20), groceries),
		categorized("-100", date(time.April, 21), dining),
		categorized("-100", date(time.May, 21), dining),
		categorized("-120", date(time.June, 21), dining),
	)

	engine, _ := newEngine(entries)

	got, err := engine.Generate(context.Background(), "user-1")
	require.NoError(t, err)

	leaks := ofType(got, insight.TypeBudgetLeakage)
	require.Len(t, leaks, 1)
	assert.Equal(t, insight.SeverityMedium, leaks[0].Severity)

	categories, ok := leaks[0].SupportingData["categories"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, categories, 1)
	assert.Equal(t, groceries.String(), categories[0]["categoryId"])
	assert.InDelta(t, 100, categories[0]["percentageIncrease"], 1e-9)
}

func TestEngine_Generate_IncomeDip(t *testing.T) {
	entries := []*ledger.Entry{
		entry("3000", date(time.April, 15)),
		entry("3000", date(time.May, 15)),
		entry("2000", date(time.June, 15)),
		entry("-10", date(time.June, 29)),
	}

	engine, _ := newEngine(entries)

	got, err := engine.Generate(context.Background(), "user-1")
	require.NoError(t, err)

	dips := ofType(got, insight.TypeIncomeDip)
	require.Len(t, dips, 1)
	assert.Equal(t, insight.SeverityHigh, dips[0].Severity)
	assert.InDelta(t, 3000, dips[0].SupportingData["previousIncome"], 1e-9)
	assert.InDelta(t, 33.33, dips[0].SupportingData["percentageDecrease"], 0.01)
}

func TestEngine_Generate_DebtGrowth(t *testing.T) {
	entries := []*ledger.Entry{
		entry("-400", date(time.April, 15)),
		entry("-400", date(time.May, 15)),
		entry("-99", date(time.May, 16)),
		entry("-500", date(time.June, 15)),
		entry("-100", date(time.June, 29)),
	}

	engine, _ := newEngine(entries)

	got, err := engine.Generate(context.Background(), "user-1")
	require.NoError(t, err)

	debt := ofType(got, insight.TypeDebtGrowth)
	require.Len(t, debt, 1)
	assert.Equal(t, insight.SeverityMedium, debt[0].Severity)
	assert.InDelta(t, 500, debt[0].SupportingData["currentDebtPayments"], 1e-9)
	assert.InDelta(t, 400, debt[0].SupportingData["previousDebtPayments"], 1e-9)
	assert.InDelta(t, 25, debt[0].SupportingData["percentageIncrease"], 1e-9)
}

func TestEngine_Generate_TransactionSilence(t *testing.T) {
	type testCase struct {
		name     string
		entries  []*ledger.Entry
		wantFire bool
		wantDays any
	}

	tests := []testCase{
		{
			name:     "TenDaysQuiet",
			entries:  []*ledger.Entry{entry("-20", now.AddDate(0, 0, -10))},
			wantFire: true,
			wantDays: 10,
		},
		{
			name:     "SevenDaysQuiet",
			entries:  []*ledger.Entry{entry("-20", now.AddDate(0, 0, -7))},
			wantFire: false,
		},
		{
			name:     "NoEntriesEver",
			wantFire: true,
			wantDays: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, _ := newEngine(tt.entries)

			got, err := engine.Generate(context.Background(), "user-1")
			require.NoError(t, err)

			silence := ofType(got, insight.TypeTransactionSilence)
			if !tt.wantFire {
				assert.Empty(t, silence)
				return
			}

			require.Len(t, silence, 1)
			assert.Equal(t, insight.SeverityLow, silence[0].Severity)
			assert.Equal(t, tt.wantDays, silence[0].SupportingData["daysSinceLastTransaction"])
		})
	}
}

func TestEngine_Generate_DedupIdempotent(t *testing.T) {
	var entries []*ledger.Entry
	for m := time.January; m <= time.May; m++ {
		entries = append(entries, entry("-1720", date(m, 10)))
	}

	entries = append(entries, entry("-2500", date(time.June, 15)))

	engine, store := newEngine(entries)

	first, err := engine.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := engine.Generate(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, second, len(first))

	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}

	assert.Len(t, store.All(), len(first))

	for _, in := range first {
		assert.Len(t, store.Active(in.Type), 1)
	}
}

// Duplicate suppression is a read followed by a write. Two runs that both read before
// either writes will each insert, which is accepted.
func TestEngine_Generate_ConcurrentRunsMayDuplicate(t *testing.T) {
	engine, store := newEngine(nil)

	var arrived sync.WaitGroup

	arrived.Add(2)

	store.BeforeCreate = func() {
		arrived.Done()
		arrived.Wait()
	}

	var wg sync.WaitGroup

	errs := make([]error, 2)

	for i := range 2 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, errs[i] = engine.Generate(context.Background(), "user-1")
		}()
	}

	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Len(t, store.Active(insight.TypeTransactionSilence), 2)
}

func TestEngine_Generate_Errors(t *testing.T) {
	type testCase struct {
		name       string
		userID     string
		setupMocks func(l *signal.MockLedgerReader, r *signal.MockRecorder)
		wantErr    error
	}

	tests := []testCase{
		{
			name:    "NoUser",
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name:   "LedgerFailure",
			userID: "user-1",
			setupMocks: func(l *signal.MockLedgerReader, r *signal.MockRecorder) {
				l.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
			},
			wantErr: apperr.ErrCalculation,
		},
		{
			name:   "LatestEntryFailure",
			userID: "user-1",
			setupMocks: func(l *signal.MockLedgerReader, r *signal.MockRecorder) {
				l.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(nil, nil)
				l.EXPECT().LatestEntry(gomock.Any(), "user-1").Return(nil, errors.New("timeout"))
			},
			wantErr: apperr.ErrCalculation,
		},
		{
			name:   "RecordFailure",
			userID: "user-1",
			setupMocks: func(l *signal.MockLedgerReader, r *signal.MockRecorder) {
				l.EXPECT().ListEntries(gomock.Any(), gomock.Any()).Return(nil, nil)
				l.EXPECT().LatestEntry(gomock.Any(), "user-1").Return(nil, apperr.ErrNotFound)
				r.EXPECT().Record(gomock.Any(), "user-1", signal.DedupWindow, gomock.Len(1)).Return(nil, errors.New("insert failed"))
			},
			wantErr: apperr.ErrCalculation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			l := signal.NewMockLedgerReader(ctrl)
			r := signal.NewMockRecorder(ctrl)

			if tt.setupMocks != nil {
				tt.setupMocks(l, r)
			}

			engine := signal.NewEngine(l, r, signal.WithClock(clock))

			_, err := engine.Generate(context.Background(), tt.userID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
