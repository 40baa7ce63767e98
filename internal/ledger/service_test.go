package ledger_test

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
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
)

func TestService_Create(t *testing.T) {
	accountID := uuid.New()

	type args struct {
		userID string
		params ledger.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *ledger.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{
				userID: "user-1",
				params: ledger.CreateParams{
					AccountID:   accountID,
					Amount:      decimal.RequireFromString("-42.50"),
					Description: "Groceries",
					Date:        time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
				},
			},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *ledger.Entry) error {
						e.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "MissingAccount",
			args: args{
				userID: "user-1",
				params: ledger.CreateParams{Date: time.Now()},
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "MissingDate",
			args: args{
				userID: "user-1",
				params: ledger.CreateParams{AccountID: accountID},
			},
			wantErr: apperr.ErrValidation,
		},
		{
			name: "RepoError",
			args: args{
				userID: "user-1",
				params: ledger.CreateParams{AccountID: accountID, Date: time.Now()},
			},
			setupMock: func(m *ledger.MockRepository) {
				m.EXPECT().
					CreateEntry(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := ledger.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := ledger.NewService(repo)
			got, err := svc.Create(context.Background(), tt.args.userID, tt.args.params)

			if tt.wantErr != nil {
				assert.Error(t, err)
				assert.Nil(t, got)

				if errors.Is(tt.wantErr, apperr.ErrValidation) {
					assert.ErrorIs(t, err, apperr.ErrValidation)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, tt.args.userID, got.UserID)
			assert.True(t, tt.args.params.Amount.Equal(got.Amount))
		})
	}
}

func TestService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	filter := ledger.ListFilter{UserID: "user-1"}
	repo.EXPECT().
		ListEntries(gomock.Any(), filter).
		Return([]*ledger.Entry{{ID: uuid.New()}, {ID: uuid.New()}}, nil)

	got, err := svc.List(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestService_Import_SkipsDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	itx := ledger.NewMockImportTx(ctrl)
	svc := ledger.NewService(repo)

	accountID := uuid.New()
	first := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	last := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	params := []ledger.CreateParams{
		{AccountID: accountID, Amount: decimal.RequireFromString("-10.00"), Description: "COFFEE SHOP", Date: last},
		{AccountID: accountID, Amount: decimal.RequireFromString("-20.00"), Description: "LUNCH PLACE", Date: first},
		{AccountID: accountID, Amount: decimal.RequireFromString("-20.00"), Description: "LUNCH PLACE", Date: first},
	}

	existing := &ledger.Entry{
		ID:          uuid.New(),
		AccountID:   accountID,
		Amount:      decimal.RequireFromString("-10"),
		Description: "COFFEE SHOP",
		Date:        last,
	}

	repo.EXPECT().BeginImport(gomock.Any(), "user-1", first, last).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), "user-1", params).Return([]*ledger.Entry{existing}, nil)
	itx.EXPECT().
		CreateEntries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, entries []*ledger.Entry) error {
			require.Len(t, entries, 1)
			assert.Equal(t, "LUNCH PLACE", entries[0].Description)
			assert.Equal(t, "user-1", entries[0].UserID)

			return nil
		})
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.Import(context.Background(), "user-1", params)
	require.NoError(t, err)
	assert.Len(t, result.Imported, 1)
	assert.Len(t, result.Skipped, 2)
}

func TestService_Import_AllDuplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	itx := ledger.NewMockImportTx(ctrl)
	svc := ledger.NewService(repo)

	accountID := uuid.New()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	params := []ledger.CreateParams{
		{AccountID: accountID, Amount: decimal.RequireFromString("-10"), Description: "COFFEE SHOP", Date: date},
	}

	repo.EXPECT().BeginImport(gomock.Any(), "user-1", date, date).Return(itx, nil)
	itx.EXPECT().FindDuplicates(gomock.Any(), "user-1", params).Return([]*ledger.Entry{
		{AccountID: accountID, Amount: decimal.RequireFromString("-10.00"), Description: "COFFEE SHOP", Date: date},
	}, nil)
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	result, err := svc.Import(context.Background(), "user-1", params)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
	assert.Len(t, result.Skipped, 1)
}

func TestService_Import_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	result, err := svc.Import(context.Background(), "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, result.Imported)
}

func TestService_Import_BeginError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := ledger.NewMockRepository(ctrl)
	svc := ledger.NewService(repo)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	repo.EXPECT().BeginImport(gomock.Any(), "user-1", date, date).Return(nil, errors.New("lock timeout"))

	_, err := svc.Import(context.Background(), "user-1", []ledger.CreateParams{{Date: date}})
	assert.ErrorContains(t, err, "begin import")
}

func TestBudget_MonthlyAmount(t *testing.T) {
	tests := []struct {
		name   string
		period ledger.Period
		amount string
		days   int
		want   float64
	}{
		{name: "Monthly", period: ledger.PeriodMonthly, amount: "400", days: 30, want: 400},
		{name: "Weekly", period: ledger.PeriodWeekly, amount: "70", days: 31, want: 310},
		{name: "Quarterly", period: ledger.PeriodQuarterly, amount: "900", days: 30, want: 300},
		{name: "Yearly", period: ledger.PeriodYearly, amount: "1200", days: 28, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &ledger.Budget{Period: tt.period, Amount: decimal.RequireFromString(tt.amount)}
			assert.InDelta(t, tt.want, b.MonthlyAmount(tt.days), 1e-9)
		})
	}
}
