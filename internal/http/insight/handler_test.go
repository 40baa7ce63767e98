package insight_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	httpinsight "github.com/MrJamesThe3rd/finsight/internal/http/insight"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
	"github.com/MrJamesThe3rd/finsight/internal/insight/insighttest"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type generatorFunc func(ctx context.Context, userID string) ([]*insight.Insight, error)

func (f generatorFunc) Generate(ctx context.Context, userID string) ([]*insight.Insight, error) {
	return f(ctx, userID)
}

func newRouter(store *insighttest.Store, signals, alerts httpinsight.Generator) http.Handler {
	svc := insight.NewService(store, insight.WithClock(func() time.Time { return now }))

	r := chi.NewRouter()
	r.Use(auth.Middleware(auth.Config{DemoUserID: "user-1"}))
	r.Route("/insights", httpinsight.NewHandler(svc, signals, alerts).Routes)

	return r
}

func seed(store *insighttest.Store, userID string, severity insight.Severity, age time.Duration) *insight.Insight {
	in := &insight.Insight{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      insight.TypeSpendingSpike,
		Severity:  severity,
		Title:     "Spending Spike Detected",
		Status:    insight.StatusActive,
		CreatedAt: now.Add(-age),
		UpdatedAt: now.Add(-age),
	}
	store.Add(in)

	return in
}

func TestHandler_Generate(t *testing.T) {
	var gotUser string

	signals := generatorFunc(func(_ context.Context, userID string) ([]*insight.Insight, error) {
		gotUser = userID
		return []*insight.Insight{{ID: uuid.New(), Type: insight.TypeIncomeDip}}, nil
	})
	alerts := generatorFunc(func(context.Context, string) ([]*insight.Insight, error) {
		return nil, fmt.Errorf("%w: listing budgets: %w", apperr.ErrCalculation, errors.New("timeout"))
	})

	router := newRouter(insighttest.NewStore(), signals, alerts)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/insights/signals", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "user-1", gotUser)

	var got []insight.Insight
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 1)
	assert.Equal(t, insight.TypeIncomeDip, got[0].Type)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/insights/alerts", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to calculate")
}

func TestHandler_List(t *testing.T) {
	store := insighttest.NewStore()
	low := seed(store, "user-1", insight.SeverityLow, time.Minute)
	critical := seed(store, "user-1", insight.SeverityCritical, time.Hour)
	seed(store, "user-2", insight.SeverityHigh, time.Minute)

	router := newRouter(store, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/insights?status=active", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got []insight.Insight
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, critical.ID, got[0].ID)
	assert.Equal(t, low.ID, got[1].ID)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/insights?status=resolved", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_Resolve(t *testing.T) {
	type args struct {
		id   func(owned, foreign *insight.Insight) string
		body string
	}

	type testCase struct {
		name       string
		args       args
		wantStatus int
		verify     func(t *testing.T, owned *insight.Insight)
	}

	tests := []testCase{
		{
			name: "dismiss with notes",
			args: args{
				id:   func(owned, _ *insight.Insight) string { return owned.ID.String() },
				body: `{"action":"dismissed","notes":"expected, annual insurance"}`,
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, owned *insight.Insight) {
				assert.Equal(t, insight.StatusDismissed, owned.Status)
				require.NotNil(t, owned.ResolvedAt)
				assert.Equal(t, now, *owned.ResolvedAt)
				assert.Equal(t, "expected, annual insurance", owned.SupportingData["resolutionNotes"])
			},
		},
		{
			name: "unknown action",
			args: args{
				id:   func(owned, _ *insight.Insight) string { return owned.ID.String() },
				body: `{"action":"escalated"}`,
			},
			wantStatus: http.StatusBadRequest,
			verify: func(t *testing.T, owned *insight.Insight) {
				assert.Equal(t, insight.StatusActive, owned.Status)
			},
		},
		{
			name: "another user's insight",
			args: args{
				id:   func(_, foreign *insight.Insight) string { return foreign.ID.String() },
				body: `{"action":"resolved"}`,
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "malformed id",
			args: args{
				id:   func(*insight.Insight, *insight.Insight) string { return "not-a-uuid" },
				body: `{"action":"resolved"}`,
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := insighttest.NewStore()
			owned := seed(store, "user-1", insight.SeverityHigh, time.Hour)
			foreign := seed(store, "user-2", insight.SeverityHigh, time.Hour)

			req := httptest.NewRequest(http.MethodPost, "/insights/"+tt.args.id(owned, foreign)+"/resolve", strings.NewReader(tt.args.body))
			rec := httptest.NewRecorder()

			newRouter(store, nil, nil).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			if tt.verify != nil {
				tt.verify(t, owned)
			}
		})
	}
}
