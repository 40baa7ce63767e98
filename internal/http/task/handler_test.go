package task_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	httptask "github.com/MrJamesThe3rd/finsight/internal/http/task"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
	"github.com/MrJamesThe3rd/finsight/internal/task"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newRouter(repo task.Repository, insights task.InsightReader) http.Handler {
	svc := task.NewService(repo, insights, task.WithClock(func() time.Time { return now }))

	r := chi.NewRouter()
	r.Use(auth.Middleware(auth.Config{DemoUserID: "user-1"}))
	r.Route("/tasks", httptask.NewHandler(svc).Routes)

	return r
}

func TestHandler_FromInsight(t *testing.T) {
	insightID := uuid.New()

	type args struct {
		body string
	}

	type testCase struct {
		name       string
		args       args
		setup      func(repo *task.MockRepository, insights *task.MockInsightReader)
		wantStatus int
		verify     func(t *testing.T, got map[string]any)
	}

	tests := []testCase{
		{
			name: "creates task",
			args: args{body: `{"insightId":"` + insightID.String() + `"}`},
			setup: func(repo *task.MockRepository, insights *task.MockInsightReader) {
				insights.EXPECT().Get(gomock.Any(), "user-1", insightID).Return(&insight.Insight{
					ID:          insightID,
					UserID:      "user-1",
					Type:        insight.TypeSpendingSpike,
					Severity:    insight.SeverityHigh,
					Title:       "Spending Spike Detected",
					Explanation: "Spending rose 40%.",
				}, nil)
				repo.EXPECT().CreateTask(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantStatus: http.StatusCreated,
			verify: func(t *testing.T, got map[string]any) {
				assert.Equal(t, "Review: Spending Spike Detected", got["title"])
				assert.Equal(t, "open", got["status"])
				assert.Equal(t, insightID.String(), got["sourceInsightId"])
			},
		},
		{
			name:       "missing insight id",
			args:       args{body: `{"title":"x"}`},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown priority",
			args:       args{body: `{"insightId":"` + insightID.String() + `","priority":"asap"}`},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "insight not owned",
			args: args{body: `{"insightId":"` + insightID.String() + `"}`},
			setup: func(_ *task.MockRepository, insights *task.MockInsightReader) {
				insights.EXPECT().Get(gomock.Any(), "user-1", insightID).Return(nil, apperr.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := task.NewMockRepository(ctrl)
			insights := task.NewMockInsightReader(ctrl)

			if tt.setup != nil {
				tt.setup(repo, insights)
			}

			req := httptest.NewRequest(http.MethodPost, "/tasks/from-insight", strings.NewReader(tt.args.body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			newRouter(repo, insights).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.verify != nil {
				var got map[string]any
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
				tt.verify(t, got)
			}
		})
	}
}

func TestHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := task.NewMockRepository(ctrl)
	repo.EXPECT().
		ListTasks(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, filter task.ListFilter) ([]*task.Task, error) {
			assert.Equal(t, "user-1", filter.UserID)
			require.NotNil(t, filter.Status)
			assert.Equal(t, task.StatusOpen, *filter.Status)
			require.NotNil(t, filter.DueBefore)
			assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), *filter.DueBefore)
			assert.Equal(t, 5, filter.Limit)

			return nil, nil
		})

	rec := httptest.NewRecorder()
	newRouter(repo, task.NewMockInsightReader(ctrl)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks?status=open&due_before=2024-07-01&limit=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_UpdateStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := task.NewMockRepository(ctrl)
	repo.EXPECT().GetTask(gomock.Any(), "user-1", id).Return(&task.Task{ID: id, UserID: "user-1", Status: task.StatusOpen}, nil)
	repo.EXPECT().UpdateTask(gomock.Any(), gomock.Any()).Return(nil)

	router := newRouter(repo, task.NewMockInsightReader(ctrl))

	req := httptest.NewRequest(http.MethodPatch, "/tasks/"+id.String()+"/status", strings.NewReader(`{"status":"completed","notes":"paid"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got task.Task
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, task.StatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, now.Equal(*got.CompletedAt))
	assert.Equal(t, "Notes: paid", got.Description)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/tasks/"+id.String()+"/status", strings.NewReader(`{"status":"finished"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := task.NewMockRepository(ctrl)
	repo.EXPECT().DeleteTask(gomock.Any(), "user-1", id).Return(nil)
	repo.EXPECT().DeleteTask(gomock.Any(), "user-1", gomock.Not(id)).Return(apperr.ErrNotFound)

	router := newRouter(repo, task.NewMockInsightReader(ctrl))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/tasks/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/tasks/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
