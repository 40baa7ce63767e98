package processing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	httpprocessing "github.com/MrJamesThe3rd/finsight/internal/http/processing"
	"github.com/MrJamesThe3rd/finsight/internal/processing"
)

var now = time.Date(2024, 6, 15, 6, 0, 0, 0, time.UTC)

var admins = []string{"ops"}

func newRouter(svc *processing.Service, userID string) http.Handler {
	r := chi.NewRouter()
	r.Use(auth.Middleware(auth.Config{DemoUserID: userID}))
	r.Route("/processing", httpprocessing.NewHandler(svc, admins).Routes)

	return r
}

// newService processes alice and bob. Runs fail when handed an already cancelled context.
func newService(ctrl *gomock.Controller) *processing.Service {
	users := processing.NewMockUserLister(ctrl)
	users.EXPECT().ListUserIDs(gomock.Any()).Return([]string{"alice", "bob"}, nil).AnyTimes()

	runner := processing.NewMockRunner(ctrl)
	runner.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, userID string) processing.UserResult {
			if err := ctx.Err(); err != nil {
				return processing.UserResult{UserID: userID, Error: err.Error()}
			}

			return processing.UserResult{UserID: userID, Success: true, Duration: time.Second}
		}).AnyTimes()

	return processing.NewService(users, runner, processing.NewMemoryJobStore(),
		processing.WithClock(func() time.Time { return now }),
	)
}

func TestHandler_BatchRoutesRequireAdmin(t *testing.T) {
	type args struct {
		method string
		path   string
		body   string
	}

	type testCase struct {
		name string
		args args
	}

	tests := []testCase{
		{name: "run job", args: args{method: http.MethodPost, path: "/processing/jobs", body: `{"type":"manual"}`}},
		{name: "list jobs", args: args{method: http.MethodGet, path: "/processing/jobs"}},
		{name: "get job", args: args{method: http.MethodGet, path: "/processing/jobs/manual-1"}},
		{name: "stats", args: args{method: http.MethodGet, path: "/processing/stats"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			router := newRouter(newService(ctrl), "alice")

			req := httptest.NewRequest(tt.args.method, tt.args.path, strings.NewReader(tt.args.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusForbidden, rec.Code)
			assert.NotContains(t, rec.Body.String(), "bob")
		})
	}
}

func TestHandler_NonAdminCannotSeeOtherUsers(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newService(ctrl)

	_, err := svc.RunJob(context.Background(), processing.JobManual)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	newRouter(svc, "alice").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/processing/jobs", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "bob")
}

func TestHandler_RunUser(t *testing.T) {
	ctrl := gomock.NewController(t)

	rec := httptest.NewRecorder()
	newRouter(newService(ctrl), "alice").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/processing/run", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got processing.UserResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))

	assert.Equal(t, "alice", got.UserID)
	assert.True(t, got.Success)
}

func TestHandler_AdminRunsAndReadsJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	router := newRouter(newService(ctrl), "ops")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/processing/jobs", strings.NewReader(`{"type":"manual"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var job processing.Job
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&job))
	assert.Equal(t, processing.JobCompleted, job.Status)
	assert.Len(t, job.Results, 2)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/processing/jobs/"+job.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/processing/jobs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var jobs []processing.Job
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&jobs))
	assert.Len(t, jobs, 1)
}

func TestHandler_RunJobOutlivesRequest(t *testing.T) {
	ctrl := gomock.NewController(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/processing/jobs", strings.NewReader(`{"type":"manual"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	newRouter(newService(ctrl), "ops").ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var job processing.Job
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&job))

	require.Len(t, job.Results, 2)
	for _, r := range job.Results {
		assert.True(t, r.Success, "user %s: %s", r.UserID, r.Error)
	}
}
