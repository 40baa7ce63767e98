package processing

import (
	"context"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/processing"
)

type Handler struct {
	svc    *processing.Service
	admins []string
}

// NewHandler serves the processing routes. Batch jobs span every user, so only the
// listed admin users may run or read them.
func NewHandler(svc *processing.Service, admins []string) *Handler {
	return &Handler{svc: svc, admins: admins}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/run", h.runUser)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)

		r.Get("/jobs", h.listJobs)
		r.Get("/jobs/{id}", h.getJob)
		r.Post("/jobs", h.runJob)
		r.Get("/stats", h.stats)
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := auth.UserID(r.Context())
		if userID == "" {
			respond.Error(w, r, apperr.ErrUnauthorized)
			return
		}

		if !slices.Contains(h.admins, userID) {
			respond.Error(w, r, apperr.ErrForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.svc.Jobs()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if jobs == nil {
		jobs = []*processing.Job{}
	}

	respond.JSON(w, http.StatusOK, jobs)
}

func (h *Handler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.svc.Job(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, job)
}

type runJobRequest struct {
	Type processing.JobType `json:"type" validate:"required,oneof=daily weekly manual"`
}

// runJob processes every user synchronously and answers with the finished job. The
// batch outlives the request: a client that disconnects does not cancel it.
func (h *Handler) runJob(w http.ResponseWriter, r *http.Request) {
	var req runJobRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	job, err := h.svc.RunJob(context.WithoutCancel(r.Context()), req.Type)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, job)
}

// runUser is the manual trigger for the calling user.
func (h *Handler) runUser(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if userID == "" {
		respond.Error(w, r, apperr.ErrUnauthorized)
		return
	}

	respond.JSON(w, http.StatusOK, h.svc.ProcessUser(r.Context(), userID))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics()
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, stats)
}
