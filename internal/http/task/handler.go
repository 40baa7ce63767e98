package task

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/task"
)

type Handler struct {
	svc *task.Service
}

func NewHandler(svc *task.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/from-insight", h.fromInsight)
	r.Get("/", h.list)
	r.Get("/stats", h.stats)
	r.Patch("/{id}/status", h.updateStatus)
	r.Delete("/{id}", h.delete)
}

type fromInsightRequest struct {
	InsightID   uuid.UUID     `json:"insightId" validate:"required"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	DueDate     *time.Time    `json:"dueDate"`
	Priority    task.Priority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

func (h *Handler) fromInsight(w http.ResponseWriter, r *http.Request) {
	var req fromInsightRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	t, err := h.svc.CreateFromInsight(r.Context(), auth.UserID(r.Context()), req.InsightID, task.FromInsightParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Priority:    req.Priority,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, t)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := task.ListFilter{UserID: auth.UserID(r.Context())}

	if s := q.Get("status"); s != "" {
		filter.Status = new(task.Status(s))
	}

	if s := q.Get("priority"); s != "" {
		filter.Priority = new(task.Priority(s))
	}

	if s := q.Get("type"); s != "" {
		filter.Type = new(task.Type(s))
	}

	if s := q.Get("due_before"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.DueBefore = new(t)
		}
	}

	if s := q.Get("due_after"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.DueAfter = new(t)
		}
	}

	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}

	tasks, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if tasks == nil {
		tasks = []*task.Task{}
	}

	respond.JSON(w, http.StatusOK, tasks)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, stats)
}

type updateStatusRequest struct {
	Status task.Status `json:"status" validate:"required"`
	Notes  string      `json:"notes"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.ErrNotFound)
		return
	}

	var req updateStatusRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	t, err := h.svc.UpdateStatus(r.Context(), auth.UserID(r.Context()), id, req.Status, req.Notes)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, t)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.ErrNotFound)
		return
	}

	if err := h.svc.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		respond.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
