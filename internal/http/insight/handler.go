package insight

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/insight"
)

// Generator runs one family of detection rules for a user.
type Generator interface {
	Generate(ctx context.Context, userID string) ([]*insight.Insight, error)
}

type Handler struct {
	svc     *insight.Service
	signals Generator
	alerts  Generator
}

func NewHandler(svc *insight.Service, signals, alerts Generator) *Handler {
	return &Handler{svc: svc, signals: signals, alerts: alerts}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/signals", h.generate(h.signals))
	r.Post("/alerts", h.generate(h.alerts))
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/resolve", h.resolve)
}

func (h *Handler) generate(gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		insights, err := gen.Generate(r.Context(), auth.UserID(r.Context()))
		if err != nil {
			respond.Error(w, r, err)
			return
		}

		if insights == nil {
			insights = []*insight.Insight{}
		}

		respond.JSON(w, http.StatusCreated, insights)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := insight.ListFilter{UserID: auth.UserID(r.Context())}

	if s := r.URL.Query().Get("status"); s != "" {
		filter.Status = new(insight.Status(s))
	}

	if s := r.URL.Query().Get("type"); s != "" {
		filter.Type = new(insight.Type(s))
	}

	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}

	insights, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if insights == nil {
		insights = []*insight.Insight{}
	}

	respond.JSON(w, http.StatusOK, insights)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.ErrNotFound)
		return
	}

	in, err := h.svc.Get(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, in)
}

type resolveRequest struct {
	Action insight.Status `json:"action" validate:"required,oneof=resolved dismissed"`
	Notes  string         `json:"notes"`
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.ErrNotFound)
		return
	}

	var req resolveRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	in, err := h.svc.Resolve(r.Context(), auth.UserID(r.Context()), id, req.Action, req.Notes)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, in)
}
