package health

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/health"
	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
)

type Handler struct {
	calc *health.Calculator
}

func NewHandler(calc *health.Calculator) *Handler {
	return &Handler{calc: calc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.calculate)
	r.Get("/history", h.history)
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	result, err := h.calc.Calculate(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, result)
}

type snapshotResponse struct {
	ID             uuid.UUID         `json:"id"`
	Score          int               `json:"score"`
	HealthState    health.State      `json:"healthState"`
	TrendDirection health.Trend      `json:"trendDirection"`
	Components     health.Components `json:"components"`
	CalculatedAt   time.Time         `json:"calculatedAt"`
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	snapshots, err := h.calc.History(r.Context(), auth.UserID(r.Context()), limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]snapshotResponse, len(snapshots))
	for i, s := range snapshots {
		resp[i] = snapshotResponse{
			ID:             s.ID,
			Score:          s.Score,
			HealthState:    s.HealthState,
			TrendDirection: s.TrendDirection,
			Components:     s.Components,
			CalculatedAt:   s.CalculatedAt,
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}
