package trend

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/metrics"
	"github.com/MrJamesThe3rd/finsight/internal/trend"
)

type Handler struct {
	engine *trend.Engine
}

func NewHandler(engine *trend.Engine) *Handler {
	return &Handler{engine: engine}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.generate)
	r.Get("/", h.list)
}

type periodResponse struct {
	ID           uuid.UUID             `json:"id"`
	PeriodType   trend.PeriodType      `json:"periodType"`
	PeriodStart  time.Time             `json:"periodStart"`
	PeriodEnd    time.Time             `json:"periodEnd"`
	Metrics      metrics.PeriodMetrics `json:"metrics"`
	Comparisons  trend.Comparisons     `json:"comparisons"`
	CalculatedAt time.Time             `json:"calculatedAt"`
}

func toResponseList(periods []*trend.Period) []periodResponse {
	resp := make([]periodResponse, len(periods))
	for i, p := range periods {
		resp[i] = periodResponse{
			ID:           p.ID,
			PeriodType:   p.PeriodType,
			PeriodStart:  p.PeriodStart,
			PeriodEnd:    p.PeriodEnd,
			Metrics:      p.Metrics,
			Comparisons:  p.Comparisons,
			CalculatedAt: p.CalculatedAt,
		}
	}

	return resp
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	periods, err := h.engine.Generate(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponseList(periods))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	periodType := trend.PeriodType(r.URL.Query().Get("period_type"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	periods, err := h.engine.List(r.Context(), auth.UserID(r.Context()), periodType, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(periods))
}
