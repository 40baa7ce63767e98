package ledger

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
	"github.com/MrJamesThe3rd/finsight/internal/http/auth"
	"github.com/MrJamesThe3rd/finsight/internal/http/respond"
	"github.com/MrJamesThe3rd/finsight/internal/importer"
	"github.com/MrJamesThe3rd/finsight/internal/ledger"
	"github.com/MrJamesThe3rd/finsight/internal/matching"
)

type Handler struct {
	svc      *ledger.Service
	importer *importer.Service
	rules    *matching.Service
}

func NewHandler(svc *ledger.Service, importSvc *importer.Service, rules *matching.Service) *Handler {
	return &Handler{svc: svc, importer: importSvc, rules: rules}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/entries", h.create)
	r.Get("/entries", h.list)
	r.Post("/import", h.importFile)
	r.Get("/rules", h.listRules)
	r.Post("/rules", h.createRule)
}

type entryResponse struct {
	ID          uuid.UUID       `json:"id"`
	AccountID   uuid.UUID       `json:"accountId"`
	CategoryID  *uuid.UUID      `json:"categoryId,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toResponse(e *ledger.Entry) entryResponse {
	return entryResponse{
		ID:          e.ID,
		AccountID:   e.AccountID,
		CategoryID:  e.CategoryID,
		Amount:      e.Amount,
		Description: e.Description,
		Date:        e.Date.Format(time.DateOnly),
		CreatedAt:   e.CreatedAt,
	}
}

func toResponseList(entries []*ledger.Entry) []entryResponse {
	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toResponse(e)
	}

	return resp
}

type createEntryRequest struct {
	AccountID   uuid.UUID       `json:"accountId" validate:"required"`
	CategoryID  *uuid.UUID      `json:"categoryId"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"required"`
	Date        string          `json:"date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		respond.Error(w, r, fmt.Errorf("%w: %w", apperr.ErrValidation, err))
		return
	}

	e, err := h.svc.Create(r.Context(), auth.UserID(r.Context()), ledger.CreateParams{
		AccountID:   req.AccountID,
		CategoryID:  req.CategoryID,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ledger.ListFilter{UserID: auth.UserID(r.Context())}

	if filter.UserID == "" {
		respond.Error(w, r, apperr.ErrUnauthorized)
		return
	}

	if s := q.Get("category_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			filter.CategoryID = &id
		}
	}

	if s := q.Get("from"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.From = new(t)
		}
	}

	if s := q.Get("to"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			filter.To = new(t)
		}
	}

	if s := q.Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			filter.Limit = n
		}
	}

	entries, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(entries))
}

type importResponse struct {
	Imported    int             `json:"imported"`
	Skipped     int             `json:"skipped"`
	Categorized int             `json:"categorized"`
	Entries     []entryResponse `json:"entries"`
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		respond.Error(w, r, fmt.Errorf("%w: failed to parse form: %w", apperr.ErrValidation, err))
		return
	}

	bank := importer.Bank(r.FormValue("bank"))
	if bank == "" {
		respond.Error(w, r, fmt.Errorf("%w: bank field is required", apperr.ErrValidation))
		return
	}

	accountID, err := uuid.Parse(r.FormValue("account_id"))
	if err != nil {
		respond.Error(w, r, fmt.Errorf("%w: account_id field is required", apperr.ErrValidation))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, fmt.Errorf("%w: file field is required", apperr.ErrValidation))
		return
	}
	defer file.Close()

	params, err := h.importer.Parse(bank, accountID, file)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	userID := auth.UserID(r.Context())

	categorized, err := h.rules.Categorize(r.Context(), userID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	result, err := h.svc.Import(r.Context(), userID, params)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{
		Imported:    len(result.Imported),
		Skipped:     len(result.Skipped),
		Categorized: categorized,
		Entries:     toResponseList(result.Imported),
	})
}

type createRuleRequest struct {
	Pattern    string    `json:"pattern" validate:"required"`
	CategoryID uuid.UUID `json:"categoryId" validate:"required"`
}

func (h *Handler) createRule(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	rule, err := h.rules.Learn(r.Context(), auth.UserID(r.Context()), req.Pattern, req.CategoryID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, rule)
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.rules.Rules(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if rules == nil {
		rules = []*matching.Rule{}
	}

	respond.JSON(w, http.StatusOK, rules)
}
