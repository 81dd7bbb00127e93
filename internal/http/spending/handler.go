package spending

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	httpauth "github.com/MrJamesThe3rd/finlink/internal/http/auth"
	"github.com/MrJamesThe3rd/finlink/internal/http/render"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
)

type Handler struct {
	ledger *ledger.Service
}

func NewHandler(l *ledger.Service) *Handler {
	return &Handler{ledger: l}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/monthly", h.monthly)
	r.Get("/categories", h.categories)
}

func (h *Handler) monthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	months := 0

	if s := r.URL.Query().Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			render.Error(w, http.StatusBadRequest, "months must be a positive integer", nil)
			return
		}

		months = n
	}

	points, err := h.ledger.MonthlySpending(r.Context(), userID, months)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to calculate monthly spending", err)
		return
	}

	render.OK(w, "spending", points)
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	rng, err := h.ledger.ParseRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	totals, err := h.ledger.CategorySpending(r.Context(), userID, rng)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to calculate category spending", err)
		return
	}

	render.OK(w, "categories", totals)
}

// Summary is mounted at /api/summary.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	rng, err := h.ledger.ParseRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	summary, err := h.ledger.Summary(r.Context(), userID, rng)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to build summary", err)
		return
	}

	render.OK(w, "summary", summary)
}
