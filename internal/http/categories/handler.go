package categories

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finlink/internal/categorize"
	httpauth "github.com/MrJamesThe3rd/finlink/internal/http/auth"
	"github.com/MrJamesThe3rd/finlink/internal/http/render"
)

type Handler struct {
	svc *categorize.Service
}

func NewHandler(svc *categorize.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/rules", h.listRules)
	r.Post("/rules", h.createRule)
	r.Get("/suggest", h.suggest)
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	rules, err := h.svc.Rules(r.Context(), userID)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to list rules", err)
		return
	}

	if rules == nil {
		rules = []*categorize.Rule{}
	}

	render.OK(w, "rules", rules)
}

type createRuleRequest struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

func (h *Handler) createRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	var req createRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rule, err := h.svc.AddRule(r.Context(), userID, req.Pattern, req.Category)
	if err != nil {
		if errors.Is(err, categorize.ErrMissingFields) {
			render.Error(w, http.StatusBadRequest, "Pattern and category are required", nil)
			return
		}

		render.Error(w, http.StatusInternalServerError, "Failed to create rule", err)

		return
	}

	render.JSON(w, http.StatusCreated, map[string]any{"success": true, "rule": rule})
}

type suggestResponse struct {
	Success  bool   `json:"success"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		render.Error(w, http.StatusBadRequest, "name query parameter is required", nil)
		return
	}

	category, err := h.svc.Suggest(r.Context(), userID, name)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to suggest category", err)
		return
	}

	render.JSON(w, http.StatusOK, suggestResponse{Success: true, Name: name, Category: category})
}
