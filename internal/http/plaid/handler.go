package plaid

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finlink/internal/banking"
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
	r.Post("/create-link-token", h.createLinkToken)
	r.Post("/exchange-public-token", h.exchangePublicToken)
	r.Get("/accounts", h.ListAccounts)
	r.Delete("/accounts/{accountId}", h.removeAccount)
	r.Get("/transactions", h.ListTransactions)
}

type linkTokenResponse struct {
	Success bool `json:"success"`
	*banking.LinkToken
}

func (h *Handler) createLinkToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	token, err := h.ledger.CreateLinkToken(r.Context(), userID)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to create link token", err)
		return
	}

	render.JSON(w, http.StatusOK, linkTokenResponse{Success: true, LinkToken: token})
}

type exchangeRequest struct {
	PublicToken string `json:"public_token"`
	Metadata    struct {
		Institution banking.Institution `json:"institution"`
	} `json:"metadata"`
}

func (h *Handler) exchangePublicToken(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		render.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	accounts, err := h.ledger.ExchangePublicToken(r.Context(), userID, req.PublicToken, req.Metadata.Institution)
	if err != nil {
		if errors.Is(err, ledger.ErrMissingPublicToken) {
			render.Error(w, http.StatusBadRequest, "Public token is required", nil)
			return
		}

		render.Error(w, http.StatusInternalServerError, "Failed to exchange public token", err)

		return
	}

	render.OK(w, "accounts", accounts)
}

// ListAccounts is also mounted at /api/accounts.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	accounts, err := h.ledger.Accounts(r.Context(), userID)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to fetch accounts", err)
		return
	}

	render.OK(w, "accounts", accounts)
}

func (h *Handler) removeAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	err := h.ledger.RemoveAccount(r.Context(), userID, chi.URLParam(r, "accountId"))
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			render.Error(w, http.StatusNotFound, "Account not found", nil)
			return
		}

		if errors.Is(err, ledger.ErrDemoAccount) {
			render.Error(w, http.StatusBadRequest, "Demo accounts cannot be removed", nil)
			return
		}

		render.Error(w, http.StatusInternalServerError, "Failed to remove account", err)

		return
	}

	render.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ListTransactions is also mounted at /api/transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	rng, err := h.ledger.ParseRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	txs, err := h.ledger.Transactions(r.Context(), userID, rng)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to fetch transactions", err)
		return
	}

	render.OK(w, "transactions", txs)
}
