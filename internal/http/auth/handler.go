package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finlink/internal/auth"
	"github.com/MrJamesThe3rd/finlink/internal/http/render"
	"github.com/MrJamesThe3rd/finlink/internal/user"
)

type Handler struct {
	users  *user.Service
	tokens *auth.Manager
}

func NewHandler(users *user.Service, tokens *auth.Manager) *Handler {
	return &Handler{users: users, tokens: tokens}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.With(Authenticate(h.tokens)).Get("/me", h.me)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type loginResponse struct {
	Success   bool         `json:"success"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	_, err := h.users.Register(r.Context(), user.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrMissingFields):
			render.Error(w, http.StatusBadRequest, "Email and password are required", nil)
		case errors.Is(err, user.ErrUserExists):
			render.Error(w, http.StatusBadRequest, "User already exists", nil)
		default:
			render.Error(w, http.StatusInternalServerError, "Failed to register user", err)
		}

		return
	}

	render.JSON(w, http.StatusCreated, messageResponse{Success: true, Message: "User registered successfully"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrMissingFields):
			render.Error(w, http.StatusBadRequest, "Email and password are required", nil)
		case errors.Is(err, user.ErrInvalidCredentials):
			render.Error(w, http.StatusUnauthorized, "Invalid email or password", nil)
		default:
			render.Error(w, http.StatusInternalServerError, "Failed to log in", err)
		}

		return
	}

	token, exp, err := h.tokens.Issue(u.ID, u.Email, u.Name)
	if err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	render.JSON(w, http.StatusOK, loginResponse{
		Success:   true,
		Token:     token,
		ExpiresAt: exp,
		User:      userResponse{ID: u.ID, Email: u.Email, Name: u.Name},
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusUnauthorized, "Authorization header missing", nil)
		return
	}

	resp := userResponse{ID: id.ID, Email: id.Email, Name: id.Name}

	if !id.Mock {
		u, err := h.users.Get(r.Context(), id.ID)
		if err != nil && !errors.Is(err, user.ErrNotFound) {
			render.Error(w, http.StatusInternalServerError, "Failed to load user", err)
			return
		}

		if u != nil {
			resp = userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
		}
	}

	render.OK(w, "user", resp)
}
