package system

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finlink/internal/http/render"
)

// EnvInfo is the configuration reported by the debug endpoint. Secrets are
// only ever shown as a short prefix.
type EnvInfo struct {
	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string
	DataSource    string
	Port          string
	Environment   string
}

type Handler struct {
	env *EnvInfo
	now func() time.Time
}

// NewHandler serves the health check, and the debug endpoint when env is not nil.
func NewHandler(env *EnvInfo) *Handler {
	return &Handler{env: env, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/health-check", h.healthCheck)

	if h.env != nil {
		r.Get("/debug/env", h.debugEnv)
	}
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *Handler) healthCheck(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, http.StatusOK, healthResponse{Status: "ok", Timestamp: h.now().UTC()})
}

type plaidEnv struct {
	ClientIDSet    bool    `json:"client_id_set"`
	ClientIDPrefix *string `json:"client_id_prefix"`
	SecretSet      bool    `json:"secret_set"`
	SecretPrefix   *string `json:"secret_prefix"`
	Env            string  `json:"env"`
	DataSource     string  `json:"data_source"`
}

type serverEnv struct {
	Port    string `json:"port"`
	NodeEnv string `json:"node_env"`
}

type envResponse struct {
	Plaid  plaidEnv  `json:"plaid"`
	Server serverEnv `json:"server"`
}

func (h *Handler) debugEnv(w http.ResponseWriter, _ *http.Request) {
	render.JSON(w, http.StatusOK, envResponse{
		Plaid: plaidEnv{
			ClientIDSet:    h.env.PlaidClientID != "",
			ClientIDPrefix: prefix(h.env.PlaidClientID),
			SecretSet:      h.env.PlaidSecret != "",
			SecretPrefix:   prefix(h.env.PlaidSecret),
			Env:            orDefault(h.env.PlaidEnv, "Not set"),
			DataSource:     h.env.DataSource,
		},
		Server: serverEnv{
			Port:    orDefault(h.env.Port, "8000 (default)"),
			NodeEnv: orDefault(h.env.Environment, "development (default)"),
		},
	})
}

// prefix shows the first six characters of a secret, or nil when unset.
func prefix(s string) *string {
	if s == "" {
		return nil
	}

	p := s[:min(6, len(s))] + "..."

	return &p
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}

	return s
}
