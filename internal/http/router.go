package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/finlink/internal/auth"
	httpauth "github.com/MrJamesThe3rd/finlink/internal/http/auth"
	"github.com/MrJamesThe3rd/finlink/internal/http/categories"
	"github.com/MrJamesThe3rd/finlink/internal/http/export"
	"github.com/MrJamesThe3rd/finlink/internal/http/importcsv"
	"github.com/MrJamesThe3rd/finlink/internal/http/plaid"
	"github.com/MrJamesThe3rd/finlink/internal/http/render"
	"github.com/MrJamesThe3rd/finlink/internal/http/spending"
	"github.com/MrJamesThe3rd/finlink/internal/http/system"
)

type Handlers struct {
	System     *system.Handler
	Auth       *httpauth.Handler
	Plaid      *plaid.Handler
	Spending   *spending.Handler
	Categories *categories.Handler
	Import     *importcsv.Handler
	Export     *export.Handler
}

// New builds the API router. timeout bounds every request; zero disables it.
func New(h Handlers, tokens *auth.Manager, timeout time.Duration) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(render.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	if timeout > 0 {
		router.Use(middleware.Timeout(timeout))
	}

	router.NotFound(render.NotFound)
	router.MethodNotAllowed(render.MethodNotAllowed)

	router.Route("/api", func(r chi.Router) {
		h.System.Routes(r)

		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Auth.Routes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(httpauth.Authenticate(tokens))

			r.Route("/plaid", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Plaid.Routes(r)
			})

			r.Get("/accounts", h.Plaid.ListAccounts)
			r.Get("/transactions", h.Plaid.ListTransactions)
			r.Get("/transactions/export", h.Export.Download)

			r.Route("/spending", h.Spending.Routes)
			r.Get("/summary", h.Spending.Summary)

			r.Route("/categories", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Categories.Routes(r)
			})

			r.Route("/import", h.Import.Routes)
		})
	})

	return router
}
