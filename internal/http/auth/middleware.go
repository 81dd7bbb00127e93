package auth

import (
	"errors"
	"net/http"

	"github.com/MrJamesThe3rd/finlink/internal/auth"
	"github.com/MrJamesThe3rd/finlink/internal/http/render"
)

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity in the request context.
func Authenticate(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := tokens.FromHeader(r.Header.Get("Authorization"))
			if err != nil {
				render.Error(w, http.StatusUnauthorized, unauthorizedMessage(err), nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingHeader):
		return "Authorization header missing"
	case errors.Is(err, auth.ErrMissingToken):
		return "Token missing"
	default:
		return "Invalid token"
	}
}

// UserID returns the authenticated caller. Handlers mounted behind
// Authenticate always have one; otherwise a 401 is written and ok is false.
func UserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		render.Error(w, http.StatusUnauthorized, "Authorization header missing", nil)
		return "", false
	}

	return id.ID, true
}
