// Package render writes the JSON bodies every API endpoint answers with.
// Failures share one envelope: {"success": false, "message": ..., "error": ...}.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// OK answers {"success": true, key: v}.
func OK(w http.ResponseWriter, key string, v any) {
	JSON(w, http.StatusOK, map[string]any{"success": true, key: v})
}

// Error answers with the failure envelope. err, when set, is passed through in
// the "error" field; server errors are also logged.
func Error(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Error = err.Error()
	}

	if status >= http.StatusInternalServerError {
		slog.Error(message, "status", status, "error", err)
	}

	JSON(w, status, resp)
}

func NotFound(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusNotFound, "Not found", nil)
}

func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
}

// Recoverer turns a handler panic into a 500 failure envelope.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}

			if err, ok := rvr.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rvr)
			}

			slog.Error("handler panicked", "path", r.URL.Path, "panic", rvr, "stack", string(debug.Stack()))

			if r.Header.Get("Connection") != "Upgrade" {
				Error(w, http.StatusInternalServerError, "Internal server error", fmt.Errorf("%v", rvr))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
