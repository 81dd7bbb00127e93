package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MrJamesThe3rd/finlink/internal/export"
	httpauth "github.com/MrJamesThe3rd/finlink/internal/http/auth"
	"github.com/MrJamesThe3rd/finlink/internal/http/render"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
)

type Handler struct {
	svc    *export.Service
	ledger *ledger.Service
}

func NewHandler(svc *export.Service, l *ledger.Service) *Handler {
	return &Handler{svc: svc, ledger: l}
}

// Download answers with the transactions of the requested period as a CSV
// attachment. It is mounted at /api/transactions/export.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	rng, err := h.ledger.ParseRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		render.Error(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}

	// Buffered so a failure can still be reported as JSON.
	var buf bytes.Buffer

	if _, err := h.svc.Export(r.Context(), userID, rng, &buf); err != nil {
		render.Error(w, http.StatusInternalServerError, "Failed to export transactions", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(rng)))

	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write export", "error", err)
	}
}
