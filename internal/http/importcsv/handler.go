package importcsv

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/finlink/internal/categorize"
	"github.com/MrJamesThe3rd/finlink/internal/finance"
	httpauth "github.com/MrJamesThe3rd/finlink/internal/http/auth"
	"github.com/MrJamesThe3rd/finlink/internal/http/render"
	"github.com/MrJamesThe3rd/finlink/internal/importer"
)

// maxUpload bounds the multipart form kept in memory.
const maxUpload = 10 << 20

type Handler struct {
	importSvc *importer.Service
	rules     *categorize.Service
}

func NewHandler(importSvc *importer.Service, rules *categorize.Service) *Handler {
	return &Handler{importSvc: importSvc, rules: rules}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type previewResponse struct {
	Success      bool                    `json:"success"`
	Profile      string                  `json:"profile"`
	Charset      string                  `json:"charset"`
	Transactions []finance.Transaction   `json:"transactions"`
	Summary      finance.Cashflow        `json:"summary"`
	Categories   []finance.CategoryTotal `json:"categories"`
}

// importCSV parses an uploaded statement and returns what it contains.
// Nothing is stored.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	userID, ok := httpauth.UserID(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		render.Error(w, http.StatusBadRequest, "Failed to parse form", err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		render.Error(w, http.StatusBadRequest, "file field is required", nil)
		return
	}
	defer file.Close()

	preview, err := h.importSvc.Preview(file, r.FormValue("institution"))
	if err != nil {
		msg := "Failed to read statement"
		if errors.Is(err, importer.ErrUnknownFormat) {
			msg = "Unrecognized statement format"
		}

		render.Error(w, http.StatusBadRequest, msg, err)

		return
	}

	txs := preview.Transactions
	categories := preview.Categories

	if h.rules != nil {
		categorized, err := h.rules.Apply(r.Context(), userID, txs)
		if err != nil {
			slog.Error("failed to apply category rules", "user_id", userID, "error", err)
		} else {
			txs = categorized
			categories = finance.CategoryTotals(txs)
		}
	}

	render.JSON(w, http.StatusOK, previewResponse{
		Success:      true,
		Profile:      preview.Profile,
		Charset:      preview.Charset,
		Transactions: txs,
		Summary:      preview.Summary,
		Categories:   categories,
	})
}
