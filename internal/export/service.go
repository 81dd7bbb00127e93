// Package export writes canonical transactions out as CSV files that the
// statement importer can read back.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/format"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
)

// Header is the column layout of exported files.
var Header = []string{
	"date", "name", "amount", "category", "merchant_name", "account_id", "account_name",
	"institution_name", "pending", "transaction_id", "iso_currency_code",
}

// Service exports a user's ledger.
type Service struct {
	ledger *ledger.Service
}

func NewService(l *ledger.Service) *Service {
	return &Service{ledger: l}
}

// Export writes the user's transactions within r to w and returns how many
// rows were written.
func (s *Service) Export(ctx context.Context, userID string, r ledger.Range, w io.Writer) (int, error) {
	txs, err := s.ledger.Transactions(ctx, userID, r)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	if err := WriteCSV(w, txs); err != nil {
		return 0, err
	}

	return len(txs), nil
}

// ExportFile writes the export into dir under Filename(r) and returns its path.
func (s *Service) ExportFile(ctx context.Context, userID string, r ledger.Range, dir string) (string, int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, Filename(r))

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	n, err := s.Export(ctx, userID, r, f)
	if err != nil {
		return "", 0, err
	}

	if err := f.Close(); err != nil {
		return "", 0, fmt.Errorf("writing file: %w", err)
	}

	return path, n, nil
}

// Filename names an export by its period, e.g. transactions_20250101_20250131.csv.
func Filename(r ledger.Range) string {
	return fmt.Sprintf("transactions_%s_%s.csv", r.Start.Format("20060102"), r.End.Format("20060102"))
}

func WriteCSV(w io.Writer, txs []finance.Transaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, t := range txs {
		record := []string{
			t.Date.String(),
			t.Name,
			decimal.NewFromFloat(t.Amount).StringFixed(2),
			t.Category,
			t.MerchantName,
			t.AccountID,
			t.AccountName,
			t.InstitutionName,
			strconv.FormatBool(t.Pending),
			t.TransactionID,
			t.ISOCurrencyCode,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing transaction %s: %w", t.TransactionID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// TextReport renders one line per transaction for quick sharing.
func TextReport(txs []finance.Transaction) string {
	var sb strings.Builder

	for _, t := range txs {
		status := t.Category
		if t.Pending {
			status += " (pending)"
		}

		fmt.Fprintf(&sb, "* %s | %s | %s | %s\n",
			format.Date(t.Date.String()), t.Name, format.Currency(t.Amount, t.ISOCurrencyCode), status)
	}

	return sb.String()
}
