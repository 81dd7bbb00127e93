// Package importer turns uploaded CSV bank statements into raw transaction
// records.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/finlink/internal/encoding"
	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

// ErrUnknownFormat is returned when no profile matches the statement header.
var ErrUnknownFormat = errors.New("unrecognized statement format")

// statementNamespace seeds the deterministic IDs given to statement rows, so
// importing the same file twice yields the same transaction IDs.
var statementNamespace = uuid.MustParse("6f1c3b5e-2d0a-4b8e-9c47-0d5a1e8f3b21")

var delimiters = []rune{',', ';', '\t'}

// Statement is a parsed CSV statement.
type Statement struct {
	Profile      string
	Charset      string
	Transactions []finance.RawTransaction
}

// Parser reads CSV bank statements into raw transaction records. It detects
// the charset, the delimiter and which known column layout is used.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) (*Statement, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	for _, delim := range delimiters {
		rows, err := readRows(data, delim)
		if err != nil {
			continue
		}

		profile, cols, headerIdx := detectProfile(rows)
		if profile == nil {
			continue
		}

		txs, err := parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
		if err != nil {
			return nil, err
		}

		return &Statement{Profile: profile.Name, Charset: charset, Transactions: txs}, nil
	}

	return nil, ErrUnknownFormat
}

func readRows(data []byte, delim rune) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	return rows, nil
}

// colIndex maps lower-cased column names to their index in the row.
type colIndex map[string]int

func (c colIndex) lookup(names ...string) int {
	for _, n := range names {
		if i, ok := c[n]; ok {
			return i
		}
	}

	return -1
}

// detectProfile scans rows for a header that matches a known profile.
// Returns the matched profile, column index map and header row index.
func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")))
			if _, dup := cols[name]; name != "" && !dup {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// parseRows extracts transactions from data rows using the matched profile.
// headerRowNum is the 0-based index of the header in the original file (for error messages).
func parseRows(p *Profile, cols colIndex, rows [][]string, headerRowNum int) ([]finance.RawTransaction, error) {
	var (
		dateIdx     = cols[p.DateCol]
		descIdx     = cols[p.DescCol]
		extraDesc   = -1
		categoryIdx = cols.lookup(colCategory)
		merchantIdx = cols.lookup(colMerchant, colMerchantShort)
		acctIDIdx   = cols.lookup(colAccountID)
		acctNameIdx = cols.lookup(colAccountName, colAccount)
		typeIdx     = cols.lookup(colTransactionType, colType)
		pendingIdx  = cols.lookup(colPending)
		currencyIdx = cols.lookup(colCurrency, colISOCurrency)
		txIDIdx     = cols.lookup(colTransactionID)
		instIdx     = cols.lookup(colInstitution)
	)

	if p.DescCol != colDescription {
		extraDesc = cols.lookup(colDescription)
	}

	txs := make([]finance.RawTransaction, 0, len(rows))

	for i, row := range rows {
		rowNum := headerRowNum + i + 1 // 1-based line number

		date, ok := parseDate(cellValue(row, dateIdx), p.DateLayouts)
		if !ok {
			continue
		}

		name := cellValue(row, descIdx)
		if name == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		amount, txType, ok := parseRowAmount(p, cols, row)
		if !ok {
			continue
		}

		if t := strings.ToLower(cellValue(row, typeIdx)); t != "" {
			txType = t
		}

		tx := finance.RawTransaction{
			Name:            name,
			Description:     cellValue(row, extraDesc),
			MerchantName:    cellValue(row, merchantIdx),
			AccountID:       cellValue(row, acctIDIdx),
			AccountName:     cellValue(row, acctNameIdx),
			Amount:          finance.NumberFromDecimal(amount),
			Date:            date,
			Category:        finance.CategoryField(cellValue(row, categoryIdx)),
			Pending:         finance.Flag(isTrue(cellValue(row, pendingIdx))),
			TransactionType: txType,
			InstitutionName: cellValue(row, instIdx),
			ISOCurrencyCode: strings.ToUpper(cellValue(row, currencyIdx)),
		}

		tx.TransactionID = cellValue(row, txIDIdx)
		if tx.TransactionID == "" {
			tx.TransactionID = rowID(p.Name, rowNum, tx)
		}

		txs = append(txs, tx)
	}

	return txs, nil
}

func rowID(profile string, rowNum int, tx finance.RawTransaction) string {
	amount, _ := tx.Amount.Decimal()
	key := fmt.Sprintf("%s|%d|%s|%s|%s|%s", profile, rowNum, tx.Date, tx.Name, amount.String(), tx.AccountID)

	return "stmt-" + uuid.NewSHA1(statementNamespace, []byte(key)).String()
}

// parseDate tries each layout in turn. Empty and unparsable cells (footer rows
// and the like) report false.
func parseDate(s string, layouts []string) (finance.Date, bool) {
	if s == "" {
		return finance.Date{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return finance.DateOf(t), true
		}
	}

	if d, err := finance.ParseDate(s); err == nil {
		return d, true
	}

	return finance.Date{}, false
}

// parseRowAmount returns the signed amount of a row (negative = outflow) and
// the transaction type implied by it.
func parseRowAmount(p *Profile, cols colIndex, row []string) (decimal.Decimal, string, bool) {
	switch p.AmountMode {
	case amountSingle:
		d, err := parseAmount(cellValue(row, cols[p.AmountCol]), p.DecimalComma)
		if err != nil || d.IsZero() {
			return decimal.Zero, "", false
		}

		if d.IsNegative() {
			return d, "debit", true
		}

		return d, "credit", true
	case amountSplit:
		if d, err := parseAmount(cellValue(row, cols[p.DebitCol]), p.DecimalComma); err == nil && !d.IsZero() {
			return d.Abs().Neg(), "debit", true
		}

		if d, err := parseAmount(cellValue(row, cols[p.CreditCol]), p.DecimalComma); err == nil && !d.IsZero() {
			return d.Abs(), "credit", true
		}
	}

	return decimal.Zero, "", false
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func isTrue(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return true
	}

	return false
}
