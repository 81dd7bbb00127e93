package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
)

// Preview is an uploaded statement normalized for display. Nothing in it is
// persisted.
type Preview struct {
	Profile      string                  `json:"profile"`
	Charset      string                  `json:"charset"`
	Transactions []finance.Transaction   `json:"transactions"`
	Summary      finance.Cashflow        `json:"summary"`
	Categories   []finance.CategoryTotal `json:"categories"`
}

type Service struct {
	parser     *Parser
	normalizer *finance.Normalizer
}

func NewService(normalizer *finance.Normalizer) *Service {
	return &Service{
		parser:     NewParser(),
		normalizer: normalizer,
	}
}

// Parse reads a statement into raw records without normalizing them.
func (s *Service) Parse(r io.Reader) (*Statement, error) {
	return s.parser.Parse(r)
}

// Preview parses and normalizes a statement. Statement rows carry explicit
// debit/credit types, so amounts are signed by transaction type.
func (s *Service) Preview(r io.Reader, institution string) (*Preview, error) {
	stmt, err := s.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}

	txs := s.normalizer.Transactions(stmt.Transactions, finance.TransactionContext{
		Sign:            finance.SignTransactionType,
		InstitutionName: institution,
	})
	finance.SortNewestFirst(txs)

	return &Preview{
		Profile:      stmt.Profile,
		Charset:      stmt.Charset,
		Transactions: txs,
		Summary:      finance.SummarizeCashflow(txs),
		Categories:   finance.CategoryTotals(txs),
	}, nil
}
