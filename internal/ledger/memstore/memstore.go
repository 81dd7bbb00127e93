// Package memstore keeps account and transaction snapshots in process memory.
package memstore

import (
	"context"
	"sync"

	"github.com/MrJamesThe3rd/finlink/internal/finance"
	"github.com/MrJamesThe3rd/finlink/internal/ledger"
)

type accountRow struct {
	itemID  string
	account finance.Account
}

type transactionRow struct {
	itemID string
	tx     finance.Transaction
}

type key struct {
	userID string
	id     string
}

type Store struct {
	mu           sync.RWMutex
	accounts     map[key]accountRow
	transactions map[key]transactionRow
}

func New() *Store {
	return &Store{
		accounts:     make(map[key]accountRow),
		transactions: make(map[key]transactionRow),
	}
}

func (s *Store) SaveAccounts(_ context.Context, userID, itemID string, accounts []finance.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range accounts {
		s.accounts[key{userID, a.AccountID}] = accountRow{itemID: itemID, account: a}
	}

	return nil
}

func (s *Store) SaveTransactions(_ context.Context, userID, itemID string, txs []finance.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range txs {
		s.transactions[key{userID, t.TransactionID}] = transactionRow{itemID: itemID, tx: t}
	}

	return nil
}

func (s *Store) AccountItem(_ context.Context, userID, accountID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.accounts[key{userID, accountID}]
	if !ok {
		return "", ledger.ErrAccountNotFound
	}

	return row.itemID, nil
}

func (s *Store) DeleteItem(_ context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, row := range s.accounts {
		if k.userID == userID && row.itemID == itemID {
			delete(s.accounts, k)
		}
	}

	for k, row := range s.transactions {
		if k.userID == userID && row.itemID == itemID {
			delete(s.transactions, k)
		}
	}

	return nil
}

// TransactionCount reports how many transactions are stored for the user.
func (s *Store) TransactionCount(userID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0

	for k := range s.transactions {
		if k.userID == userID {
			n++
		}
	}

	return n
}
