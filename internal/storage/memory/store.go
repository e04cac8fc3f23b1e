// Package memory is the in-process storage backend. It is the authoritative store
// for tests, the CLI and single-node demo deployments.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

var errUnitClosed = errors.New("memory: unit already committed or rolled back")

// Store holds committed accounts and the transaction log.
type Store struct {
	mu       sync.RWMutex
	accounts map[string]*ledger.Account
	order    []string
	txns     []*ledger.Transaction
	txnIndex map[string]int
	nextSeq  int64
}

func New() *Store {
	return &Store{
		accounts: make(map[string]*ledger.Account),
		txnIndex: make(map[string]int),
	}
}

// NewStorage returns a Storage over a fresh, empty Store.
func NewStorage() *storage.Storage {
	return New().Storage()
}

// Storage exposes the store through the backend-neutral tables.
func (s *Store) Storage() *storage.Storage {
	return storage.New(
		&accountTable{store: s},
		&transactionTable{store: s},
		s.begin,
		nil,
	)
}

func (s *Store) begin(_ context.Context) (*storage.Writer, error) {
	u := &unit{
		store:    s,
		accounts: make(map[string]*ledger.Account),
		statuses: make(map[string]ledger.TransactionStatus),
		txnIndex: make(map[string]int),
	}
	return storage.NewWriter(u, &accountTable{store: s, unit: u}, &transactionTable{store: s, unit: u}), nil
}

func (s *Store) reserveSequence() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSeq++
	return s.nextSeq
}

// unit stages the writes of one storage.Writer. Nothing reaches the Store until Commit,
// which applies everything under a single lock so readers never see half a unit.
type unit struct {
	store *Store

	mu       sync.Mutex
	closed   bool
	accounts map[string]*ledger.Account
	newIDs   []string
	txns     []*ledger.Transaction
	txnIndex map[string]int
	statuses map[string]ledger.TransactionStatus
}

func (u *unit) Commit(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return errUnitClosed
	}
	u.closed = true

	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range u.newIDs {
		if _, exists := s.accounts[id]; exists {
			return errors.New("memory: account " + id + " already exists")
		}
	}
	for _, txn := range u.txns {
		if _, exists := s.txnIndex[txn.ID]; exists {
			return errors.New("memory: transaction " + txn.ID + " already exists")
		}
	}

	for id, acc := range u.accounts {
		s.accounts[id] = acc
	}
	s.order = append(s.order, u.newIDs...)
	for id, status := range u.statuses {
		s.txns[s.txnIndex[id]].Status = status
	}
	for _, txn := range u.txns {
		s.txnIndex[txn.ID] = len(s.txns)
		s.txns = append(s.txns, txn)
	}
	return nil
}

func (u *unit) Rollback(_ context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	return nil
}

func (u *unit) check() error {
	if u.closed {
		return errUnitClosed
	}
	return nil
}
