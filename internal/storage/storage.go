package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by tables when a row does not exist.
var ErrNotFound = errors.New("storage: not found")

// BeginFunc opens a write unit against a backend.
type BeginFunc func(ctx context.Context) (*Writer, error)

// Storage is the read side of a backend plus the ability to open write units.
// The tables on Storage never see uncommitted writes.
type Storage struct {
	Accounts     IAccountTable
	Transactions ITransactionTable

	begin BeginFunc
	close func() error
}

// New assembles a Storage from backend parts. closeFn may be nil.
func New(accounts IAccountTable, transactions ITransactionTable, begin BeginFunc, closeFn func() error) *Storage {
	return &Storage{
		Accounts:     accounts,
		Transactions: transactions,
		begin:        begin,
		close:        closeFn,
	}
}

// Write opens a unit of work. Every write must go through the returned Writer and
// becomes visible only after Commit.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	if s.begin == nil {
		return nil, errors.New("storage: backend is read-only")
	}
	return s.begin(ctx)
}

func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
