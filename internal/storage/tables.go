package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// IAccountTable defines the account store operations.
// This abstraction allows swapping the implementation (memory, Bob) without changing callers.
type IAccountTable interface {
	// FindByID returns ErrNotFound for unknown ids and for the external sentinel.
	// forUpdate locks the row until the unit ends on backends that support it.
	FindByID(ctx context.Context, id string, forUpdate bool) (*ledger.Account, error)
	// ListByOwner returns the owner's accounts in creation order.
	ListByOwner(ctx context.Context, ownerID string) ([]*ledger.Account, error)
	Insert(ctx context.Context, account *ledger.Account) error
	UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) (*ledger.Account, error)
}

// TransactionFilter selects log entries. Results are ordered most recent first.
type TransactionFilter struct {
	// AccountIDs keeps entries touching any of the ids on either side. Nil means all,
	// an empty non-nil slice matches nothing.
	AccountIDs []string
	Limit      int
}

// ITransactionTable defines the transaction log operations. The log is append-only;
// only the status of an entry may change.
type ITransactionTable interface {
	FindByID(ctx context.Context, id string) (*ledger.Transaction, error)
	// Insert appends txn and assigns its Sequence.
	Insert(ctx context.Context, txn *ledger.Transaction) error
	UpdateStatus(ctx context.Context, id string, status ledger.TransactionStatus) error
	List(ctx context.Context, filter *TransactionFilter) ([]*ledger.Transaction, error)
}
