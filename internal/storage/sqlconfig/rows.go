package sqlconfig

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// accountRow is the accounts table as scanned by scan.StructMapper.
type accountRow struct {
	ID            string          `db:"id"`
	OwnerID       string          `db:"owner_id"`
	Type          string          `db:"type"`
	Balance       decimal.Decimal `db:"balance"`
	DisplayNumber string          `db:"display_number"`
	CreatedAt     time.Time       `db:"created_at"`
}

var accountColumns = []any{"id", "owner_id", "type", "balance", "display_number", "created_at"}

func rowToAccount(row accountRow) *ledger.Account {
	return &ledger.Account{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		Type:          ledger.AccountType(row.Type),
		Balance:       row.Balance,
		DisplayNumber: row.DisplayNumber,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

type transactionRow struct {
	ID            string          `db:"id"`
	FromAccountID string          `db:"from_account_id"`
	ToAccountID   string          `db:"to_account_id"`
	Amount        decimal.Decimal `db:"amount"`
	Description   string          `db:"description"`
	OccurredAt    time.Time       `db:"occurred_at"`
	Status        string          `db:"status"`
	Kind          string          `db:"kind"`
	Sequence      int64           `db:"sequence"`
}

var transactionColumns = []any{
	"id", "from_account_id", "to_account_id", "amount", "description",
	"occurred_at", "status", "kind", "sequence",
}

func rowToTransaction(row transactionRow) *ledger.Transaction {
	return &ledger.Transaction{
		ID:            row.ID,
		FromAccountID: row.FromAccountID,
		ToAccountID:   row.ToAccountID,
		Amount:        row.Amount,
		Description:   row.Description,
		Timestamp:     row.OccurredAt.UTC(),
		Status:        ledger.TransactionStatus(row.Status),
		Kind:          ledger.TransactionKind(row.Kind),
		Sequence:      row.Sequence,
	}
}
