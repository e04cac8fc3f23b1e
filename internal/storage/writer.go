package storage

import (
	"context"
)

// Tx is the commit handle of a backend transaction.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Writer groups the tables of one unit of work. Reads through a Writer see the
// unit's own uncommitted writes.
type Writer struct {
	tx           Tx
	Accounts     IAccountTable
	Transactions ITransactionTable
}

func NewWriter(tx Tx, accounts IAccountTable, transactions ITransactionTable) *Writer {
	return &Writer{
		tx:           tx,
		Accounts:     accounts,
		Transactions: transactions,
	}
}

func (w *Writer) Commit(ctx context.Context) error {
	return w.tx.Commit(ctx)
}

func (w *Writer) Rollback(ctx context.Context) error {
	return w.tx.Rollback(ctx)
}
