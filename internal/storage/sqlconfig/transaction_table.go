package sqlconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

var _ storage.ITransactionTable = (*TransactionsTable)(nil)

type TransactionsTable struct {
	exec bob.Executor
}

func NewTransactionsTable(exec bob.Executor) *TransactionsTable {
	return &TransactionsTable{exec: exec}
}

// FindByID retrieves a transaction by primary key.
func (t *TransactionsTable) FindByID(ctx context.Context, id string) (*ledger.Transaction, error) {
	query := psql.Select(
		sm.Columns(transactionColumns...),
		sm.From("transactions"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, t.exec, query, scan.StructMapper[transactionRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToTransaction(row), nil
}

// Insert appends txn and sets txn.Sequence from the generated column.
func (t *TransactionsTable) Insert(ctx context.Context, txn *ledger.Transaction) error {
	query := psql.Insert(
		im.Into("transactions",
			"id", "from_account_id", "to_account_id", "amount", "description",
			"occurred_at", "status", "kind"),
		im.Values(psql.Arg(
			txn.ID,
			txn.FromAccountID,
			txn.ToAccountID,
			txn.Amount,
			txn.Description,
			txn.Timestamp,
			string(txn.Status),
			string(txn.Kind),
		)),
		im.Returning("sequence"),
	)
	seq, err := bob.One(ctx, t.exec, query, scan.SingleColumnMapper[int64])
	if err != nil {
		return err
	}
	txn.Sequence = seq
	return nil
}

// UpdateStatus advances a pending transaction. Rows that are not pending are left alone
// and reported as an error.
func (t *TransactionsTable) UpdateStatus(ctx context.Context, id string, status ledger.TransactionStatus) error {
	if status != ledger.StatusCompleted && status != ledger.StatusFailed {
		return fmt.Errorf("invalid terminal status %q", status)
	}
	query := psql.Update(
		um.Table("transactions"),
		um.SetCol("status").ToArg(string(status)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("status").EQ(psql.Arg(string(ledger.StatusPending)))),
	)
	res, err := bob.Exec(ctx, t.exec, query)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w or not pending", id, storage.ErrNotFound)
	}
	return nil
}

// List returns transactions matching the filter, most recent first. Nil filter returns all.
func (t *TransactionsTable) List(ctx context.Context, filter *storage.TransactionFilter) ([]*ledger.Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(transactionColumns...),
		sm.From("transactions"),
	}
	if filter != nil {
		if filter.AccountIDs != nil {
			if len(filter.AccountIDs) == 0 {
				return []*ledger.Transaction{}, nil
			}
			ids := lo.ToAnySlice(lo.Uniq(filter.AccountIDs))
			queryMods = append(queryMods, sm.Where(psql.Or(
				psql.Quote("from_account_id").In(psql.Arg(ids...)),
				psql.Quote("to_account_id").In(psql.Arg(ids...)),
			)))
		}
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit))
		}
	}
	queryMods = append(queryMods,
		sm.OrderBy(psql.Quote("occurred_at")).Desc(),
		sm.OrderBy(psql.Quote("sequence")).Desc(),
	)
	rows, err := bob.All(ctx, t.exec, psql.Select(queryMods...), scan.StructMapper[transactionRow]())
	if err != nil {
		return nil, err
	}
	result := make([]*ledger.Transaction, len(rows))
	for i, row := range rows {
		result[i] = rowToTransaction(row)
	}
	return result, nil
}
