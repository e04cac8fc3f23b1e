package sqlconfig

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"
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

// AccountsTable provides access to the accounts table.
type AccountsTable struct {
	exec bob.Executor
}

// Ensure AccountsTable implements IAccountTable at compile time.
var _ storage.IAccountTable = (*AccountsTable)(nil)

// NewAccountsTable creates an AccountsTable over a pool or a transaction.
func NewAccountsTable(exec bob.Executor) *AccountsTable {
	return &AccountsTable{exec: exec}
}

// FindByID retrieves an account by primary key. forUpdate adds FOR UPDATE, which
// holds the row until the surrounding transaction ends.
func (t *AccountsTable) FindByID(ctx context.Context, id string, forUpdate bool) (*ledger.Account, error) {
	if ledger.IsExternal(id) {
		return nil, storage.ErrNotFound
	}
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(accountColumns...),
		sm.From("accounts"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	}
	if forUpdate {
		queryMods = append(queryMods, sm.ForUpdate())
	}
	row, err := bob.One(ctx, t.exec, psql.Select(queryMods...), scan.StructMapper[accountRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToAccount(row), nil
}

// ListByOwner returns the owner's accounts in insertion order.
func (t *AccountsTable) ListByOwner(ctx context.Context, ownerID string) ([]*ledger.Account, error) {
	query := psql.Select(
		sm.Columns(accountColumns...),
		sm.From("accounts"),
		sm.Where(psql.Quote("owner_id").EQ(psql.Arg(ownerID))),
		sm.OrderBy(psql.Quote("sequence")).Asc(),
	)
	rows, err := bob.All(ctx, t.exec, query, scan.StructMapper[accountRow]())
	if err != nil {
		return nil, err
	}
	result := make([]*ledger.Account, len(rows))
	for i, row := range rows {
		result[i] = rowToAccount(row)
	}
	return result, nil
}

// Insert creates a new account row.
func (t *AccountsTable) Insert(ctx context.Context, account *ledger.Account) error {
	query := psql.Insert(
		im.Into("accounts", "id", "owner_id", "type", "balance", "display_number", "created_at"),
		im.Values(psql.Arg(
			account.ID,
			account.OwnerID,
			string(account.Type),
			account.Balance,
			account.DisplayNumber,
			account.CreatedAt,
		)),
	)
	_, err := bob.Exec(ctx, t.exec, query)
	return err
}

// UpdateBalance overwrites the balance for a given account and returns the updated row.
func (t *AccountsTable) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) (*ledger.Account, error) {
	query := psql.Update(
		um.Table("accounts"),
		um.SetCol("balance").ToArg(balance),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Returning(accountColumns...),
	)
	row, err := bob.One(ctx, t.exec, query, scan.StructMapper[accountRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rowToAccount(row), nil
}
