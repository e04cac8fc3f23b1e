// Package sqlconfig is the PostgreSQL storage backend, built on bob's psql query
// builder over database/sql with the lib/pq driver.
package sqlconfig

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/storage"
)

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// NewStorage returns a Storage whose reads go through the pool and whose write
// units are database transactions.
func NewStorage(db *sql.DB) *storage.Storage {
	exec := bob.NewDB(db)
	begin := func(ctx context.Context) (*storage.Writer, error) {
		tx, err := exec.BeginTx(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("begin: %w", err)
		}
		return storage.NewWriter(tx, NewAccountsTable(tx), NewTransactionsTable(tx)), nil
	}
	return storage.New(NewAccountsTable(exec), NewTransactionsTable(exec), begin, db.Close)
}
