package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
)

var testNow = time.Date(2024, 1, 20, 15, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sequentialIDs() func() (string, error) {
	var n atomic.Int64
	return func() (string, error) {
		return fmt.Sprintf("id_%d", n.Add(1)), nil
	}
}

func newTestService(t *testing.T, store *storage.Storage) (*LedgerService, *test.Hook) {
	t.Helper()
	if store == nil {
		store = memory.NewStorage()
	}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	svc := NewLedgerService(store,
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(sequentialIDs()),
		WithLogger(logger),
	)
	return svc, hook
}

func openAccount(t *testing.T, svc *LedgerService, id, owner string, accountType ledger.AccountType, balance string) ledger.Account {
	t.Helper()
	acc, err := svc.OpenAccount(context.Background(), OpenAccountRequest{
		ID:             id,
		OwnerID:        owner,
		Type:           accountType,
		OpeningBalance: dec(balance),
		OpenedAt:       testNow.Add(-24 * time.Hour),
	})
	require.NoError(t, err)
	return acc
}

type snapshot struct {
	accounts map[string]string
	log      []ledger.Transaction
}

func takeSnapshot(t *testing.T, svc *LedgerService, owners ...string) snapshot {
	t.Helper()
	ctx := context.Background()
	snap := snapshot{accounts: make(map[string]string)}
	for _, owner := range owners {
		accounts, err := svc.AccountsByOwner(ctx, owner)
		require.NoError(t, err)
		for _, acc := range accounts {
			snap.accounts[acc.ID] = acc.Balance.String()
		}
	}
	rows, err := svc.storage.Transactions.List(ctx, nil)
	require.NoError(t, err)
	for _, row := range rows {
		snap.log = append(snap.log, *row)
	}
	return snap
}

func balanceOf(t *testing.T, svc *LedgerService, id string) decimal.Decimal {
	t.Helper()
	bal, err := svc.AccountBalance(context.Background(), id)
	require.NoError(t, err)
	return bal
}

// failingAccounts fails UpdateBalance for one account id.
type failingAccounts struct {
	storage.IAccountTable
	failID string
}

func (f *failingAccounts) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) (*ledger.Account, error) {
	if id == f.failID {
		return nil, fmt.Errorf("disk full")
	}
	return f.IAccountTable.UpdateBalance(ctx, id, balance)
}

// failingCommit fails the next commit once when armed.
type failingCommit struct {
	storage.Tx
	fail *atomic.Bool
}

func (f *failingCommit) Commit(ctx context.Context) error {
	if f.fail.CompareAndSwap(true, false) {
		_ = f.Tx.Rollback(ctx)
		return fmt.Errorf("connection reset")
	}
	return f.Tx.Commit(ctx)
}

func flakyStorage(inner *storage.Storage, failID string, failCommit *atomic.Bool) *storage.Storage {
	return storage.New(inner.Accounts, inner.Transactions, func(ctx context.Context) (*storage.Writer, error) {
		w, err := inner.Write(ctx)
		if err != nil {
			return nil, err
		}
		return storage.NewWriter(
			&failingCommit{Tx: w, fail: failCommit},
			&failingAccounts{IAccountTable: w.Accounts, failID: failID},
			w.Transactions,
		), nil
	}, nil)
}
