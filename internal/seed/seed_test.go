package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
)

func TestApply_Demo(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	svc := service.NewLedgerService(memory.NewStorage(), service.WithLogger(logger))

	f, err := Load("")
	require.NoError(t, err)

	res, err := Apply(ctx, svc, f, logger)
	require.NoError(t, err)
	assert.Equal(t, Result{Accounts: 3, Transactions: 2}, res)
	assert.Equal(t, "Seed.Apply.Complete", hook.LastEntry().Message)

	for id, want := range map[string]string{"acc_1": "12450.75", "acc_2": "8750.25", "acc_3": "50000"} {
		got, err := svc.AccountBalance(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s: got %s", id, got)
	}

	acc, err := svc.Account(ctx, "acc_2")
	require.NoError(t, err)
	assert.Equal(t, "****5678", acc.DisplayNumber)

	spent, err := svc.MonthlySpending(ctx, "betty@email.com", time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "4.5", spent.String())

	recs, err := svc.ReconcileOwner(ctx, "betty@email.com")
	require.NoError(t, err)
	for _, rec := range recs {
		assert.True(t, rec.Consistent(), rec.AccountID)
	}
}

func TestApply_SkipsWhenSeeded(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	svc := service.NewLedgerService(memory.NewStorage(), service.WithLogger(logger))
	f, err := Load("")
	require.NoError(t, err)

	_, err = Apply(ctx, svc, f, logger)
	require.NoError(t, err)
	res, err := Apply(ctx, svc, f, logger)
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, "Seed.Apply.Skipped", hook.LastEntry().Message)

	history, err := svc.TransactionsForOwner(ctx, "betty@email.com")
	require.NoError(t, err)
	assert.Len(t, history, 4, "two opening deposits plus two fixture entries")
}

func TestApply_PartialFixtureIsReported(t *testing.T) {
	ctx := context.Background()
	logger, hook := test.NewNullLogger()
	svc := service.NewLedgerService(memory.NewStorage(), service.WithLogger(logger))
	f, err := Load("")
	require.NoError(t, err)

	// An earlier run that stopped after the first account.
	_, err = Apply(ctx, svc, Fixture{Accounts: f.Accounts[:1]}, logger)
	require.NoError(t, err)

	res, err := Apply(ctx, svc, f, logger)
	assert.ErrorIs(t, err, ErrPartiallySeeded)
	assert.ErrorContains(t, err, "acc_2")
	assert.False(t, res.Skipped)
	assert.Equal(t, "Seed.Apply.Partial", hook.LastEntry().Message)

	_, err = svc.Account(ctx, "acc_2")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound, "nothing else is applied")
}

func TestApply_StopsOnRejectedTransaction(t *testing.T) {
	logger, _ := test.NewNullLogger()
	svc := service.NewLedgerService(memory.NewStorage(), service.WithLogger(logger))
	f, err := Parse([]byte(`
accounts:
  - {id: a, owner: o, type: checking}
transactions:
  - {from: a, to: external, amount: "1.00"}
`))
	require.NoError(t, err)

	res, err := Apply(context.Background(), svc, f, logger)
	assert.ErrorContains(t, err, "InsufficientFunds")
	assert.Equal(t, 1, res.Accounts)
	assert.Zero(t, res.Transactions)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"bad yaml":      "accounts: [",
		"bad type":      "accounts: [{id: a, owner: o, type: brokerage}]",
		"duplicate ids": "accounts: [{id: a, owner: o, type: checking}, {id: a, owner: p, type: savings}]",
		"missing owner": "accounts: [{id: a, type: checking}]",
		"bad amount":    "transactions: [{from: a, to: b, amount: '1.001'}]",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts: [{id: a, owner: o, type: credit}]"), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	require.Len(t, f.Accounts, 1)
	assert.Equal(t, "credit", f.Accounts[0].Type)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
