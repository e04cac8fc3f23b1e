package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

func backdated(t *testing.T, svc *LedgerService, from, to, amount, desc string, at time.Time) ledger.Transaction {
	t.Helper()
	txn, err := svc.Execute(context.Background(), TransferRequest{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        dec(amount),
		Description:   desc,
		EffectiveAt:   at,
	})
	require.NoError(t, err)
	return txn
}

func TestAccountsByOwner(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "12450.75")
	openAccount(t, svc, "acc_2", owner, ledger.AccountTypeSavings, "8750.25")
	openAccount(t, svc, "acc_3", "admin@blueoakbank.com", ledger.AccountTypeChecking, "50000")

	accounts, err := svc.AccountsByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "acc_1", accounts[0].ID)
	assert.Equal(t, "acc_2", accounts[1].ID)

	none, err := svc.AccountsByOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = svc.Account(ctx, "acc_9")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	_, err = svc.Account(ctx, ledger.ExternalAccountID)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestTotalBalance(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "12450.75")
	openAccount(t, svc, "acc_2", owner, ledger.AccountTypeSavings, "8750.25")

	total, err := svc.TotalBalance(ctx, owner)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("21201.00")))

	accounts, err := svc.AccountsByOwner(ctx, owner)
	require.NoError(t, err)
	sum := dec("0")
	for _, acc := range accounts {
		sum = sum.Add(acc.Balance)
	}
	assert.True(t, total.Equal(sum))

	empty, err := svc.TotalBalance(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())
}

func TestAccountByType(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "1")
	openAccount(t, svc, "acc_2", owner, ledger.AccountTypeSavings, "2")
	openAccount(t, svc, "acc_4", owner, ledger.AccountTypeSavings, "3")

	acc, err := svc.AccountByType(ctx, owner, ledger.AccountTypeSavings)
	require.NoError(t, err)
	assert.Equal(t, "acc_2", acc.ID, "first match wins")

	_, err = svc.AccountByType(ctx, owner, ledger.AccountTypeCredit)
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestTransactionsForOwner_OrderAndScope(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "100")
	openAccount(t, svc, "acc_3", "admin@blueoakbank.com", ledger.AccountTypeChecking, "100")

	jan := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	early := backdated(t, svc, "acc_1", ledger.ExternalAccountID, "4.50", "Coffee Shop", jan)
	late := backdated(t, svc, "acc_3", "acc_1", "10", "Refund", jan.Add(2*time.Hour))
	backdated(t, svc, "acc_3", ledger.ExternalAccountID, "1", "Not betty's", jan.Add(3*time.Hour))

	history, err := svc.TransactionsForOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, history, 3, "two transfers plus the opening deposit")
	assert.Equal(t, "Opening deposit", history[0].Description, "opened a day before testNow")
	assert.Equal(t, late.ID, history[1].ID, "incoming transfers are included")
	assert.Equal(t, early.ID, history[2].ID)

	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.After(history[i-1].Timestamp))
	}

	none, err := svc.TransactionsForOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRecentTransactions(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "100")
	for i := 0; i < 7; i++ {
		_, err := svc.Transfer(ctx, "acc_1", ledger.ExternalAccountID, dec("1"), "")
		require.NoError(t, err)
	}

	recent, err := svc.RecentTransactions(ctx, owner, 0)
	require.NoError(t, err)
	assert.Len(t, recent, DefaultRecentLimit)

	two, err := svc.RecentTransactions(ctx, owner, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
	assert.Equal(t, recent[0].ID, two[0].ID)
}

func TestMonthlySpending(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "200")

	jan := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	backdated(t, svc, "acc_1", ledger.ExternalAccountID, "4.50", "Coffee Shop", jan)
	backdated(t, svc, "acc_1", ledger.ExternalAccountID, "87.32", "Groceries", jan.AddDate(0, 0, 5))
	backdated(t, svc, ledger.ExternalAccountID, "acc_1", "3500.00", "Salary Deposit", jan.AddDate(0, 0, 5))
	backdated(t, svc, "acc_1", ledger.ExternalAccountID, "20", "February", jan.AddDate(0, 1, 0))
	backdated(t, svc, "acc_1", ledger.ExternalAccountID, "30", "Last year", jan.AddDate(-1, 0, 0))

	spent, err := svc.MonthlySpending(ctx, owner, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, spent.Equal(dec("91.82")), "got %s", spent)

	feb, err := svc.MonthlySpending(ctx, owner, jan.AddDate(0, 1, 3))
	require.NoError(t, err)
	assert.True(t, feb.Equal(dec("20")))

	none, err := svc.MonthlySpending(ctx, "nobody", jan)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
}

func TestMonthlySpending_UsesReferenceLocation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "100")

	// 2024-02-01 03:00 UTC is still January in New York.
	backdated(t, svc, "acc_1", ledger.ExternalAccountID, "5", "late night", time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC))

	ny := time.FixedZone("EST", -5*60*60)
	jan, err := svc.MonthlySpending(ctx, owner, time.Date(2024, 1, 15, 0, 0, 0, 0, ny))
	require.NoError(t, err)
	assert.True(t, jan.Equal(dec("5")))

	febUTC, err := svc.MonthlySpending(ctx, owner, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, febUTC.Equal(dec("5")))
}

func TestMonthlySpending_InboundTransferIsNotSpending(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "alice_chk", "alice", ledger.AccountTypeChecking, "500")
	openAccount(t, svc, "bob_chk", "bob", ledger.AccountTypeChecking, "0")

	_, err := svc.Transfer(ctx, "alice_chk", "bob_chk", dec("100.00"), "rent share")
	require.NoError(t, err)

	received, err := svc.MonthlySpending(ctx, "bob", testNow)
	require.NoError(t, err)
	assert.True(t, received.IsZero(), "got %s", received)

	sent, err := svc.MonthlySpending(ctx, "alice", testNow)
	require.NoError(t, err)
	assert.True(t, sent.Equal(dec("100")), "got %s", sent)
}

func TestMonthlySpending_OwnAccountMoveIsNotSpending(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "200")
	openAccount(t, svc, "acc_2", owner, ledger.AccountTypeSavings, "0")

	_, err := svc.Transfer(ctx, "acc_1", "acc_2", dec("50.00"), "to savings")
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, "acc_2", ledger.ExternalAccountID, dec("7.25"), "Lunch")
	require.NoError(t, err)

	spent, err := svc.MonthlySpending(ctx, owner, testNow)
	require.NoError(t, err)
	assert.True(t, spent.Equal(dec("7.25")), "got %s", spent)

	summary, err := svc.Summary(ctx, owner, testNow)
	require.NoError(t, err)
	assert.True(t, summary.MonthlySpending.Equal(dec("7.25")), "got %s", summary.MonthlySpending)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "12450.75")
	openAccount(t, svc, "acc_2", owner, ledger.AccountTypeSavings, "8750.25")
	_, err := svc.Transfer(ctx, "acc_1", ledger.ExternalAccountID, dec("4.50"), "Coffee Shop")
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, owner, testNow)
	require.NoError(t, err)
	assert.Equal(t, owner, summary.OwnerID)
	assert.Len(t, summary.Accounts, 2)
	assert.True(t, summary.TotalBalance.Equal(dec("21196.50")))
	assert.True(t, summary.MonthlySpending.Equal(dec("4.50")))
	require.Len(t, summary.Recent, 3)
	assert.Equal(t, "Coffee Shop", summary.Recent[0].Description)
}

func TestReconcile_BalancesMatchLog(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)
	openAccount(t, svc, "acc_1", owner, ledger.AccountTypeChecking, "500")
	openAccount(t, svc, "acc_2", owner, ledger.AccountTypeSavings, "0")

	_, err := svc.Transfer(ctx, "acc_1", "acc_2", dec("120.10"), "")
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, ledger.ExternalAccountID, "acc_2", dec("3500"), "")
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, "acc_2", ledger.ExternalAccountID, dec("9.99"), "")
	require.NoError(t, err)
	_, err = svc.Transfer(ctx, "acc_1", ledger.ExternalAccountID, dec("1000"), "")
	require.ErrorIs(t, err, ledger.ErrInsufficientFunds)

	recs, err := svc.ReconcileOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, rec := range recs {
		assert.True(t, rec.Consistent(), "%s: balance %s rebuilt %s", rec.AccountID, rec.Balance, rec.Reconstructed)
	}
	assert.Equal(t, 2, recs[0].Entries)
	assert.Equal(t, 3, recs[1].Entries)

	rec, err := svc.Reconcile(ctx, "acc_2")
	require.NoError(t, err)
	assert.True(t, rec.Balance.Equal(dec("3610.11")))

	_, err = svc.Reconcile(ctx, "acc_9")
	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
}

func TestOpenAccount(t *testing.T) {
	ctx := context.Background()
	svc, hook := newTestService(t, nil)

	acc, err := svc.OpenAccount(ctx, OpenAccountRequest{
		OwnerID:        owner,
		Type:           ledger.AccountTypeCredit,
		DisplayNumber:  "4000 1234 5678 4321",
		OpeningBalance: dec("25.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "id_1", acc.ID)
	assert.Equal(t, "****4321", acc.DisplayNumber)
	assert.True(t, acc.Balance.Equal(dec("25")))
	assert.Equal(t, testNow, acc.CreatedAt)
	assert.Equal(t, "LedgerService.OpenAccount.Complete", hook.LastEntry().Message)

	history, err := svc.TransactionsForOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ledger.KindCredit, history[0].Kind)

	_, err = svc.OpenAccount(ctx, OpenAccountRequest{ID: acc.ID, OwnerID: "someone", Type: ledger.AccountTypeChecking})
	assert.Error(t, err, "ids are unique")

	_, err = svc.OpenAccount(ctx, OpenAccountRequest{OwnerID: owner, Type: ledger.AccountTypeChecking, OpeningBalance: dec("-1")})
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)
}
