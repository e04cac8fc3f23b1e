package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// AccountsByOwner returns the owner's accounts in a stable order. An owner without
// accounts gets an empty slice.
func (s *LedgerService) AccountsByOwner(ctx context.Context, ownerID string) ([]ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accountsByOwner(ctx, ownerID)
}

func (s *LedgerService) accountsByOwner(ctx context.Context, ownerID string) ([]ledger.Account, error) {
	rows, err := s.storage.Accounts.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list accounts of %s: %w", ownerID, err)
	}
	return lo.Map(rows, func(acc *ledger.Account, _ int) ledger.Account { return *acc }), nil
}

// Account looks up one account. The external sentinel is never found.
func (s *LedgerService) Account(ctx context.Context, accountID string) (ledger.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, err := s.storage.Accounts.FindByID(ctx, accountID, false)
	if errors.Is(err, storage.ErrNotFound) {
		return ledger.Account{}, ledger.AccountNotFound("accountId", accountID)
	}
	if err != nil {
		return ledger.Account{}, fmt.Errorf("find account %s: %w", accountID, err)
	}
	return *acc, nil
}

// AccountBalance returns the current balance of one account.
func (s *LedgerService) AccountBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	acc, err := s.Account(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Balance, nil
}

// AccountByType returns the owner's first account of the given type. Owners are
// expected to hold at most one account per type; with duplicates the earliest
// opened one wins.
func (s *LedgerService) AccountByType(ctx context.Context, ownerID string, accountType ledger.AccountType) (ledger.Account, error) {
	accounts, err := s.AccountsByOwner(ctx, ownerID)
	if err != nil {
		return ledger.Account{}, err
	}
	acc, ok := lo.Find(accounts, func(a ledger.Account) bool { return a.Type == accountType })
	if !ok {
		return ledger.Account{}, ledger.AccountNotFound("accountType", string(accountType))
	}
	return acc, nil
}

// TotalBalance sums the owner's balances; zero when the owner has no accounts.
func (s *LedgerService) TotalBalance(ctx context.Context, ownerID string) (decimal.Decimal, error) {
	accounts, err := s.AccountsByOwner(ctx, ownerID)
	if err != nil {
		return decimal.Zero, err
	}
	return totalBalance(accounts), nil
}

func totalBalance(accounts []ledger.Account) decimal.Decimal {
	total := decimal.Zero
	for _, acc := range accounts {
		total = total.Add(acc.Balance)
	}
	return total
}

// OpenAccount provisions an account and books its opening balance.
func (s *LedgerService) OpenAccount(ctx context.Context, req OpenAccountRequest) (ledger.Account, error) {
	if req.OpeningBalance.IsNegative() {
		return ledger.Account{}, ledger.InvalidAmount(req.OpeningBalance.String(), errors.New("opening balance cannot be negative"))
	}
	if !req.OpeningBalance.IsZero() {
		if err := ledger.ValidateAmount(req.OpeningBalance); err != nil {
			return ledger.Account{}, err
		}
	}

	id := req.ID
	if id == "" {
		var err error
		if id, err = s.newID(); err != nil {
			return ledger.Account{}, fmt.Errorf("generate account id: %w", err)
		}
	}
	openedAt := req.OpenedAt
	if openedAt.IsZero() {
		openedAt = s.now()
	}
	acc, err := ledger.NewAccount(id, req.OwnerID, req.Type, req.DisplayNumber, openedAt)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("open account: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writer, err := s.storage.Write(ctx)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("open write unit: %w", err)
	}
	if err := s.provision(ctx, writer, acc, req.OpeningBalance, openedAt); err != nil {
		_ = writer.Rollback(ctx)
		return ledger.Account{}, err
	}
	if err := writer.Commit(ctx); err != nil {
		_ = writer.Rollback(ctx)
		return ledger.Account{}, fmt.Errorf("commit account %s: %w", acc.ID, err)
	}

	s.logger.WithFields(logrus.Fields{
		"accountID":   acc.ID,
		"ownerID":     acc.OwnerID,
		"accountType": acc.Type,
	}).Info("LedgerService.OpenAccount.Complete")
	return *acc, nil
}

func (s *LedgerService) provision(ctx context.Context, writer *storage.Writer, acc *ledger.Account, opening decimal.Decimal, openedAt time.Time) error {
	if err := writer.Accounts.Insert(ctx, acc); err != nil {
		return fmt.Errorf("insert account %s: %w", acc.ID, err)
	}
	if opening.IsZero() {
		return nil
	}

	txnID, err := s.newID()
	if err != nil {
		return fmt.Errorf("generate transaction id: %w", err)
	}
	txn, err := ledger.NewTransaction(txnID, ledger.ExternalAccountID, acc.ID, opening, "Opening deposit", openedAt)
	if err != nil {
		return err
	}
	if err := apply(ctx, writer, txn, nil, acc); err != nil {
		return err
	}
	acc.Balance = acc.Balance.Add(opening)
	return nil
}
