package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// Reconcile rebuilds an account balance from the completed log entries touching it
// and reports any difference from the stored balance.
func (s *LedgerService) Reconcile(ctx context.Context, accountID string) (Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, err := s.storage.Accounts.FindByID(ctx, accountID, false)
	if errors.Is(err, storage.ErrNotFound) {
		return Reconciliation{}, ledger.AccountNotFound("accountId", accountID)
	}
	if err != nil {
		return Reconciliation{}, fmt.Errorf("find account %s: %w", accountID, err)
	}
	return s.reconcile(ctx, *acc)
}

// ReconcileOwner reconciles every account of the owner.
func (s *LedgerService) ReconcileOwner(ctx context.Context, ownerID string) ([]Reconciliation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := s.accountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]Reconciliation, 0, len(accounts))
	for _, acc := range accounts {
		rec, err := s.reconcile(ctx, acc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *LedgerService) reconcile(ctx context.Context, acc ledger.Account) (Reconciliation, error) {
	txns, err := s.transactionsFor(ctx, []string{acc.ID}, 0)
	if err != nil {
		return Reconciliation{}, err
	}
	rebuilt := decimal.Zero
	entries := 0
	for i := range txns {
		if txns[i].Status != ledger.StatusCompleted {
			continue
		}
		rebuilt = rebuilt.Add(txns[i].EffectOn(acc.ID))
		entries++
	}
	rec := Reconciliation{
		AccountID:     acc.ID,
		Balance:       acc.Balance,
		Reconstructed: rebuilt,
		Drift:         acc.Balance.Sub(rebuilt),
		Entries:       entries,
	}
	if !rec.Consistent() {
		s.logger.WithField("accountID", acc.ID).WithField("drift", rec.Drift.String()).Warn("LedgerService.Reconcile.Drift")
	}
	return rec, nil
}
