package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// TransactionsForOwner returns every log entry touching one of the owner's accounts,
// most recent first.
func (s *LedgerService) TransactionsForOwner(ctx context.Context, ownerID string) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionsForOwner(ctx, ownerID, 0)
}

// RecentTransactions returns the owner's latest limit entries. A non-positive limit
// uses DefaultRecentLimit.
func (s *LedgerService) RecentTransactions(ctx context.Context, ownerID string, limit int) ([]ledger.Transaction, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionsForOwner(ctx, ownerID, limit)
}

func (s *LedgerService) transactionsForOwner(ctx context.Context, ownerID string, limit int) ([]ledger.Transaction, error) {
	accounts, err := s.accountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	ids := lo.Map(accounts, func(acc ledger.Account, _ int) string { return acc.ID })
	return s.transactionsFor(ctx, ids, limit)
}

func (s *LedgerService) transactionsFor(ctx context.Context, accountIDs []string, limit int) ([]ledger.Transaction, error) {
	if accountIDs == nil {
		accountIDs = []string{}
	}
	rows, err := s.storage.Transactions.List(ctx, &storage.TransactionFilter{
		AccountIDs: accountIDs,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return lo.Map(rows, func(txn *ledger.Transaction, _ int) ledger.Transaction { return *txn }), nil
}

// MonthlySpending sums the money that left the owner's accounts in completed
// transactions dated in the calendar month of referenceDate, in referenceDate's
// location. Each entry is netted over all of the owner's accounts, so deposits,
// inbound transfers and moves between the owner's own accounts are not spending.
func (s *LedgerService) MonthlySpending(ctx context.Context, ownerID string, referenceDate time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := s.accountsByOwner(ctx, ownerID)
	if err != nil {
		return decimal.Zero, err
	}
	ids := lo.Map(accounts, func(acc ledger.Account, _ int) string { return acc.ID })
	txns, err := s.transactionsFor(ctx, ids, 0)
	if err != nil {
		return decimal.Zero, err
	}
	return monthlySpending(txns, ids, referenceDate), nil
}

// ownerEffect is the net balance change txn applies across accountIDs.
func ownerEffect(txn ledger.Transaction, accountIDs []string) decimal.Decimal {
	effect := decimal.Zero
	for _, id := range accountIDs {
		effect = effect.Add(txn.EffectOn(id))
	}
	return effect
}

func monthlySpending(txns []ledger.Transaction, accountIDs []string, referenceDate time.Time) decimal.Decimal {
	year, month, _ := referenceDate.Date()
	total := decimal.Zero
	for _, txn := range txns {
		y, m, _ := txn.Timestamp.In(referenceDate.Location()).Date()
		if y != year || m != month {
			continue
		}
		if effect := ownerEffect(txn, accountIDs); effect.IsNegative() {
			total = total.Sub(effect)
		}
	}
	return total
}

// Summary reads the owner's dashboard figures under one lock.
func (s *LedgerService) Summary(ctx context.Context, ownerID string, referenceDate time.Time) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts, err := s.accountsByOwner(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}
	ids := lo.Map(accounts, func(acc ledger.Account, _ int) string { return acc.ID })
	txns, err := s.transactionsFor(ctx, ids, 0)
	if err != nil {
		return Summary{}, err
	}

	recent := txns
	if len(recent) > DefaultRecentLimit {
		recent = recent[:DefaultRecentLimit]
	}
	return Summary{
		OwnerID:         ownerID,
		Accounts:        accounts,
		TotalBalance:    totalBalance(accounts),
		MonthlySpending: monthlySpending(txns, ids, referenceDate),
		Recent:          recent,
		ReferenceDate:   referenceDate,
	}, nil
}
