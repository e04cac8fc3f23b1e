package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// Transfer moves amount between two participants and returns the booked transaction.
// Validation failures leave the store and log untouched. Calling Transfer twice
// books two transactions.
func (s *LedgerService) Transfer(ctx context.Context, fromAccountID, toAccountID string, amount decimal.Decimal, description string) (ledger.Transaction, error) {
	return s.Execute(ctx, TransferRequest{
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        amount,
		Description:   description,
	})
}

// Execute is Transfer with the request as a struct.
func (s *LedgerService) Execute(ctx context.Context, req TransferRequest) (ledger.Transaction, error) {
	start := time.Now()
	txn, err := s.execute(ctx, req)
	s.metrics.ObserveTransfer(transferOutcome(err), time.Since(start))

	entry := s.logger.WithFields(logrus.Fields{
		"fromAccountID": req.FromAccountID,
		"toAccountID":   req.ToAccountID,
		"amount":        req.Amount.String(),
	})
	switch ledger.KindOf(err) {
	case "":
		if err != nil {
			entry.WithError(err).Error("LedgerService.Transfer.Error")
			break
		}
		entry.WithField("transactionID", txn.ID).Info("LedgerService.Transfer.Complete")
	case ledger.KindApplicationFailure:
		entry.WithError(err).Error("LedgerService.Transfer.ApplicationFailure")
	default:
		entry.WithError(err).Info("LedgerService.Transfer.Rejected")
	}
	return txn, err
}

func transferOutcome(err error) string {
	if err == nil {
		return string(ledger.StatusCompleted)
	}
	if kind := ledger.KindOf(err); kind != "" {
		return string(kind)
	}
	return "error"
}

func (s *LedgerService) execute(ctx context.Context, req TransferRequest) (ledger.Transaction, error) {
	if err := ledger.ValidateAmount(req.Amount); err != nil {
		return ledger.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writer, err := s.storage.Write(ctx)
	if err != nil {
		return ledger.Transaction{}, ledger.ApplicationFailure("", fmt.Errorf("open write unit: %w", err))
	}
	closed := false
	defer func() {
		if !closed {
			_ = writer.Rollback(ctx)
		}
	}()

	from, to, err := s.validate(ctx, writer, req)
	if err != nil {
		return ledger.Transaction{}, err
	}

	txn, err := s.newTransaction(req)
	if err != nil {
		return ledger.Transaction{}, ledger.ApplicationFailure("", err)
	}

	if err := apply(ctx, writer, txn, from, to); err != nil {
		closed = true
		_ = writer.Rollback(ctx)
		return s.recordFailure(ctx, txn, err)
	}
	closed = true
	if err := writer.Commit(ctx); err != nil {
		_ = writer.Rollback(ctx)
		return s.recordFailure(ctx, txn, fmt.Errorf("commit: %w", err))
	}
	return *txn, nil
}

// validate runs the checks in order: source exists, source covers the amount,
// destination exists, participants are distinct. The amount itself is checked
// before the lock is taken. Participating rows are locked in id order first so
// concurrent units on a shared database cannot deadlock.
func (s *LedgerService) validate(ctx context.Context, writer *storage.Writer, req TransferRequest) (from, to *ledger.Account, err error) {
	found := make(map[string]*ledger.Account, 2)
	for _, id := range lockOrder(req.FromAccountID, req.ToAccountID) {
		acc, err := writer.Accounts.FindByID(ctx, id, true)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, ledger.ApplicationFailure("", fmt.Errorf("load account %s: %w", id, err))
		}
		found[id] = acc
	}

	if !ledger.IsExternal(req.FromAccountID) {
		from = found[req.FromAccountID]
		if from == nil {
			return nil, nil, ledger.AccountNotFound("fromAccountId", req.FromAccountID)
		}
		if from.Balance.LessThan(req.Amount) {
			return nil, nil, ledger.InsufficientFunds(from.ID, from.Balance, req.Amount)
		}
	}
	if !ledger.IsExternal(req.ToAccountID) {
		to = found[req.ToAccountID]
		if to == nil {
			return nil, nil, ledger.AccountNotFound("toAccountId", req.ToAccountID)
		}
	}

	switch {
	case from == nil && to == nil:
		return nil, nil, ledger.InvalidParticipants("toAccountId", req.ToAccountID, "both sides are external")
	case req.FromAccountID == req.ToAccountID:
		return nil, nil, ledger.InvalidParticipants("toAccountId", req.ToAccountID, "source and destination are the same account")
	}
	return from, to, nil
}

func lockOrder(ids ...string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if ledger.IsExternal(id) || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *LedgerService) newTransaction(req TransferRequest) (*ledger.Transaction, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate transaction id: %w", err)
	}
	at := req.EffectiveAt
	if at.IsZero() {
		at = s.now()
	}
	return ledger.NewTransaction(id, req.FromAccountID, req.ToAccountID, req.Amount, req.Description, at)
}

// apply books txn inside the unit: append pending, move balances, complete.
func apply(ctx context.Context, writer *storage.Writer, txn *ledger.Transaction, from, to *ledger.Account) error {
	if err := writer.Transactions.Insert(ctx, txn); err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	if from != nil {
		if _, err := writer.Accounts.UpdateBalance(ctx, from.ID, from.Balance.Sub(txn.Magnitude())); err != nil {
			return fmt.Errorf("debit %s: %w", from.ID, err)
		}
	}
	if to != nil {
		if _, err := writer.Accounts.UpdateBalance(ctx, to.ID, to.Balance.Add(txn.Magnitude())); err != nil {
			return fmt.Errorf("credit %s: %w", to.ID, err)
		}
	}
	if err := writer.Transactions.UpdateStatus(ctx, txn.ID, ledger.StatusCompleted); err != nil {
		return fmt.Errorf("complete transaction: %w", err)
	}
	return txn.Advance(ledger.StatusCompleted)
}

// recordFailure appends a failed copy of txn in a fresh unit so the attempt stays
// visible in the log, and reports ApplicationFailure. Balances are never touched.
func (s *LedgerService) recordFailure(ctx context.Context, txn *ledger.Transaction, cause error) (ledger.Transaction, error) {
	failed := txn.Clone()
	failed.Status = ledger.StatusPending
	failed.Sequence = 0

	if err := s.appendFailed(ctx, failed); err != nil {
		s.logger.WithError(err).WithField("transactionID", txn.ID).Warn("LedgerService.Transfer.RecordFailureError")
		failed.Status = ledger.StatusFailed
	}
	return *failed, ledger.ApplicationFailure(txn.ID, cause)
}

func (s *LedgerService) appendFailed(ctx context.Context, txn *ledger.Transaction) error {
	writer, err := s.storage.Write(ctx)
	if err != nil {
		return err
	}
	if err := writer.Transactions.Insert(ctx, txn); err != nil {
		_ = writer.Rollback(ctx)
		return err
	}
	if err := writer.Transactions.UpdateStatus(ctx, txn.ID, ledger.StatusFailed); err != nil {
		_ = writer.Rollback(ctx)
		return err
	}
	if err := writer.Commit(ctx); err != nil {
		_ = writer.Rollback(ctx)
		return err
	}
	return txn.Advance(ledger.StatusFailed)
}
