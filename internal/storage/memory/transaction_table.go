package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

type transactionTable struct {
	store *Store
	unit  *unit
}

var _ storage.ITransactionTable = (*transactionTable)(nil)

func (t *transactionTable) FindByID(_ context.Context, id string) (*ledger.Transaction, error) {
	var override ledger.TransactionStatus
	if t.unit != nil {
		t.unit.mu.Lock()
		if i, ok := t.unit.txnIndex[id]; ok {
			txn := t.unit.txns[i].Clone()
			t.unit.mu.Unlock()
			return txn, nil
		}
		override = t.unit.statuses[id]
		t.unit.mu.Unlock()
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	i, ok := t.store.txnIndex[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	txn := t.store.txns[i].Clone()
	if override != "" {
		txn.Status = override
	}
	return txn, nil
}

func (t *transactionTable) Insert(ctx context.Context, txn *ledger.Transaction) error {
	if t.unit == nil {
		return errReadOnly
	}
	if err := t.unit.check(); err != nil {
		return err
	}
	if _, err := t.FindByID(ctx, txn.ID); err == nil {
		return fmt.Errorf("memory: transaction %s already exists", txn.ID)
	}

	txn.Sequence = t.store.reserveSequence()

	t.unit.mu.Lock()
	defer t.unit.mu.Unlock()
	t.unit.txnIndex[txn.ID] = len(t.unit.txns)
	t.unit.txns = append(t.unit.txns, txn.Clone())
	return nil
}

func (t *transactionTable) UpdateStatus(ctx context.Context, id string, status ledger.TransactionStatus) error {
	if t.unit == nil {
		return errReadOnly
	}
	if err := t.unit.check(); err != nil {
		return err
	}
	txn, err := t.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := txn.Advance(status); err != nil {
		return err
	}

	t.unit.mu.Lock()
	defer t.unit.mu.Unlock()
	if i, ok := t.unit.txnIndex[id]; ok {
		t.unit.txns[i].Status = status
		return nil
	}
	t.unit.statuses[id] = status
	return nil
}

func (t *transactionTable) List(_ context.Context, filter *storage.TransactionFilter) ([]*ledger.Transaction, error) {
	var staged []*ledger.Transaction
	var statuses map[string]ledger.TransactionStatus
	if t.unit != nil {
		t.unit.mu.Lock()
		for _, txn := range t.unit.txns {
			staged = append(staged, txn.Clone())
		}
		statuses = make(map[string]ledger.TransactionStatus, len(t.unit.statuses))
		for id, status := range t.unit.statuses {
			statuses[id] = status
		}
		t.unit.mu.Unlock()
	}

	t.store.mu.RLock()
	all := make([]*ledger.Transaction, 0, len(t.store.txns)+len(staged))
	for _, txn := range t.store.txns {
		cp := txn.Clone()
		if status, ok := statuses[cp.ID]; ok {
			cp.Status = status
		}
		all = append(all, cp)
	}
	t.store.mu.RUnlock()
	all = append(all, staged...)

	result := all
	if filter != nil && filter.AccountIDs != nil {
		wanted := make(map[string]struct{}, len(filter.AccountIDs))
		for _, id := range filter.AccountIDs {
			wanted[id] = struct{}{}
		}
		result = result[:0]
		for _, txn := range all {
			_, from := wanted[txn.FromAccountID]
			_, to := wanted[txn.ToAccountID]
			if from || to {
				result = append(result, txn)
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].Sequence > result[j].Sequence
	})

	if filter != nil && filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}
