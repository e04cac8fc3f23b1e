package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

var errReadOnly = errors.New("memory: writes require a unit of work")

type accountTable struct {
	store *Store
	unit  *unit
}

var _ storage.IAccountTable = (*accountTable)(nil)

func (t *accountTable) FindByID(_ context.Context, id string, _ bool) (*ledger.Account, error) {
	if ledger.IsExternal(id) {
		return nil, storage.ErrNotFound
	}
	if t.unit != nil {
		t.unit.mu.Lock()
		acc, ok := t.unit.accounts[id]
		t.unit.mu.Unlock()
		if ok {
			return acc.Clone(), nil
		}
	}

	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	acc, ok := t.store.accounts[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return acc.Clone(), nil
}

func (t *accountTable) ListByOwner(_ context.Context, ownerID string) ([]*ledger.Account, error) {
	var staged map[string]*ledger.Account
	var newIDs []string
	if t.unit != nil {
		t.unit.mu.Lock()
		staged = make(map[string]*ledger.Account, len(t.unit.accounts))
		for id, acc := range t.unit.accounts {
			staged[id] = acc
		}
		newIDs = append(newIDs, t.unit.newIDs...)
		t.unit.mu.Unlock()
	}

	t.store.mu.RLock()
	ids := make([]string, 0, len(t.store.order)+len(newIDs))
	ids = append(ids, t.store.order...)
	committed := make(map[string]*ledger.Account, len(t.store.order))
	for _, id := range t.store.order {
		committed[id] = t.store.accounts[id]
	}
	t.store.mu.RUnlock()
	ids = append(ids, newIDs...)

	result := make([]*ledger.Account, 0)
	for _, id := range ids {
		acc, ok := staged[id]
		if !ok {
			acc = committed[id]
		}
		if acc != nil && acc.OwnerID == ownerID {
			result = append(result, acc.Clone())
		}
	}
	return result, nil
}

func (t *accountTable) Insert(ctx context.Context, account *ledger.Account) error {
	if t.unit == nil {
		return errReadOnly
	}
	if err := t.unit.check(); err != nil {
		return err
	}
	if _, err := t.FindByID(ctx, account.ID, false); err == nil {
		return fmt.Errorf("memory: account %s already exists", account.ID)
	}

	t.unit.mu.Lock()
	defer t.unit.mu.Unlock()
	t.unit.accounts[account.ID] = account.Clone()
	t.unit.newIDs = append(t.unit.newIDs, account.ID)
	return nil
}

func (t *accountTable) UpdateBalance(ctx context.Context, id string, balance decimal.Decimal) (*ledger.Account, error) {
	if t.unit == nil {
		return nil, errReadOnly
	}
	if err := t.unit.check(); err != nil {
		return nil, err
	}
	acc, err := t.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	acc.Balance = balance

	t.unit.mu.Lock()
	defer t.unit.mu.Unlock()
	t.unit.accounts[id] = acc.Clone()
	return acc, nil
}
