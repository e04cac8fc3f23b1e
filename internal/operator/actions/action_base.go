package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
)

// Ledger is the write surface actions run against. *service.LedgerService implements it.
type Ledger interface {
	Execute(ctx context.Context, req service.TransferRequest) (ledger.Transaction, error)
	OpenAccount(ctx context.Context, req service.OpenAccountRequest) (ledger.Account, error)
}

type IAction interface {
	Perform(ctx context.Context, l Ledger) error
}
