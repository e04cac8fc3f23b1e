package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
)

type Transfer struct {
	Request service.TransferRequest

	// Result holds the booked transaction, or the failed record on ApplicationFailure.
	Result ledger.Transaction
}

func (t *Transfer) Perform(ctx context.Context, l Ledger) error {
	txn, err := l.Execute(ctx, t.Request)
	t.Result = txn
	return err
}
