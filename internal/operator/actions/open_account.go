package actions

import (
	"context"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
)

type OpenAccount struct {
	Request service.OpenAccountRequest

	// Result is set once Perform succeeds.
	Result ledger.Account
}

func (o *OpenAccount) Perform(ctx context.Context, l Ledger) error {
	acc, err := l.OpenAccount(ctx, o.Request)
	if err != nil {
		return err
	}
	o.Result = acc
	return nil
}
