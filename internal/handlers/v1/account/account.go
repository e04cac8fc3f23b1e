package account

import (
	"time"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// Account is the API response model for an account.
type Account struct {
	ID            string `json:"id" doc:"Account identifier"`
	OwnerID       string `json:"ownerID" doc:"Owner identity"`
	Type          string `json:"type" enum:"checking,savings,credit" doc:"Account type"`
	Balance       string `json:"balance" doc:"Decimal balance"`
	DisplayNumber string `json:"displayNumber" doc:"Masked account number, e.g. ****1234"`
	CreatedAt     string `json:"createdAt" doc:"RFC3339 creation time"`
}

func fromLedger(acc ledger.Account) Account {
	return Account{
		ID:            acc.ID,
		OwnerID:       acc.OwnerID,
		Type:          string(acc.Type),
		Balance:       acc.Balance.StringFixed(ledger.MoneyPlaces),
		DisplayNumber: acc.DisplayNumber,
		CreatedAt:     acc.CreatedAt.Format(time.RFC3339),
	}
}
