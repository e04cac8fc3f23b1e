package transaction

import (
	"time"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID            string `json:"id" doc:"Transaction identifier"`
	FromAccountID string `json:"fromAccountID" doc:"Source account, or 'external'"`
	ToAccountID   string `json:"toAccountID" doc:"Destination account, or 'external'"`
	Amount        string `json:"amount" doc:"Signed decimal amount: negative when money leaves the primary account"`
	Description   string `json:"description" doc:"Free text"`
	Timestamp     string `json:"timestamp" doc:"RFC3339 creation time"`
	Status        string `json:"status" enum:"pending,completed,failed" doc:"Lifecycle status"`
	Kind          string `json:"kind" enum:"debit,credit,transfer" doc:"Display classification"`
}

// FromLedger renders a transaction for the API.
func FromLedger(txn ledger.Transaction) Transaction {
	return Transaction{
		ID:            txn.ID,
		FromAccountID: txn.FromAccountID,
		ToAccountID:   txn.ToAccountID,
		Amount:        txn.Amount.StringFixed(ledger.MoneyPlaces),
		Description:   txn.Description,
		Timestamp:     txn.Timestamp.Format(time.RFC3339),
		Status:        string(txn.Status),
		Kind:          string(txn.Kind),
	}
}

// FromLedgerList renders a list, never nil.
func FromLedgerList(txns []ledger.Transaction) []Transaction {
	out := make([]Transaction, len(txns))
	for i, txn := range txns {
		out[i] = FromLedger(txn)
	}
	return out
}
