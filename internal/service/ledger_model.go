package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// DefaultRecentLimit is the number of entries RecentTransactions returns by default.
const DefaultRecentLimit = 5

// TransferRequest moves Amount from FromAccountID to ToAccountID. Either side may be
// ledger.ExternalAccountID.
type TransferRequest struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	// EffectiveAt back-dates the record for imports and seeding. Zero means now.
	EffectiveAt time.Time
}

// OpenAccountRequest provisions an account. A positive OpeningBalance is booked as
// a deposit from the external party in the same unit.
type OpenAccountRequest struct {
	// ID is generated when empty.
	ID             string
	OwnerID        string
	Type           ledger.AccountType
	DisplayNumber  string
	OpeningBalance decimal.Decimal
	OpenedAt       time.Time
}

// Summary is the dashboard view of one owner, read in a single consistent pass.
type Summary struct {
	OwnerID         string
	Accounts        []ledger.Account
	TotalBalance    decimal.Decimal
	MonthlySpending decimal.Decimal
	Recent          []ledger.Transaction
	ReferenceDate   time.Time
}

// Reconciliation compares a stored balance with the one rebuilt from the log.
type Reconciliation struct {
	AccountID     string
	Balance       decimal.Decimal
	Reconstructed decimal.Decimal
	Drift         decimal.Decimal
	Entries       int
}

func (r Reconciliation) Consistent() bool {
	return r.Drift.IsZero()
}
