package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus moves pending -> completed or pending -> failed, once.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// TransactionKind is a display classification. It is not checked against the amount sign.
type TransactionKind string

const (
	KindDebit    TransactionKind = "debit"
	KindCredit   TransactionKind = "credit"
	KindTransfer TransactionKind = "transfer"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	switch k {
	case KindDebit, KindCredit, KindTransfer:
		return true
	}
	return false
}

// ClassifyTransfer derives the kind from which sides are internal.
func ClassifyTransfer(fromAccountID, toAccountID string) TransactionKind {
	switch {
	case IsExternal(fromAccountID):
		return KindCredit
	case IsExternal(toAccountID):
		return KindDebit
	default:
		return KindTransfer
	}
}

// Transaction is one entry of the append-only log.
//
// Amount is the signed effect on the primary account of the request: the source when
// it is internal, the destination otherwise. Withdrawals and internal transfers are
// therefore negative and external deposits positive.
type Transaction struct {
	ID            string
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	Description   string
	Timestamp     time.Time
	Status        TransactionStatus
	Kind          TransactionKind
	Sequence      int64
}

// SignedAmount applies the sign convention to an unsigned transfer magnitude.
func SignedAmount(fromAccountID string, magnitude decimal.Decimal) decimal.Decimal {
	if IsExternal(fromAccountID) {
		return magnitude.Abs()
	}
	return magnitude.Abs().Neg()
}

// NewTransaction builds a validated pending transaction.
func NewTransaction(id, fromAccountID, toAccountID string, magnitude decimal.Decimal, description string, timestamp time.Time) (*Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("transaction id is required")
	}
	if fromAccountID == "" || toAccountID == "" {
		return nil, errors.New("transaction participants are required")
	}
	if err := ValidateAmount(magnitude); err != nil {
		return nil, err
	}
	if timestamp.IsZero() {
		return nil, errors.New("transaction timestamp is required")
	}
	return &Transaction{
		ID:            id,
		FromAccountID: fromAccountID,
		ToAccountID:   toAccountID,
		Amount:        SignedAmount(fromAccountID, magnitude),
		Description:   description,
		Timestamp:     timestamp.UTC(),
		Status:        StatusPending,
		Kind:          ClassifyTransfer(fromAccountID, toAccountID),
	}, nil
}

// Magnitude is the unsigned amount moved.
func (t *Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

// Touches reports whether the transaction has accountID on either side.
func (t *Transaction) Touches(accountID string) bool {
	return t.FromAccountID == accountID || t.ToAccountID == accountID
}

// EffectOn is the balance change the transaction applies to accountID.
// Failed and pending records have no effect.
func (t *Transaction) EffectOn(accountID string) decimal.Decimal {
	if t.Status != StatusCompleted {
		return decimal.Zero
	}
	effect := decimal.Zero
	if t.FromAccountID == accountID {
		effect = effect.Sub(t.Magnitude())
	}
	if t.ToAccountID == accountID {
		effect = effect.Add(t.Magnitude())
	}
	return effect
}

// Advance moves a pending transaction to a terminal status.
func (t *Transaction) Advance(status TransactionStatus) error {
	if t.Status != StatusPending {
		return fmt.Errorf("transaction %s is %s, not pending", t.ID, t.Status)
	}
	if status != StatusCompleted && status != StatusFailed {
		return fmt.Errorf("invalid terminal status %q", status)
	}
	t.Status = status
	return nil
}

// Clone returns an independent copy.
func (t *Transaction) Clone() *Transaction {
	cp := *t
	return &cp
}
