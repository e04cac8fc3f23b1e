package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExternalAccountID is the reserved participant id for a party outside the ledger
// (another bank, cash). It never names a stored account.
const ExternalAccountID = "external"

// AccountType is the closed set of account kinds.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
	AccountTypeCredit   AccountType = "credit"
)

var accountTypes = []AccountType{AccountTypeChecking, AccountTypeSavings, AccountTypeCredit}

// AccountTypes returns every known account type.
func AccountTypes() []AccountType {
	out := make([]AccountType, len(accountTypes))
	copy(out, accountTypes)
	return out
}

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	for _, known := range accountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the stored name of the type.
func (t AccountType) String() string { return string(t) }

// ParseAccountType accepts the type name case-insensitively.
func ParseAccountType(s string) (AccountType, error) {
	t := AccountType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown account type %q", s)
	}
	return t, nil
}

// Account is a stored account. Balance is only changed by the ledger service.
type Account struct {
	ID            string
	OwnerID       string
	Type          AccountType
	Balance       decimal.Decimal
	DisplayNumber string
	CreatedAt     time.Time
}

// NewAccount builds a validated account record with a zero balance.
func NewAccount(id, ownerID string, accountType AccountType, displayNumber string, createdAt time.Time) (*Account, error) {
	if strings.TrimSpace(id) == "" {
		return nil, errors.New("account id is required")
	}
	if id == ExternalAccountID {
		return nil, fmt.Errorf("account id %q is reserved", id)
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, errors.New("account owner is required")
	}
	if !accountType.Valid() {
		return nil, fmt.Errorf("unknown account type %q", accountType)
	}
	return &Account{
		ID:            id,
		OwnerID:       ownerID,
		Type:          accountType,
		Balance:       decimal.Zero,
		DisplayNumber: MaskAccountNumber(displayNumber),
		CreatedAt:     createdAt.UTC(),
	}, nil
}

// Clone returns a copy that shares nothing mutable with a.
func (a *Account) Clone() *Account {
	cp := *a
	return &cp
}

// MaskAccountNumber keeps the last four digits of a full account number.
// Already masked or short values are returned unchanged.
func MaskAccountNumber(number string) string {
	number = strings.TrimSpace(number)
	if number == "" || strings.HasPrefix(number, "*") {
		return number
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) <= 4 {
		return number
	}
	return "****" + digits[len(digits)-4:]
}

// IsExternal reports whether id is the external sentinel.
func IsExternal(id string) bool {
	return id == ExternalAccountID
}
