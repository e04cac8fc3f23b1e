package ledger

import (
	"errors"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits an amount may carry.
const MoneyPlaces = 2

// Currency is the single currency the ledger books in.
const Currency = money.USD

// ValidateAmount checks a transfer amount: positive with at most two fractional digits.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return InvalidAmount(amount.String(), errors.New("must be greater than zero"))
	}
	if !amount.Equal(amount.Truncate(MoneyPlaces)) {
		return InvalidAmount(amount.String(), errors.New("more than two fractional digits"))
	}
	return nil
}

// ParseAmount parses a decimal string and validates it as a transfer amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, InvalidAmount(s, err)
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// FormatAmount renders an amount for display, e.g. "$12,450.75".
func FormatAmount(amount decimal.Decimal) string {
	minor := amount.Round(MoneyPlaces).Shift(MoneyPlaces).IntPart()
	return money.New(minor, Currency).Display()
}
