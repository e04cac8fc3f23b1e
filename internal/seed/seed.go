// Package seed loads account and transaction fixtures into a ledger.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
)

//go:embed demo.yaml
var demoFixture []byte

type Fixture struct {
	Accounts     []AccountFixture     `yaml:"accounts"`
	Transactions []TransactionFixture `yaml:"transactions"`
}

type AccountFixture struct {
	ID             string    `yaml:"id"`
	Owner          string    `yaml:"owner"`
	Type           string    `yaml:"type"`
	Number         string    `yaml:"number"`
	OpeningBalance string    `yaml:"openingBalance"`
	OpenedAt       time.Time `yaml:"openedAt"`
}

type TransactionFixture struct {
	From        string    `yaml:"from"`
	To          string    `yaml:"to"`
	Amount      string    `yaml:"amount"`
	Description string    `yaml:"description"`
	At          time.Time `yaml:"at"`
}

// Ledger is the part of the ledger service seeding writes through.
type Ledger interface {
	Account(ctx context.Context, accountID string) (ledger.Account, error)
	OpenAccount(ctx context.Context, req service.OpenAccountRequest) (ledger.Account, error)
	Execute(ctx context.Context, req service.TransferRequest) (ledger.Transaction, error)
}

type Result struct {
	Accounts     int
	Transactions int
	// Skipped is set when the fixture's accounts already exist.
	Skipped bool
}

func Parse(data []byte) (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Fixture{}, fmt.Errorf("seed: parse fixture: %w", err)
	}
	if err := f.validate(); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

// Load reads the fixture at path, or the embedded demo fixture when path is empty.
func Load(path string) (Fixture, error) {
	if path == "" {
		return Parse(demoFixture)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(data)
}

func (f Fixture) validate() error {
	dupes := lo.FindDuplicates(lo.Map(f.Accounts, func(a AccountFixture, _ int) string { return a.ID }))
	if len(dupes) > 0 {
		return fmt.Errorf("seed: duplicate account ids %v", dupes)
	}
	for i, a := range f.Accounts {
		if a.ID == "" || a.Owner == "" {
			return fmt.Errorf("seed: account %d: id and owner are required", i)
		}
		if _, err := ledger.ParseAccountType(a.Type); err != nil {
			return fmt.Errorf("seed: account %s: %w", a.ID, err)
		}
	}
	for i, t := range f.Transactions {
		if t.From == "" || t.To == "" {
			return fmt.Errorf("seed: transaction %d: from and to are required", i)
		}
		if _, err := ledger.ParseAmount(t.Amount); err != nil {
			return fmt.Errorf("seed: transaction %d: %w", i, err)
		}
	}
	return nil
}

// ErrPartiallySeeded is returned when only some of a fixture's accounts exist,
// which means an earlier Apply stopped partway.
var ErrPartiallySeeded = errors.New("seed: fixture partially applied")

// Apply opens the fixture's accounts then books its transactions in order. A fixture
// whose accounts all exist already is skipped, so restarting against a persistent
// backend does not double-book. If only some exist, Apply refuses with
// ErrPartiallySeeded and names the missing accounts.
func Apply(ctx context.Context, l Ledger, f Fixture, logger *logrus.Logger) (Result, error) {
	var existing, missing []string
	for _, a := range f.Accounts {
		_, err := l.Account(ctx, a.ID)
		switch {
		case err == nil:
			existing = append(existing, a.ID)
		case errors.Is(err, ledger.ErrAccountNotFound):
			missing = append(missing, a.ID)
		default:
			return Result{}, fmt.Errorf("seed: check existing %s: %w", a.ID, err)
		}
	}
	if len(existing) > 0 {
		if len(missing) > 0 {
			logger.WithFields(logrus.Fields{
				"existing": existing,
				"missing":  missing,
			}).Error("Seed.Apply.Partial")
			return Result{}, fmt.Errorf("%w: missing accounts %v", ErrPartiallySeeded, missing)
		}
		logger.WithField("accounts", len(existing)).Info("Seed.Apply.Skipped")
		return Result{Skipped: true}, nil
	}

	var res Result
	for _, a := range f.Accounts {
		req, err := a.request()
		if err != nil {
			return res, err
		}
		if _, err := l.OpenAccount(ctx, req); err != nil {
			return res, fmt.Errorf("seed: open %s: %w", a.ID, err)
		}
		res.Accounts++
	}

	for i, t := range f.Transactions {
		amount, err := ledger.ParseAmount(t.Amount)
		if err != nil {
			return res, fmt.Errorf("seed: transaction %d: %w", i, err)
		}
		_, err = l.Execute(ctx, service.TransferRequest{
			FromAccountID: t.From,
			ToAccountID:   t.To,
			Amount:        amount,
			Description:   t.Description,
			EffectiveAt:   t.At,
		})
		if err != nil {
			return res, fmt.Errorf("seed: transaction %d: %w", i, err)
		}
		res.Transactions++
	}

	logger.WithFields(logrus.Fields{
		"accounts":     res.Accounts,
		"transactions": res.Transactions,
	}).Info("Seed.Apply.Complete")
	return res, nil
}

func (a AccountFixture) request() (service.OpenAccountRequest, error) {
	accountType, err := ledger.ParseAccountType(a.Type)
	if err != nil {
		return service.OpenAccountRequest{}, err
	}
	opening := decimal.Zero
	if a.OpeningBalance != "" {
		if opening, err = decimal.NewFromString(a.OpeningBalance); err != nil {
			return service.OpenAccountRequest{}, fmt.Errorf("seed: account %s opening balance: %w", a.ID, err)
		}
	}
	return service.OpenAccountRequest{
		ID:             a.ID,
		OwnerID:        a.Owner,
		Type:           accountType,
		DisplayNumber:  a.Number,
		OpeningBalance: opening,
		OpenedAt:       a.OpenedAt,
	}, nil
}
