package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/service"
)

var bookedAt = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) TransactionsForOwner(ctx context.Context, ownerID string) ([]ledger.Transaction, error) {
	args := m.Called(ctx, ownerID)
	txns, _ := args.Get(0).([]ledger.Transaction)
	return txns, args.Error(1)
}

func (m *mockLedger) RecentTransactions(ctx context.Context, ownerID string, limit int) ([]ledger.Transaction, error) {
	args := m.Called(ctx, ownerID, limit)
	txns, _ := args.Get(0).([]ledger.Transaction)
	return txns, args.Error(1)
}

func (m *mockLedger) Execute(ctx context.Context, req service.TransferRequest) (ledger.Transaction, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ledger.Transaction), args.Error(1)
}

func (m *mockLedger) OpenAccount(ctx context.Context, req service.OpenAccountRequest) (ledger.Account, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ledger.Account), args.Error(1)
}

type processorFunc func(ctx context.Context, action actions.IAction) error

func (f processorFunc) Process(ctx context.Context, action actions.IAction) error {
	return f(ctx, action)
}

func inline(l actions.Ledger) processorFunc {
	return func(ctx context.Context, action actions.IAction) error {
		return action.Perform(ctx, l)
	}
}

func newTestAPI(t *testing.T, l *mockLedger, op actionProcessor) humatest.TestAPI {
	t.Helper()
	_, api := humatest.New(t)
	NewListTransactionsHandler(l).Register(api)
	NewTransferHandler(op).Register(api)
	return api
}

func coffee() ledger.Transaction {
	return ledger.Transaction{
		ID:            "txn_1",
		FromAccountID: "acc_1",
		ToAccountID:   ledger.ExternalAccountID,
		Amount:        decimal.RequireFromString("-4.5"),
		Description:   "Coffee Shop",
		Timestamp:     bookedAt,
		Status:        ledger.StatusCompleted,
		Kind:          ledger.KindDebit,
	}
}

// -- parseTransferInput unit tests --

func TestParseTransferInput(t *testing.T) {
	req, err := parseTransferInput(&TransferInput{Body: TransferBody{
		FromAccountID: "acc_1",
		ToAccountID:   "acc_2",
		Amount:        "30.00",
		Description:   "move",
	}})
	require.NoError(t, err)
	assert.True(t, req.Amount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, "move", req.Description)
	assert.True(t, req.EffectiveAt.IsZero())

	for _, amount := range []string{"0", "-1", "1.001", "ten"} {
		_, err := parseTransferInput(&TransferInput{Body: TransferBody{FromAccountID: "a", ToAccountID: "b", Amount: amount}})
		assert.ErrorIs(t, err, ledger.ErrInvalidAmount, amount)
	}
}

// -- HTTP tests (full Huma stack via humatest) --

func TestHTTP_ListTransactions(t *testing.T) {
	l := new(mockLedger)
	l.On("TransactionsForOwner", mock.Anything, "betty@email.com").Return([]ledger.Transaction{coffee()}, nil)

	resp := newTestAPI(t, l, inline(l)).Get("/v1/owners/betty@email.com/transactions")
	require.Equal(t, http.StatusOK, resp.Code)

	var body ListTransactionsResponseBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Transactions, 1)
	assert.Equal(t, "-4.50", body.Transactions[0].Amount)
	assert.Equal(t, "debit", body.Transactions[0].Kind)
	assert.Equal(t, "2024-01-15T10:30:00Z", body.Transactions[0].Timestamp)
	l.AssertExpectations(t)
}

func TestHTTP_ListTransactions_Limit(t *testing.T) {
	l := new(mockLedger)
	l.On("RecentTransactions", mock.Anything, "betty@email.com", 5).Return([]ledger.Transaction{}, nil)

	resp := newTestAPI(t, l, inline(l)).Get("/v1/owners/betty@email.com/transactions?limit=5")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"transactions":[]`)
	l.AssertExpectations(t)
}

func TestHTTP_Transfer_Success(t *testing.T) {
	l := new(mockLedger)
	booked := ledger.Transaction{
		ID: "txn_2", FromAccountID: "acc_1", ToAccountID: "acc_2",
		Amount: decimal.NewFromInt(-30), Description: "move", Timestamp: bookedAt,
		Status: ledger.StatusCompleted, Kind: ledger.KindTransfer,
	}
	l.On("Execute", mock.Anything, mock.MatchedBy(func(req service.TransferRequest) bool {
		return req.FromAccountID == "acc_1" && req.ToAccountID == "acc_2" &&
			req.Amount.Equal(decimal.NewFromInt(30)) && req.Description == "move"
	})).Return(booked, nil)

	resp := newTestAPI(t, l, inline(l)).Post("/v1/transfers", TransferBody{
		FromAccountID: "acc_1",
		ToAccountID:   "acc_2",
		Amount:        "30.00",
		Description:   "move",
	})

	require.Equal(t, http.StatusCreated, resp.Code)
	var body Transaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "txn_2", body.ID)
	assert.Equal(t, "-30.00", body.Amount)
	assert.Equal(t, "completed", body.Status)
	l.AssertExpectations(t)
}

func TestHTTP_Transfer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "insufficient funds", err: ledger.InsufficientFunds("acc_1", decimal.NewFromInt(100), decimal.NewFromInt(150)), want: http.StatusConflict},
		{name: "unknown destination", err: ledger.AccountNotFound("toAccountId", "acc_9"), want: http.StatusNotFound},
		{name: "same account", err: ledger.InvalidParticipants("toAccountId", "acc_1", "same account"), want: http.StatusUnprocessableEntity},
		{name: "application failure", err: ledger.ApplicationFailure("txn_3", errors.New("disk full")), want: http.StatusInternalServerError},
		{name: "cancelled", err: context.Canceled, want: http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := new(mockLedger)
			l.On("Execute", mock.Anything, mock.Anything).Return(ledger.Transaction{}, tc.err)

			resp := newTestAPI(t, l, inline(l)).Post("/v1/transfers", TransferBody{
				FromAccountID: "acc_1",
				ToAccountID:   "acc_9",
				Amount:        "150.00",
			})
			assert.Equal(t, tc.want, resp.Code)
		})
	}
}

func TestHTTP_Transfer_InvalidAmountNeverQueued(t *testing.T) {
	l := new(mockLedger)
	queued := false
	op := processorFunc(func(ctx context.Context, action actions.IAction) error {
		queued = true
		return nil
	})

	resp := newTestAPI(t, l, op).Post("/v1/transfers", TransferBody{
		FromAccountID: "acc_1",
		ToAccountID:   "acc_2",
		Amount:        "0.001",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Contains(t, resp.Body.String(), "InvalidAmount")
	assert.False(t, queued)
}

func TestHTTP_Transfer_MissingRequiredFields(t *testing.T) {
	l := new(mockLedger)

	// Huma schema validation rejects the request before the handler runs.
	resp := newTestAPI(t, l, inline(l)).Post("/v1/transfers", map[string]any{
		"fromAccountID": "acc_1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	l.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
