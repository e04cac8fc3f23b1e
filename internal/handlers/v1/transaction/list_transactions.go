package transaction

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// ListTransactionsInput is the Huma input for an owner's history.
type ListTransactionsInput struct {
	OwnerID string `path:"ownerID" minLength:"1" doc:"Owner identity"`
	Limit   int    `query:"limit" minimum:"0" maximum:"1000" doc:"Return only the most recent entries; 0 returns the whole history"`
}

// ListTransactionsResponseBody is the response body for listing transactions.
type ListTransactionsResponseBody struct {
	Transactions []Transaction `json:"transactions" doc:"Most recent first"`
}

// ListTransactionsOutput is the Huma output for listing transactions.
type ListTransactionsOutput struct {
	Body ListTransactionsResponseBody
}

// transactionLister is the interface for listing transactions.
type transactionLister interface {
	TransactionsForOwner(ctx context.Context, ownerID string) ([]ledger.Transaction, error)
	RecentTransactions(ctx context.Context, ownerID string, limit int) ([]ledger.Transaction, error)
}

// ListTransactionsHandler handles GET /v1/owners/{ownerID}/transactions.
type ListTransactionsHandler struct {
	TransactionService transactionLister
}

// NewListTransactionsHandler creates a new ListTransactionsHandler.
func NewListTransactionsHandler(svc transactionLister) *ListTransactionsHandler {
	return &ListTransactionsHandler{TransactionService: svc}
}

// Register registers the list transactions endpoint with the Huma API.
func (h *ListTransactionsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-transactions",
		Method:      http.MethodGet,
		Path:        "/v1/owners/{ownerID}/transactions",
		Summary:     "List transactions",
		Description: "Returns the log entries touching any of the owner's accounts, most recent first.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func (h *ListTransactionsHandler) handle(ctx context.Context, input *ListTransactionsInput) (*ListTransactionsOutput, error) {
	stopTimer := logging.StartTiming(ctx, "listTransactionsMs")
	var (
		txns []ledger.Transaction
		err  error
	)
	if input.Limit > 0 {
		txns, err = h.TransactionService.RecentTransactions(ctx, input.OwnerID, input.Limit)
	} else {
		txns, err = h.TransactionService.TransactionsForOwner(ctx, input.OwnerID)
	}
	stopTimer()
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to list transactions")
	}

	logging.SetData(ctx, "transactionCount", len(txns))

	return &ListTransactionsOutput{
		Body: ListTransactionsResponseBody{Transactions: FromLedgerList(txns)},
	}, nil
}
