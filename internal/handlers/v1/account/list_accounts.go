package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

// ListAccountsInput is the Huma input for listing an owner's accounts.
type ListAccountsInput struct {
	OwnerID string `path:"ownerID" minLength:"1" doc:"Owner identity"`
}

// ListAccountsResponseBody is the response body for listing accounts.
type ListAccountsResponseBody struct {
	Accounts     []Account `json:"accounts" doc:"The owner's accounts in opening order"`
	TotalBalance string    `json:"totalBalance" doc:"Sum of the balances"`
}

// ListAccountsOutput is the Huma output for listing accounts.
type ListAccountsOutput struct {
	Body ListAccountsResponseBody
}

// accountLister is the interface for listing accounts.
type accountLister interface {
	AccountsByOwner(ctx context.Context, ownerID string) ([]ledger.Account, error)
}

// ListAccountsHandler handles GET /v1/owners/{ownerID}/accounts.
type ListAccountsHandler struct {
	AccountService accountLister
}

// NewListAccountsHandler creates a new ListAccountsHandler.
func NewListAccountsHandler(svc accountLister) *ListAccountsHandler {
	return &ListAccountsHandler{AccountService: svc}
}

// Register registers the list accounts endpoint with the Huma API.
func (h *ListAccountsHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-accounts",
		Method:      http.MethodGet,
		Path:        "/v1/owners/{ownerID}/accounts",
		Summary:     "List accounts",
		Description: "Returns every account of the owner with the total balance. An owner without accounts gets an empty list.",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *ListAccountsHandler) handle(ctx context.Context, input *ListAccountsInput) (*ListAccountsOutput, error) {
	stopTimer := logging.StartTiming(ctx, "listAccountsMs")
	accounts, err := h.AccountService.AccountsByOwner(ctx, input.OwnerID)
	stopTimer()
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to list accounts")
	}

	logging.SetData(ctx, "accountCount", len(accounts))

	resp := ListAccountsResponseBody{
		Accounts: make([]Account, len(accounts)),
	}
	total := decimal.Zero
	for i, acc := range accounts {
		resp.Accounts[i] = fromLedger(acc)
		total = total.Add(acc.Balance)
	}
	resp.TotalBalance = total.StringFixed(ledger.MoneyPlaces)

	return &ListAccountsOutput{Body: resp}, nil
}
