package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
)

type GetAccountInput struct {
	AccountID string `path:"accountID" minLength:"1" doc:"Account identifier"`
}

type AccountOutput struct {
	Body Account
}

type accountGetter interface {
	Account(ctx context.Context, accountID string) (ledger.Account, error)
}

// GetAccountHandler handles GET /v1/accounts/{accountID}.
type GetAccountHandler struct {
	AccountService accountGetter
}

func NewGetAccountHandler(svc accountGetter) *GetAccountHandler {
	return &GetAccountHandler{AccountService: svc}
}

func (h *GetAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account",
		Method:      http.MethodGet,
		Path:        "/v1/accounts/{accountID}",
		Summary:     "Get an account",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *GetAccountHandler) handle(ctx context.Context, input *GetAccountInput) (*AccountOutput, error) {
	logging.SetData(ctx, "accountID", input.AccountID)
	acc, err := h.AccountService.Account(ctx, input.AccountID)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to get account")
	}
	return &AccountOutput{Body: fromLedger(acc)}, nil
}
