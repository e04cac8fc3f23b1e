package account

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
)

type AccountByTypeInput struct {
	OwnerID     string `path:"ownerID" minLength:"1" doc:"Owner identity"`
	AccountType string `path:"accountType" doc:"checking, savings or credit"`
}

type accountTypeFinder interface {
	AccountByType(ctx context.Context, ownerID string, accountType ledger.AccountType) (ledger.Account, error)
}

// AccountByTypeHandler handles GET /v1/owners/{ownerID}/accounts/{accountType}.
// With several accounts of one type the earliest opened is returned.
type AccountByTypeHandler struct {
	AccountService accountTypeFinder
}

func NewAccountByTypeHandler(svc accountTypeFinder) *AccountByTypeHandler {
	return &AccountByTypeHandler{AccountService: svc}
}

func (h *AccountByTypeHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-account-by-type",
		Method:      http.MethodGet,
		Path:        "/v1/owners/{ownerID}/accounts/{accountType}",
		Summary:     "Get the owner's account of a type",
		Tags:        []string{"Accounts"},
	}, h.handle)
}

func (h *AccountByTypeHandler) handle(ctx context.Context, input *AccountByTypeInput) (*AccountOutput, error) {
	accountType, err := ledger.ParseAccountType(input.AccountType)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid accountType", err)
	}
	acc, err := h.AccountService.AccountByType(ctx, input.OwnerID, accountType)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to find account")
	}
	return &AccountOutput{Body: fromLedger(acc)}, nil
}
