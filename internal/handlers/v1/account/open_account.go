package account

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/service"
)

// OpenAccountInput is the Huma input for opening an account.
type OpenAccountInput struct {
	Body OpenAccountBody
}

// OpenAccountBody is the request body fields for opening an account.
type OpenAccountBody struct {
	OwnerID        string `json:"ownerID" minLength:"1" doc:"Owner identity"`
	Type           string `json:"type" enum:"checking,savings,credit" doc:"Account type"`
	AccountNumber  string `json:"accountNumber,omitempty" doc:"Full account number, stored masked to its last four digits"`
	OpeningBalance string `json:"openingBalance,omitempty" doc:"Opening deposit (e.g. '0' or '1234.56'), defaults to 0"`
}

// OpenAccountOutput is the response for opening an account.
type OpenAccountOutput struct {
	Status int
	Body   Account
}

type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// OpenAccountHandler handles POST /v1/accounts.
type OpenAccountHandler struct {
	Operator actionProcessor
}

// NewOpenAccountHandler creates a new OpenAccountHandler.
func NewOpenAccountHandler(op actionProcessor) *OpenAccountHandler {
	return &OpenAccountHandler{Operator: op}
}

// Register registers the open account endpoint with the Huma API.
func (h *OpenAccountHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "open-account",
		Method:        http.MethodPost,
		Path:          "/v1/accounts",
		Summary:       "Open an account",
		Description:   "Opens an account for the owner. A positive opening balance is booked as a deposit from the external party.",
		Tags:          []string{"Accounts"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func parseOpenAccountInput(input *OpenAccountInput) (service.OpenAccountRequest, error) {
	accountType, err := ledger.ParseAccountType(input.Body.Type)
	if err != nil {
		return service.OpenAccountRequest{}, huma.NewError(http.StatusBadRequest, "invalid type", err)
	}

	opening := decimal.Zero
	if s := strings.TrimSpace(input.Body.OpeningBalance); s != "" {
		opening, err = decimal.NewFromString(s)
		if err != nil {
			return service.OpenAccountRequest{}, apierror.FromLedger(ledger.InvalidAmount(s, err), "invalid openingBalance")
		}
	}

	return service.OpenAccountRequest{
		OwnerID:        input.Body.OwnerID,
		Type:           accountType,
		DisplayNumber:  input.Body.AccountNumber,
		OpeningBalance: opening,
	}, nil
}

func (h *OpenAccountHandler) handle(ctx context.Context, input *OpenAccountInput) (*OpenAccountOutput, error) {
	req, err := parseOpenAccountInput(input)
	if err != nil {
		return nil, err
	}

	action := &actions.OpenAccount{Request: req}
	stopTimer := logging.StartTiming(ctx, "openAccountMs")
	err = h.Operator.Process(ctx, action)
	stopTimer()
	if errors.Is(err, operator.ErrStopped) {
		return nil, huma.NewError(http.StatusServiceUnavailable, "account not opened", err)
	}
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to open account")
	}

	logging.SetData(ctx, "accountID", action.Result.ID)

	return &OpenAccountOutput{
		Status: http.StatusCreated,
		Body:   fromLedger(action.Result),
	}, nil
}
