package transaction

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/service"
)

// TransferBody is the request body for a transfer.
type TransferBody struct {
	FromAccountID string `json:"fromAccountID" required:"true" minLength:"1" doc:"Source account, or 'external' for a deposit"`
	ToAccountID   string `json:"toAccountID" required:"true" minLength:"1" doc:"Destination account, or 'external' for a withdrawal"`
	Amount        string `json:"amount" required:"true" doc:"Positive decimal amount with at most two fractional digits"`
	Description   string `json:"description,omitempty" maxLength:"256" doc:"Free text"`
}

// TransferInput is the Huma input for a transfer.
type TransferInput struct {
	Body TransferBody
}

// TransferOutput is the Huma output for a transfer.
type TransferOutput struct {
	Status int
	Body   Transaction
}

type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// TransferHandler handles POST /v1/transfers.
type TransferHandler struct {
	Operator actionProcessor
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(op actionProcessor) *TransferHandler {
	return &TransferHandler{Operator: op}
}

// Register registers the transfer endpoint with the Huma API.
func (h *TransferHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-transfer",
		Method:        http.MethodPost,
		Path:          "/v1/transfers",
		Summary:       "Transfer funds",
		Description:   "Moves funds between two accounts, or between an account and the external party. Each call books a new transaction.",
		Tags:          []string{"Transactions"},
		DefaultStatus: http.StatusCreated,
	}, h.handle)
}

func parseTransferInput(input *TransferInput) (service.TransferRequest, error) {
	amount, err := ledger.ParseAmount(input.Body.Amount)
	if err != nil {
		return service.TransferRequest{}, err
	}
	return service.TransferRequest{
		FromAccountID: input.Body.FromAccountID,
		ToAccountID:   input.Body.ToAccountID,
		Amount:        amount,
		Description:   input.Body.Description,
	}, nil
}

func (h *TransferHandler) handle(ctx context.Context, input *TransferInput) (*TransferOutput, error) {
	logging.SetData(ctx, "fromAccountID", input.Body.FromAccountID)
	logging.SetData(ctx, "toAccountID", input.Body.ToAccountID)

	req, err := parseTransferInput(input)
	if err != nil {
		return nil, apierror.FromLedger(err, "invalid amount")
	}

	action := &actions.Transfer{Request: req}
	stopTimer := logging.StartTiming(ctx, "transferMs")
	err = h.Operator.Process(ctx, action)
	stopTimer()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
			errors.Is(err, operator.ErrStopped) {
			return nil, huma.NewError(http.StatusServiceUnavailable, "transfer not processed", err)
		}
		return nil, apierror.FromLedger(err, "failed to transfer")
	}

	logging.SetData(ctx, "transactionID", action.Result.ID)
	logging.SetData(ctx, "amount", action.Result.Amount.String())

	return &TransferOutput{
		Status: http.StatusCreated,
		Body:   FromLedger(action.Result),
	}, nil
}
