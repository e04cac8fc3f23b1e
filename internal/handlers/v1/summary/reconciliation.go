package summary

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

type ReconciliationInput struct {
	OwnerID string `path:"ownerID" minLength:"1" doc:"Owner identity"`
}

type AccountReconciliation struct {
	AccountID     string `json:"accountID"`
	Balance       string `json:"balance" doc:"Stored balance"`
	Reconstructed string `json:"reconstructed" doc:"Balance rebuilt from completed transactions"`
	Drift         string `json:"drift" doc:"Stored minus rebuilt"`
	Entries       int    `json:"entries" doc:"Completed transactions counted"`
	Consistent    bool   `json:"consistent"`
}

type ReconciliationBody struct {
	Consistent bool                    `json:"consistent" doc:"True when no account drifted"`
	Accounts   []AccountReconciliation `json:"accounts"`
}

type ReconciliationOutput struct {
	Body ReconciliationBody
}

type reconciler interface {
	ReconcileOwner(ctx context.Context, ownerID string) ([]service.Reconciliation, error)
}

// ReconciliationHandler handles GET /v1/owners/{ownerID}/reconciliation.
type ReconciliationHandler struct {
	Service reconciler
}

func NewReconciliationHandler(svc reconciler) *ReconciliationHandler {
	return &ReconciliationHandler{Service: svc}
}

func (h *ReconciliationHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-reconciliation",
		Method:      http.MethodGet,
		Path:        "/v1/owners/{ownerID}/reconciliation",
		Summary:     "Reconcile balances",
		Description: "Rebuilds every balance of the owner from the transaction log and reports drift.",
		Tags:        []string{"Summary"},
	}, h.handle)
}

func (h *ReconciliationHandler) handle(ctx context.Context, input *ReconciliationInput) (*ReconciliationOutput, error) {
	recs, err := h.Service.ReconcileOwner(ctx, input.OwnerID)
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to reconcile")
	}

	body := ReconciliationBody{
		Consistent: true,
		Accounts:   make([]AccountReconciliation, len(recs)),
	}
	for i, rec := range recs {
		body.Accounts[i] = AccountReconciliation{
			AccountID:     rec.AccountID,
			Balance:       rec.Balance.StringFixed(ledger.MoneyPlaces),
			Reconstructed: rec.Reconstructed.StringFixed(ledger.MoneyPlaces),
			Drift:         rec.Drift.StringFixed(ledger.MoneyPlaces),
			Entries:       rec.Entries,
			Consistent:    rec.Consistent(),
		}
		body.Consistent = body.Consistent && rec.Consistent()
	}
	logging.SetData(ctx, "consistent", body.Consistent)

	return &ReconciliationOutput{Body: body}, nil
}
