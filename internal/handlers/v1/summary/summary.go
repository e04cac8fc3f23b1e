package summary

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/samber/lo"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/apierror"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/service"
)

const monthLayout = "2006-01"

type SummaryInput struct {
	OwnerID string `path:"ownerID" minLength:"1" doc:"Owner identity"`
	Month   string `query:"month" pattern:"^[0-9]{4}-[0-9]{2}$" doc:"Month for the spending figure as YYYY-MM, defaults to the current month"`
}

type AccountBalance struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	DisplayNumber string `json:"displayNumber"`
	Balance       string `json:"balance"`
	// BalanceDisplay is the balance formatted as currency, e.g. $12,450.75.
	BalanceDisplay string `json:"balanceDisplay"`
}

type SummaryBody struct {
	OwnerID         string                    `json:"ownerID"`
	Month           string                    `json:"month" doc:"Month the spending figure covers"`
	TotalBalance    string                    `json:"totalBalance"`
	MonthlySpending string                    `json:"monthlySpending" doc:"Sum of outgoing completed amounts in the month"`
	Accounts        []AccountBalance          `json:"accounts"`
	Recent          []transaction.Transaction `json:"recent" doc:"Latest five transactions"`
}

type SummaryOutput struct {
	Body SummaryBody
}

type summaryReader interface {
	Summary(ctx context.Context, ownerID string, referenceDate time.Time) (service.Summary, error)
}

// SummaryHandler handles GET /v1/owners/{ownerID}/summary.
type SummaryHandler struct {
	Service summaryReader
	Now     func() time.Time
}

func NewSummaryHandler(svc summaryReader) *SummaryHandler {
	return &SummaryHandler{Service: svc, Now: time.Now}
}

func (h *SummaryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-summary",
		Method:      http.MethodGet,
		Path:        "/v1/owners/{ownerID}/summary",
		Summary:     "Dashboard summary",
		Description: "Balances, monthly spending and recent activity of the owner, read in one consistent pass.",
		Tags:        []string{"Summary"},
	}, h.handle)
}

func (h *SummaryHandler) referenceDate(month string) (time.Time, error) {
	if month == "" {
		return h.Now().UTC(), nil
	}
	return time.Parse(monthLayout, month)
}

func (h *SummaryHandler) handle(ctx context.Context, input *SummaryInput) (*SummaryOutput, error) {
	ref, err := h.referenceDate(input.Month)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid month", err)
	}

	stopTimer := logging.StartTiming(ctx, "summaryMs")
	summary, err := h.Service.Summary(ctx, input.OwnerID, ref)
	stopTimer()
	if err != nil {
		return nil, apierror.FromLedger(err, "failed to build summary")
	}

	return &SummaryOutput{Body: SummaryBody{
		OwnerID:         summary.OwnerID,
		Month:           ref.Format(monthLayout),
		TotalBalance:    summary.TotalBalance.StringFixed(ledger.MoneyPlaces),
		MonthlySpending: summary.MonthlySpending.StringFixed(ledger.MoneyPlaces),
		Accounts: lo.Map(summary.Accounts, func(acc ledger.Account, _ int) AccountBalance {
			return AccountBalance{
				ID:             acc.ID,
				Type:           string(acc.Type),
				DisplayNumber:  acc.DisplayNumber,
				Balance:        acc.Balance.StringFixed(ledger.MoneyPlaces),
				BalanceDisplay: ledger.FormatAmount(acc.Balance),
			}
		}),
		Recent: transaction.FromLedgerList(summary.Recent),
	}}, nil
}
