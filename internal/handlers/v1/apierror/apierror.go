// Package apierror maps ledger failures onto HTTP problem responses.
package apierror

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// StatusFor returns the HTTP status for a ledger error kind.
func StatusFor(kind ledger.ErrorKind) int {
	switch kind {
	case ledger.KindInvalidAmount, ledger.KindInvalidParticipants:
		return http.StatusUnprocessableEntity
	case ledger.KindAccountNotFound:
		return http.StatusNotFound
	case ledger.KindInsufficientFunds:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromLedger converts err into a huma error. Typed ledger errors keep their kind
// and field in the problem details; anything else becomes a 500 with msg.
func FromLedger(err error, msg string) error {
	var le *ledger.Error
	if !errors.As(err, &le) {
		return huma.NewError(http.StatusInternalServerError, msg, err)
	}
	detail := &huma.ErrorDetail{
		Message:  string(le.Kind),
		Location: le.Field,
		Value:    le.Value,
	}
	return huma.NewError(StatusFor(le.Kind), le.Error(), detail)
}
