package status

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/carson-networks/ledger-server/internal/logging"
)

type Handler struct {
	// Check reports backend health. A nil Check always passes.
	Check func(req *http.Request) error
}

func NewHandler() Handler {
	return Handler{}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	if h.Check != nil {
		endTimer := logData.AddTiming("checkMs")
		err := h.Check(req)
		endTimer()
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return fmt.Errorf("status: check: %w", err)
		}
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
