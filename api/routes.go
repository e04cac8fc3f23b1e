package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/handlers/v1/account"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/status"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/summary"
	"github.com/carson-networks/ledger-server/internal/handlers/v1/transaction"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/obs"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/service"
)

const shutdownTimeout = 15 * time.Second

type Rest struct {
	Logger   *logrus.Logger
	Port     string
	Ledger   *service.LedgerService
	Operator *operator.OperatorDelegator
	Metrics  *obs.Metrics
	// Ready backs GET /status. Nil means always ready.
	Ready     func(ctx context.Context) error
	RateLimit float64
	RateBurst int

	// TrustForwardedFor keys the rate limit on X-Forwarded-For.
	TrustForwardedFor bool
}

// Handler builds the full route tree.
func (r *Rest) Handler() http.Handler {
	mux := http.NewServeMux()

	statusHandler := status.NewHandler()
	if r.Ready != nil {
		statusHandler.Check = func(req *http.Request) error { return r.Ready(req.Context()) }
	}
	mux.HandleFunc("/status", logging.LoggingWrapper("Status", r.Logger, statusHandler.Handler))
	if r.Metrics != nil {
		mux.Handle("/metrics", r.Metrics.Handler())
	}

	api := humago.New(mux, huma.DefaultConfig("Ledger API", "1.0.0"))
	api.UseMiddleware(logging.Middleware(r.Logger))

	account.NewListAccountsHandler(r.Ledger).Register(api)
	account.NewGetAccountHandler(r.Ledger).Register(api)
	account.NewAccountByTypeHandler(r.Ledger).Register(api)
	account.NewOpenAccountHandler(r.Operator).Register(api)
	transaction.NewListTransactionsHandler(r.Ledger).Register(api)
	transaction.NewTransferHandler(r.Operator).Register(api)
	summary.NewSummaryHandler(r.Ledger).Register(api)
	summary.NewReconciliationHandler(r.Ledger).Register(api)

	return r.Metrics.Instrument(RateLimitWrites(mux, r.RateLimit, r.RateBurst, r.TrustForwardedFor))
}

// Serve listens until ctx is cancelled, then drains in-flight requests.
func (r *Rest) Serve(ctx context.Context) error {
	server := http.Server{
		Addr:              ":" + r.Port,
		Handler:           r.Handler(),
		ReadTimeout:       time.Duration(30) * time.Second,
		WriteTimeout:      time.Duration(30) * time.Second,
		IdleTimeout:       time.Duration(10) * time.Second,
		ReadHeaderTimeout: time.Duration(10) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.Logger.WithField("port", r.Port).Info("HttpServer.Serve.Listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		r.Logger.WithError(err).Error("HttpServer.Serve.ListenError")
		return err
	case <-ctx.Done():
	}

	r.Logger.Info("HttpServer.Serve.ShuttingDown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		r.Logger.WithError(err).Error("HttpServer.Serve.ShutdownError")
		return err
	}
	return nil
}
