package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/carson-networks/ledger-server/api"
	"github.com/carson-networks/ledger-server/internal/backend"
	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/obs"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/seed"
	"github.com/carson-networks/ledger-server/internal/service"
)

func main() {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.WithField("backend", envConfig.Backend).Info("ledger-server starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, envConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("backend.Open")
		return
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.WithError(err).Error("backend.Close")
		}
	}()

	metrics := obs.NewMetrics()
	svc := service.NewLedgerService(store.Storage,
		service.WithLogger(logger),
		service.WithMetrics(metrics),
	)

	if envConfig.Seed {
		fixture, err := seed.Load(envConfig.SeedFile)
		if err != nil {
			logger.WithError(err).Fatal("seed.Load")
			return
		}
		if _, err := seed.Apply(ctx, svc, fixture, logger); err != nil {
			logger.WithError(err).Fatal("seed.Apply")
			return
		}
	}

	op := operator.NewOperatorDelegator(svc, envConfig.Workers)
	op.Start()
	defer op.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		httpRest := api.Rest{
			Logger:    logger,
			Port:      envConfig.HTTPPort,
			Ledger:    svc,
			Operator:  op,
			Metrics:   metrics,
			Ready:     store.Ready,
			RateLimit: envConfig.RateLimit,
			RateBurst: envConfig.RateBurst,

			TrustForwardedFor: envConfig.TrustForwardedFor,
		}
		return httpRest.Serve(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("ledger-server stopped")
		return
	}
	logger.Info("ledger-server stopped")
}
