package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/carson-networks/ledger-server/internal/backend"
	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/seed"
	"github.com/carson-networks/ledger-server/internal/service"
)

// cli holds the state shared by every command.
type cli struct {
	backendName string
	seedFile    string
	noSeed      bool
	logLevel    string

	cfg     *config.Config
	logger  *logrus.Logger
	backend *backend.Backend
	svc     *service.LedgerService
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Inspect and operate an account ledger",
		Long: `ledgerctl runs ledger operations in-process against the configured backend.
With the memory backend every invocation starts from the seed fixture.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.configure(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.backendName, "backend", "", "Storage backend (memory or postgres), overrides LEDGER_BACKEND")
	flags.StringVar(&c.seedFile, "seed-file", "", "Seed fixture to load, defaults to the built-in demo data")
	flags.BoolVar(&c.noSeed, "no-seed", false, "Skip loading seed data")
	flags.StringVar(&c.logLevel, "log-level", "warn", "Log level")

	rootCmd.AddCommand(
		c.accountsCmd(),
		c.historyCmd(),
		c.summaryCmd(),
		c.transferCmd(),
		c.reconcileCmd(),
		c.migrateCmd(),
	)
	return rootCmd
}

func (c *cli) configure(cmd *cobra.Command) error {
	cfg, err := config.ProcessEnvironmentVariables()
	if err != nil {
		return err
	}
	if c.backendName != "" {
		cfg.Backend = c.backendName
	}
	if c.seedFile != "" {
		cfg.SeedFile = c.seedFile
	}
	if c.noSeed {
		cfg.Seed = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	c.logger = logging.SetupLogging(c.logLevel)
	c.logger.SetOutput(cmd.ErrOrStderr())
	return nil
}

// ledger opens the backend and seeds it on first use.
func (c *cli) ledger(ctx context.Context) (*service.LedgerService, error) {
	if c.svc != nil {
		return c.svc, nil
	}
	b, err := backend.Open(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	c.backend = b
	c.svc = service.NewLedgerService(b.Storage, service.WithLogger(c.logger))

	if c.cfg.Seed {
		fixture, err := seed.Load(c.cfg.SeedFile)
		if err != nil {
			return nil, err
		}
		if _, err := seed.Apply(ctx, c.svc, fixture, c.logger); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}
	}
	return c.svc, nil
}

func (c *cli) close() error {
	if c.backend == nil {
		return nil
	}
	err := c.backend.Close()
	c.backend = nil
	c.svc = nil
	return err
}
