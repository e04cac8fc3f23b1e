// Package backend opens the storage selected by the configuration.
package backend

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

type Backend struct {
	Storage *storage.Storage
	// Ready reports whether the backend can serve requests.
	Ready func(ctx context.Context) error
	DB    *sql.DB
}

func (b *Backend) Close() error {
	return b.Storage.Close()
}

// Open builds the configured backend. For postgres it connects and, when
// cfg.Migrate is set, brings the schema up to date first.
func Open(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Info("Backend.Open.Memory")
		return &Backend{
			Storage: memory.NewStorage(),
			Ready:   func(context.Context) error { return nil },
		}, nil

	case config.BackendPostgres:
		db, err := sqlconfig.Open(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, err
		}
		if cfg.Migrate {
			res, err := sqlconfig.Migrate(db)
			if err != nil {
				_ = db.Close()
				return nil, err
			}
			logger.WithFields(logrus.Fields{
				"preMigrationVersion":  res.PreMigrationVersion,
				"postMigrationVersion": res.PostMigrationVersion,
			}).Info("Backend.Open.Migrated")
		}
		logger.WithField("address", cfg.PostgresAddress).Info("Backend.Open.Postgres")
		return &Backend{
			Storage: sqlconfig.NewStorage(db),
			Ready:   db.PingContext,
			DB:      db,
		}, nil
	}
	return nil, fmt.Errorf("backend: unknown backend %q", cfg.Backend)
}
