package main

import (
	"context"

	"github.com/sirupsen/logrus"

	server_config "github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

func main() {
	env, err := server_config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("ProcessEnvironmentVariables")
		return
	}
	logger := logging.SetupLogging(env.LogLevel)

	db, err := sqlconfig.Open(context.Background(), env.PostgresDSN())
	if err != nil {
		logger.WithError(err).Fatal("sqlconfig.Open")
		return
	}
	defer db.Close()

	res, err := sqlconfig.Migrate(db)
	if err != nil {
		logger.WithError(err).Fatal("sqlconfig.Migrate")
		return
	}

	logger.WithFields(logrus.Fields{
		"preMigrationVersion":  res.PreMigrationVersion,
		"postMigrationVersion": res.PostMigrationVersion,
	}).Info("Migration status")
}
