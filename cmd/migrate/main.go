package main

import (
	"reports_srv/internal/config"
	"reports_srv/internal/database"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	if !cfg.IsSQL() {
		logrus.WithField("mode", cfg.Storage.Mode).Warn("Storage mode is not sql, migrating the configured database anyway")
	}

	dbConfig, err := database.ConfigFromApp(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid database configuration")
	}
	dbConfig.Debug = true

	// Create database connection
	db, err := database.NewDatabase(dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	// Run migrations
	if err := database.AutoMigrate(db, dbConfig.Table); err != nil {
		logrus.WithError(err).Fatal("Failed to run migrations")
	}

	logrus.WithFields(logrus.Fields{
		"driver": dbConfig.Driver,
		"table":  dbConfig.Table,
	}).Info("Migrations completed successfully")
}
