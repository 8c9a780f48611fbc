package cmd

import (
	"context"
	"fmt"

	"fanhunt/application"
	"fanhunt/catalog"
	"fanhunt/config"
	"fanhunt/database"
	"fanhunt/infrastructure"
	"fanhunt/repository"

	log "github.com/sirupsen/logrus"
)

// ImportCatalog loads a YAML catalog and upserts it in one transaction
func ImportCatalog(ctx context.Context, path string) error {
	cat, err := catalog.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	cfg := config.Get()
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Catalog maintenance emits no domain events
	uowFactory := repository.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
	runner := application.NewTransactionRunner(uowFactory, application.TransactionPolicy{
		MaxAttempts:    cfg.TxMaxAttempts,
		AttemptTimeout: cfg.TxAttemptTimeout,
		RetryBudget:    cfg.TxRetryBudget,
	}, nil)

	if err := application.NewCatalogHandler(runner).Import(ctx, cat.Checkpoints, cat.Rewards); err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	log.WithField("path", path).Info("Catalog import complete")
	return nil
}
