package application

import (
	"context"

	"fanhunt/domain/entities"
	"fanhunt/domain/services"

	log "github.com/sirupsen/logrus"
)

// CatalogHandler maintains and lists the checkpoint and reward catalog
type CatalogHandler struct {
	runner *TransactionRunner
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(runner *TransactionRunner) *CatalogHandler {
	return &CatalogHandler{runner: runner}
}

// Import upserts all checkpoints and rewards in one transaction
func (h *CatalogHandler) Import(ctx context.Context, checkpoints []*entities.Checkpoint, rewards []*entities.Reward) error {
	err := h.runner.Run(ctx, "import_catalog", func(ctx context.Context, uow UnitOfWork) error {
		service := services.NewCatalogService(uow.CheckpointRepository(), uow.RewardRepository())
		return service.Import(ctx, checkpoints, rewards)
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"checkpoints": len(checkpoints),
		"rewards":     len(rewards),
	}).Info("Catalog imported")
	return nil
}

// ListActiveRewards returns the rewards that can currently be redeemed
func (h *CatalogHandler) ListActiveRewards(ctx context.Context) ([]*entities.Reward, error) {
	var rewards []*entities.Reward
	err := h.runner.RunReadOnly(ctx, "list_active_rewards", func(ctx context.Context, uow UnitOfWork) error {
		service := services.NewCatalogService(uow.CheckpointRepository(), uow.RewardRepository())
		r, err := service.ListActiveRewards(ctx)
		if err != nil {
			return err
		}
		rewards = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rewards, nil
}
