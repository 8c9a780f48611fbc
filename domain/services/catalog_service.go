package services

import (
	"context"
	"fmt"

	"fanhunt/domain/entities"
	"fanhunt/domain/interfaces"
)

// catalogService maintains the checkpoint and reward catalog
type catalogService struct {
	checkpointRepo interfaces.CheckpointRepository
	rewardRepo     interfaces.RewardRepository
}

// NewCatalogService creates a new catalog service
func NewCatalogService(checkpointRepo interfaces.CheckpointRepository, rewardRepo interfaces.RewardRepository) interfaces.CatalogService {
	return &catalogService{
		checkpointRepo: checkpointRepo,
		rewardRepo:     rewardRepo,
	}
}

// Import validates every entry before writing any of them
func (s *catalogService) Import(ctx context.Context, checkpoints []*entities.Checkpoint, rewards []*entities.Reward) error {
	for _, checkpoint := range checkpoints {
		if err := checkpoint.Validate(); err != nil {
			return fmt.Errorf("invalid checkpoint %q: %w", checkpoint.ID, err)
		}
	}
	for _, reward := range rewards {
		if err := reward.Validate(); err != nil {
			return fmt.Errorf("invalid reward %q: %w", reward.ID, err)
		}
	}

	for _, checkpoint := range checkpoints {
		if err := s.checkpointRepo.Upsert(ctx, checkpoint); err != nil {
			return fmt.Errorf("failed to upsert checkpoint %s: %w", checkpoint.ID, err)
		}
	}
	for _, reward := range rewards {
		if err := s.rewardRepo.Upsert(ctx, reward); err != nil {
			return fmt.Errorf("failed to upsert reward %s: %w", reward.ID, err)
		}
	}

	return nil
}

// ListActiveRewards returns the rewards that can currently be redeemed
func (s *catalogService) ListActiveRewards(ctx context.Context) ([]*entities.Reward, error) {
	rewards, err := s.rewardRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rewards: %w", err)
	}
	return rewards, nil
}
