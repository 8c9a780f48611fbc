package services

import (
	"context"
	"fmt"
	"strings"

	"fanhunt/domain/entities"
	"fanhunt/domain/interfaces"
	"fanhunt/events"

	log "github.com/sirupsen/logrus"
)

// rewardRedemptionService implements spending points on catalog rewards
type rewardRedemptionService struct {
	userRepo          interfaces.UserRepository
	rewardRepo        interfaces.RewardRepository
	rewardReceiptRepo interfaces.RewardReceiptRepository
	eventPublisher    interfaces.EventPublisher
}

// NewRewardRedemptionService creates a new reward redemption service
func NewRewardRedemptionService(
	userRepo interfaces.UserRepository,
	rewardRepo interfaces.RewardRepository,
	rewardReceiptRepo interfaces.RewardReceiptRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.RewardRedemptionService {
	return &rewardRedemptionService{
		userRepo:          userRepo,
		rewardRepo:        rewardRepo,
		rewardReceiptRepo: rewardReceiptRepo,
		eventPublisher:    eventPublisher,
	}
}

// RedeemReward debits the reward price and records a receipt. Rewards may be
// bought any number of times while the balance allows.
func (s *rewardRedemptionService) RedeemReward(ctx context.Context, userID, rewardID string) (*entities.RewardResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, entities.NewLedgerError(entities.KindUnauthenticated, nil)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, entities.NewLedgerError(entities.KindUserNotFound, map[string]any{
			"user_id": userID,
		})
	}

	reward, err := s.rewardRepo.GetByID(ctx, rewardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reward: %w", err)
	}
	if reward == nil {
		return nil, entities.NewLedgerError(entities.KindRewardNotFound, map[string]any{
			"reward_id": rewardID,
		})
	}
	if !reward.Active {
		return nil, entities.NewLedgerError(entities.KindRewardUnavailable, map[string]any{
			"reward_id": rewardID,
		})
	}

	if !user.CanAfford(reward.PointsRequired) {
		return nil, insufficientPoints(user.TotalPoints, reward.PointsRequired)
	}

	// The debit is conditional on the balance so a concurrent spend that got
	// past the check above cannot take the total below zero.
	newBalance, ok, err := s.userRepo.DeductPoints(ctx, userID, reward.PointsRequired)
	if err != nil {
		return nil, fmt.Errorf("failed to debit points: %w", err)
	}
	if !ok {
		return nil, insufficientPoints(user.TotalPoints, reward.PointsRequired)
	}

	receipt := entities.NewRewardReceipt(userID, rewardID, reward.PointsRequired)
	if err := s.rewardReceiptRepo.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to create reward receipt: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":      userID,
		"rewardID":    rewardID,
		"receiptID":   receipt.ID,
		"pointsSpent": reward.PointsRequired,
		"newBalance":  newBalance,
	}).Debug("Reward redeemed within transaction")

	publishEvent(s.eventPublisher, events.RewardRedeemedEvent{
		ReceiptID:   receipt.ID.String(),
		UserID:      userID,
		RewardID:    rewardID,
		PointsSpent: reward.PointsRequired,
		RedeemedAt:  receipt.RedeemedAt,
	})
	publishEvent(s.eventPublisher, events.PointsBalanceChangedEvent{
		UserID:          userID,
		OldBalance:      user.TotalPoints,
		NewBalance:      newBalance,
		ChangeAmount:    -reward.PointsRequired,
		TransactionType: entities.TransactionTypeRewardRedemption,
	})

	return &entities.RewardResult{
		Receipt:     receipt,
		TotalPoints: newBalance,
	}, nil
}

func insufficientPoints(balance, required int64) error {
	return entities.NewLedgerError(entities.KindInsufficientPoints, map[string]any{
		"balance":  balance,
		"required": required,
	})
}
