package application

import (
	"context"

	"fanhunt/domain/entities"
	"fanhunt/domain/services"

	log "github.com/sirupsen/logrus"
)

const (
	RedemptionTypeCheckpoint = "checkpoint"
	RedemptionTypeReward     = "reward"
)

// RedemptionHandler runs the ledger's two write paths under the transaction runner
type RedemptionHandler struct {
	runner  *TransactionRunner
	metrics MetricsRecorder
}

// NewRedemptionHandler creates a new redemption handler
func NewRedemptionHandler(runner *TransactionRunner, metrics MetricsRecorder) *RedemptionHandler {
	if metrics == nil {
		metrics = NoopMetrics()
	}
	return &RedemptionHandler{
		runner:  runner,
		metrics: metrics,
	}
}

// RedeemCheckpoint credits a scanned checkpoint to the user. Every failure
// leaves the balance and receipts untouched.
func (h *RedemptionHandler) RedeemCheckpoint(ctx context.Context, userID, checkpointID string, lat, lng float64) (*entities.ScanResult, error) {
	var result *entities.ScanResult
	err := h.runner.Run(ctx, "redeem_checkpoint", func(ctx context.Context, uow UnitOfWork) error {
		service := services.NewScanRedemptionService(
			uow.UserRepository(),
			uow.CheckpointRepository(),
			uow.ScanReceiptRepository(),
			uow.EventBus(),
		)

		r, err := service.RedeemCheckpoint(ctx, userID, checkpointID, entities.NewCoordinate(lat, lng))
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	h.metrics.RecordRedemption(RedemptionTypeCheckpoint, OutcomeOf(err))
	if err != nil {
		log.WithFields(log.Fields{
			"userID":       userID,
			"checkpointID": checkpointID,
			"kind":         entities.KindOf(err),
			"details":      entities.DetailsOf(err),
		}).Info("Checkpoint redemption rejected")
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":        userID,
		"checkpointID":  checkpointID,
		"pointsAwarded": result.PointsAwarded,
		"totalPoints":   result.TotalPoints,
	}).Info("Checkpoint redeemed")
	return result, nil
}

// RedeemReward spends the reward's price from the user's balance
func (h *RedemptionHandler) RedeemReward(ctx context.Context, userID, rewardID string) (*entities.RewardResult, error) {
	var result *entities.RewardResult
	err := h.runner.Run(ctx, "redeem_reward", func(ctx context.Context, uow UnitOfWork) error {
		service := services.NewRewardRedemptionService(
			uow.UserRepository(),
			uow.RewardRepository(),
			uow.RewardReceiptRepository(),
			uow.EventBus(),
		)

		r, err := service.RedeemReward(ctx, userID, rewardID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})

	h.metrics.RecordRedemption(RedemptionTypeReward, OutcomeOf(err))
	if err != nil {
		log.WithFields(log.Fields{
			"userID":   userID,
			"rewardID": rewardID,
			"kind":     entities.KindOf(err),
			"details":  entities.DetailsOf(err),
		}).Info("Reward redemption rejected")
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":      userID,
		"rewardID":    rewardID,
		"receiptID":   result.Receipt.ID,
		"totalPoints": result.TotalPoints,
	}).Info("Reward redeemed")
	return result, nil
}
