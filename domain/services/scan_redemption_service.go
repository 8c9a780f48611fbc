package services

import (
	"context"
	"fmt"
	"strings"

	"fanhunt/domain/entities"
	"fanhunt/domain/geo"
	"fanhunt/domain/interfaces"
	"fanhunt/events"

	log "github.com/sirupsen/logrus"
)

// scanRedemptionService implements checkpoint redemption. It must run inside
// a serializable transaction; the repositories it receives are bound to it.
type scanRedemptionService struct {
	userRepo        interfaces.UserRepository
	checkpointRepo  interfaces.CheckpointRepository
	scanReceiptRepo interfaces.ScanReceiptRepository
	eventPublisher  interfaces.EventPublisher
}

// NewScanRedemptionService creates a new scan redemption service
func NewScanRedemptionService(
	userRepo interfaces.UserRepository,
	checkpointRepo interfaces.CheckpointRepository,
	scanReceiptRepo interfaces.ScanReceiptRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.ScanRedemptionService {
	return &scanRedemptionService{
		userRepo:        userRepo,
		checkpointRepo:  checkpointRepo,
		scanReceiptRepo: scanReceiptRepo,
		eventPublisher:  eventPublisher,
	}
}

// RedeemCheckpoint validates the scan and credits the checkpoint's points
func (s *scanRedemptionService) RedeemCheckpoint(ctx context.Context, userID, checkpointID string, location entities.Coordinate) (*entities.ScanResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, entities.NewLedgerError(entities.KindUnauthenticated, nil)
	}
	if strings.TrimSpace(checkpointID) == "" {
		return nil, entities.NewLedgerError(entities.KindCheckpointNotFound, map[string]any{
			"checkpoint_id": checkpointID,
		})
	}
	if err := location.Validate(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, entities.NewLedgerError(entities.KindUnauthenticated, map[string]any{
			"user_id": userID,
		})
	}

	checkpoint, err := s.checkpointRepo.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}
	if checkpoint == nil {
		return nil, entities.NewLedgerError(entities.KindCheckpointNotFound, map[string]any{
			"checkpoint_id": checkpointID,
		})
	}
	if !checkpoint.Active {
		return nil, entities.NewLedgerError(entities.KindCheckpointInactive, map[string]any{
			"checkpoint_id": checkpointID,
		})
	}

	fence, err := geo.Measure(location, checkpoint.Location, checkpoint.RadiusMeters)
	if err != nil {
		return nil, err
	}
	if !fence.Within {
		return nil, entities.NewLedgerError(entities.KindOutOfRange, map[string]any{
			"distance_meters": fence.DistanceMeters,
			"radius_meters":   fence.RadiusMeters,
		})
	}

	existing, err := s.scanReceiptRepo.Get(ctx, userID, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan receipt: %w", err)
	}
	if existing != nil {
		return nil, entities.NewLedgerError(entities.KindAlreadyRedeemed, map[string]any{
			"checkpoint_id": checkpointID,
			"redeemed_at":   existing.RedeemedAt,
		})
	}

	newBalance, err := s.userRepo.AddPoints(ctx, userID, checkpoint.PointsAwarded)
	if err != nil {
		return nil, fmt.Errorf("failed to credit points: %w", err)
	}

	receipt := &entities.ScanReceipt{
		UserID:        userID,
		CheckpointID:  checkpointID,
		PointsAwarded: checkpoint.PointsAwarded,
	}
	if err := s.scanReceiptRepo.Create(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to create scan receipt: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":         userID,
		"checkpointID":   checkpointID,
		"pointsAwarded":  checkpoint.PointsAwarded,
		"newBalance":     newBalance,
		"distanceMeters": fence.DistanceMeters,
	}).Debug("Checkpoint redeemed within transaction")

	publishEvent(s.eventPublisher, events.CheckpointRedeemedEvent{
		UserID:        userID,
		CheckpointID:  checkpointID,
		PointsAwarded: checkpoint.PointsAwarded,
		RedeemedAt:    receipt.RedeemedAt,
	})
	publishEvent(s.eventPublisher, events.PointsBalanceChangedEvent{
		UserID:          userID,
		OldBalance:      user.TotalPoints,
		NewBalance:      newBalance,
		ChangeAmount:    checkpoint.PointsAwarded,
		TransactionType: entities.TransactionTypeCheckpointScan,
	})

	return &entities.ScanResult{
		CheckpointID:  checkpointID,
		PointsAwarded: checkpoint.PointsAwarded,
		TotalPoints:   newBalance,
		RedeemedAt:    receipt.RedeemedAt,
	}, nil
}
