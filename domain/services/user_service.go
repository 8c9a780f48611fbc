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

// userService implements account registration and profile reads
type userService struct {
	userRepo          interfaces.UserRepository
	scanReceiptRepo   interfaces.ScanReceiptRepository
	rewardReceiptRepo interfaces.RewardReceiptRepository
	eventPublisher    interfaces.EventPublisher
}

// NewUserService creates a new user service
func NewUserService(
	userRepo interfaces.UserRepository,
	scanReceiptRepo interfaces.ScanReceiptRepository,
	rewardReceiptRepo interfaces.RewardReceiptRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.UserService {
	return &userService{
		userRepo:          userRepo,
		scanReceiptRepo:   scanReceiptRepo,
		rewardReceiptRepo: rewardReceiptRepo,
		eventPublisher:    eventPublisher,
	}
}

// Register returns the existing account or creates a new one with zero points
func (s *userService) Register(ctx context.Context, reg interfaces.Registration) (*entities.User, error) {
	if strings.TrimSpace(reg.UserID) == "" {
		return nil, entities.NewLedgerError(entities.KindUnauthenticated, nil)
	}

	user := &entities.User{
		ID:            reg.UserID,
		DisplayName:   strings.TrimSpace(reg.DisplayName),
		Email:         strings.TrimSpace(reg.Email),
		FavouriteTeam: strings.TrimSpace(reg.FavouriteTeam),
	}
	stored, created, err := s.userRepo.CreateIfNotExists(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if created {
		log.WithFields(log.Fields{
			"userID":      stored.ID,
			"displayName": stored.DisplayName,
		}).Info("Registered new user")

		publishEvent(s.eventPublisher, events.UserRegisteredEvent{
			UserID:        stored.ID,
			DisplayName:   stored.DisplayName,
			FavouriteTeam: stored.FavouriteTeam,
		})
	}

	return stored, nil
}

// GetProfile returns the user's account
func (s *userService) GetProfile(ctx context.Context, userID string) (*entities.User, error) {
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
	return user, nil
}

// UpdateFavouriteTeam changes the user's favourite team
func (s *userService) UpdateFavouriteTeam(ctx context.Context, userID, team string) error {
	if strings.TrimSpace(userID) == "" {
		return entities.NewLedgerError(entities.KindUnauthenticated, nil)
	}

	found, err := s.userRepo.UpdateFavouriteTeam(ctx, userID, strings.TrimSpace(team))
	if err != nil {
		return fmt.Errorf("failed to update favourite team: %w", err)
	}
	if !found {
		return entities.NewLedgerError(entities.KindUserNotFound, map[string]any{
			"user_id": userID,
		})
	}
	return nil
}

// GetStatement reconciles the stored balance against the user's receipts.
// The caller is expected to run it inside a single snapshot.
func (s *userService) GetStatement(ctx context.Context, userID string) (*entities.Statement, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	scans, err := s.scanReceiptRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scan receipts: %w", err)
	}

	rewards, err := s.rewardReceiptRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward receipts: %w", err)
	}

	statement := entities.NewStatement(user, scans, rewards)
	if !statement.Balanced() {
		log.WithFields(log.Fields{
			"userID":      userID,
			"totalPoints": user.TotalPoints,
			"earned":      statement.Earned,
			"spent":       statement.Spent,
		}).Error("Balance does not match receipts")
	}

	return statement, nil
}
