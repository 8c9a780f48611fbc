package interfaces

import (
	"context"

	"fanhunt/domain/entities"
)

// ScanRedemptionService defines checkpoint redemption
type ScanRedemptionService interface {
	// RedeemCheckpoint credits the checkpoint's points if the user is inside
	// its geofence and has not redeemed it before
	RedeemCheckpoint(ctx context.Context, userID, checkpointID string, location entities.Coordinate) (*entities.ScanResult, error)
}

// RewardRedemptionService defines spending points on rewards
type RewardRedemptionService interface {
	// RedeemReward debits the reward's price and records a receipt
	RedeemReward(ctx context.Context, userID, rewardID string) (*entities.RewardResult, error)
}

// LeaderboardService defines the ranked points view
type LeaderboardService interface {
	// TopUsers returns up to limit entries ranked from 1
	TopUsers(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
}

// Registration holds the fields supplied when an account is created
type Registration struct {
	UserID        string
	DisplayName   string
	Email         string
	FavouriteTeam string
}

// UserService defines account operations outside the ledger core
type UserService interface {
	// Register returns the existing account or creates one with zero points
	Register(ctx context.Context, reg Registration) (*entities.User, error)

	// GetProfile returns the user's account
	GetProfile(ctx context.Context, userID string) (*entities.User, error)

	// UpdateFavouriteTeam changes the user's favourite team
	UpdateFavouriteTeam(ctx context.Context, userID, team string) error

	// GetStatement reconciles the balance against the user's receipts
	GetStatement(ctx context.Context, userID string) (*entities.Statement, error)
}

// CatalogService defines checkpoint and reward catalog maintenance
type CatalogService interface {
	// Import validates and upserts checkpoints and rewards
	Import(ctx context.Context, checkpoints []*entities.Checkpoint, rewards []*entities.Reward) error

	// ListActiveRewards returns the rewards that can currently be redeemed
	ListActiveRewards(ctx context.Context) ([]*entities.Reward, error)
}
