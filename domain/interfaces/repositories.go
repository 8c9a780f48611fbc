package interfaces

import (
	"context"

	"fanhunt/domain/entities"
	"fanhunt/events"
)

// UserRepository defines the interface for user account data access.
// Lookups return nil, nil when the row does not exist.
type UserRepository interface {
	// GetByID retrieves a user by their identity
	GetByID(ctx context.Context, userID string) (*entities.User, error)

	// CreateIfNotExists inserts a new account with zero points. When the
	// account already exists it is returned unchanged and created is false.
	CreateIfNotExists(ctx context.Context, user *entities.User) (stored *entities.User, created bool, err error)

	// AddPoints credits points and returns the new total
	AddPoints(ctx context.Context, userID string, points int64) (int64, error)

	// DeductPoints debits points only if the balance covers them. ok is false
	// when the balance was insufficient and nothing was written.
	DeductPoints(ctx context.Context, userID string, points int64) (newBalance int64, ok bool, err error)

	// UpdateFavouriteTeam changes the user's team and reports whether the user exists
	UpdateFavouriteTeam(ctx context.Context, userID string, team string) (bool, error)

	// GetTopByPoints returns users ordered by total points descending, then ID ascending
	GetTopByPoints(ctx context.Context, limit int) ([]*entities.User, error)
}

// CheckpointRepository defines the interface for checkpoint catalog access
type CheckpointRepository interface {
	// GetByID retrieves a checkpoint by its ID
	GetByID(ctx context.Context, checkpointID string) (*entities.Checkpoint, error)

	// Upsert creates or replaces a checkpoint definition
	Upsert(ctx context.Context, checkpoint *entities.Checkpoint) error
}

// RewardRepository defines the interface for reward catalog access
type RewardRepository interface {
	// GetByID retrieves a reward by its ID
	GetByID(ctx context.Context, rewardID string) (*entities.Reward, error)

	// ListActive returns all active rewards ordered by points required
	ListActive(ctx context.Context) ([]*entities.Reward, error)

	// Upsert creates or replaces a reward definition
	Upsert(ctx context.Context, reward *entities.Reward) error
}

// ScanReceiptRepository defines the interface for scan receipts. Receipts
// are immutable so there is no update or delete.
type ScanReceiptRepository interface {
	// Get retrieves the receipt for a user and checkpoint
	Get(ctx context.Context, userID, checkpointID string) (*entities.ScanReceipt, error)

	// Create inserts a receipt and fills in RedeemedAt
	Create(ctx context.Context, receipt *entities.ScanReceipt) error

	// ListByUser returns all receipts for a user, oldest first
	ListByUser(ctx context.Context, userID string) ([]*entities.ScanReceipt, error)
}

// RewardReceiptRepository defines the interface for reward receipts
type RewardReceiptRepository interface {
	// Create inserts a receipt and fills in RedeemedAt
	Create(ctx context.Context, receipt *entities.RewardReceipt) error

	// ListByUser returns all receipts for a user, oldest first
	ListByUser(ctx context.Context, userID string) ([]*entities.RewardReceipt, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}
