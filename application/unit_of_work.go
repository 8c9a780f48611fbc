package application

import (
	"context"

	"fanhunt/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases pending events
	Commit() error

	// Rollback rolls back the transaction and drops pending events.
	// It is a no-op once the transaction has been committed.
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	CheckpointRepository() interfaces.CheckpointRepository
	RewardRepository() interfaces.RewardRepository
	ScanReceiptRepository() interfaces.ScanReceiptRepository
	RewardReceiptRepository() interfaces.RewardReceiptRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create returns a unit of work that runs as a serializable read-write transaction
	Create() UnitOfWork

	// CreateReadOnly returns a unit of work that reads from a single snapshot
	CreateReadOnly() UnitOfWork
}
