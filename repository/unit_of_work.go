package repository

import (
	"context"
	"errors"
	"fmt"

	"fanhunt/application"
	"fanhunt/database"
	"fanhunt/domain/interfaces"
	"fanhunt/events"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db                *database.DB
	mode              database.TxMode
	tx                pgx.Tx
	ctx               context.Context
	transactionalBus  *events.TransactionalBus
	userRepo          interfaces.UserRepository
	checkpointRepo    interfaces.CheckpointRepository
	rewardRepo        interfaces.RewardRepository
	scanReceiptRepo   interfaces.ScanReceiptRepository
	rewardReceiptRepo interfaces.RewardReceiptRepository
}

type unitOfWorkFactory struct {
	db        *database.DB
	publisher events.Publisher
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory. Events queued inside
// a unit of work reach publisher only after the transaction commits.
func NewUnitOfWorkFactory(db *database.DB, publisher events.Publisher) application.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:        db,
		publisher: publisher,
	}
}

// Create returns a serializable read-write unit of work
func (f *unitOfWorkFactory) Create() application.UnitOfWork {
	return f.create(database.TxModeReadWrite)
}

// CreateReadOnly returns a unit of work over a single read-only snapshot
func (f *unitOfWorkFactory) CreateReadOnly() application.UnitOfWork {
	return f.create(database.TxModeReadOnly)
}

func (f *unitOfWorkFactory) create(mode database.TxMode) *unitOfWork {
	return &unitOfWork{
		db:               f.db,
		mode:             mode,
		transactionalBus: events.NewTransactionalBus(f.publisher),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginMode(ctx, u.mode)
	if err != nil {
		return classifyError(err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = newUserRepository(tx)
	u.checkpointRepo = newCheckpointRepository(tx)
	u.rewardRepo = newRewardRepository(tx)
	u.scanReceiptRepo = newScanReceiptRepository(tx)
	u.rewardReceiptRepo = newRewardReceiptRepository(tx)

	return nil
}

// Commit commits the transaction, then releases queued events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		// The server may or may not have applied it; the caller decides
		u.tx = nil
		u.transactionalBus.Discard()
		return classifyError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	u.tx = nil

	// Flush pending events after successful commit. The write is durable
	// at this point so a delivery failure must not fail the commit.
	if err := u.transactionalBus.Flush(u.ctx); err != nil {
		log.WithError(err).Warn("Failed to flush events after commit")
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	// The attempt context may already be done; rollback must still reach the server
	err := u.tx.Rollback(context.WithoutCancel(u.ctx))
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		u.tx = nil
		u.transactionalBus.Discard()
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	u.transactionalBus.Discard()

	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() interfaces.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// CheckpointRepository returns the checkpoint repository for this unit of work
func (u *unitOfWork) CheckpointRepository() interfaces.CheckpointRepository {
	if u.checkpointRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.checkpointRepo
}

// RewardRepository returns the reward repository for this unit of work
func (u *unitOfWork) RewardRepository() interfaces.RewardRepository {
	if u.rewardRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rewardRepo
}

// ScanReceiptRepository returns the scan receipt repository for this unit of work
func (u *unitOfWork) ScanReceiptRepository() interfaces.ScanReceiptRepository {
	if u.scanReceiptRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.scanReceiptRepo
}

// RewardReceiptRepository returns the reward receipt repository for this unit of work
func (u *unitOfWork) RewardReceiptRepository() interfaces.RewardReceiptRepository {
	if u.rewardReceiptRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rewardReceiptRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() interfaces.EventPublisher {
	return u.transactionalBus
}
