package testhelpers

import (
	"context"

	"fanhunt/domain/entities"
	"fanhunt/events"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) CreateIfNotExists(ctx context.Context, user *entities.User) (*entities.User, bool, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entities.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) AddPoints(ctx context.Context, userID string, points int64) (int64, error) {
	args := m.Called(ctx, userID, points)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) DeductPoints(ctx context.Context, userID string, points int64) (int64, bool, error) {
	args := m.Called(ctx, userID, points)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) UpdateFavouriteTeam(ctx context.Context, userID string, team string) (bool, error) {
	args := m.Called(ctx, userID, team)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) GetTopByPoints(ctx context.Context, limit int) ([]*entities.User, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// MockCheckpointRepository is a mock implementation of CheckpointRepository
type MockCheckpointRepository struct {
	mock.Mock
}

func (m *MockCheckpointRepository) GetByID(ctx context.Context, checkpointID string) (*entities.Checkpoint, error) {
	args := m.Called(ctx, checkpointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Checkpoint), args.Error(1)
}

func (m *MockCheckpointRepository) Upsert(ctx context.Context, checkpoint *entities.Checkpoint) error {
	args := m.Called(ctx, checkpoint)
	return args.Error(0)
}

// MockRewardRepository is a mock implementation of RewardRepository
type MockRewardRepository struct {
	mock.Mock
}

func (m *MockRewardRepository) GetByID(ctx context.Context, rewardID string) (*entities.Reward, error) {
	args := m.Called(ctx, rewardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Reward), args.Error(1)
}

func (m *MockRewardRepository) ListActive(ctx context.Context) ([]*entities.Reward, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Reward), args.Error(1)
}

func (m *MockRewardRepository) Upsert(ctx context.Context, reward *entities.Reward) error {
	args := m.Called(ctx, reward)
	return args.Error(0)
}

// MockScanReceiptRepository is a mock implementation of ScanReceiptRepository
type MockScanReceiptRepository struct {
	mock.Mock
}

func (m *MockScanReceiptRepository) Get(ctx context.Context, userID, checkpointID string) (*entities.ScanReceipt, error) {
	args := m.Called(ctx, userID, checkpointID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ScanReceipt), args.Error(1)
}

func (m *MockScanReceiptRepository) Create(ctx context.Context, receipt *entities.ScanReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockScanReceiptRepository) ListByUser(ctx context.Context, userID string) ([]*entities.ScanReceipt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ScanReceipt), args.Error(1)
}

// MockRewardReceiptRepository is a mock implementation of RewardReceiptRepository
type MockRewardReceiptRepository struct {
	mock.Mock
}

func (m *MockRewardReceiptRepository) Create(ctx context.Context, receipt *entities.RewardReceipt) error {
	args := m.Called(ctx, receipt)
	return args.Error(0)
}

func (m *MockRewardReceiptRepository) ListByUser(ctx context.Context, userID string) ([]*entities.RewardReceipt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RewardReceipt), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
