package application

import (
	"context"
	"sync"
	"time"

	"fanhunt/domain/entities"
	"fanhunt/domain/interfaces"
	"fanhunt/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	userRepo          interfaces.UserRepository
	checkpointRepo    interfaces.CheckpointRepository
	rewardRepo        interfaces.RewardRepository
	scanReceiptRepo   interfaces.ScanReceiptRepository
	rewardReceiptRepo interfaces.RewardReceiptRepository
	eventBus          interfaces.EventPublisher
}

// SetRepositories wires the repository mocks returned by the getters
func (m *MockUnitOfWork) SetRepositories(
	userRepo interfaces.UserRepository,
	checkpointRepo interfaces.CheckpointRepository,
	rewardRepo interfaces.RewardRepository,
	scanReceiptRepo interfaces.ScanReceiptRepository,
	rewardReceiptRepo interfaces.RewardReceiptRepository,
	eventBus interfaces.EventPublisher,
) {
	m.userRepo = userRepo
	m.checkpointRepo = checkpointRepo
	m.rewardRepo = rewardRepo
	m.scanReceiptRepo = scanReceiptRepo
	m.rewardReceiptRepo = rewardReceiptRepo
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() interfaces.UserRepository { return m.userRepo }
func (m *MockUnitOfWork) CheckpointRepository() interfaces.CheckpointRepository {
	return m.checkpointRepo
}
func (m *MockUnitOfWork) RewardRepository() interfaces.RewardRepository { return m.rewardRepo }
func (m *MockUnitOfWork) ScanReceiptRepository() interfaces.ScanReceiptRepository {
	return m.scanReceiptRepo
}
func (m *MockUnitOfWork) RewardReceiptRepository() interfaces.RewardReceiptRepository {
	return m.rewardReceiptRepo
}
func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher { return m.eventBus }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

func (m *MockUnitOfWorkFactory) CreateReadOnly() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

type repoMocks struct {
	UserRepo          *testhelpers.MockUserRepository
	CheckpointRepo    *testhelpers.MockCheckpointRepository
	RewardRepo        *testhelpers.MockRewardRepository
	ScanReceiptRepo   *testhelpers.MockScanReceiptRepository
	RewardReceiptRepo *testhelpers.MockRewardReceiptRepository
	EventPublisher    *testhelpers.MockEventPublisher
}

// newCommittingUoW returns a unit of work whose Begin, Commit and Rollback succeed
func newCommittingUoW() (*MockUnitOfWork, *repoMocks) {
	repos := &repoMocks{
		UserRepo:          &testhelpers.MockUserRepository{},
		CheckpointRepo:    &testhelpers.MockCheckpointRepository{},
		RewardRepo:        &testhelpers.MockRewardRepository{},
		ScanReceiptRepo:   &testhelpers.MockScanReceiptRepository{},
		RewardReceiptRepo: &testhelpers.MockRewardReceiptRepository{},
		EventPublisher:    &testhelpers.MockEventPublisher{},
	}

	uow := &MockUnitOfWork{}
	uow.SetRepositories(repos.UserRepo, repos.CheckpointRepo, repos.RewardRepo,
		repos.ScanReceiptRepo, repos.RewardReceiptRepo, repos.EventPublisher)
	uow.On("Begin", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)
	return uow, repos
}

type transactionRecord struct {
	operation string
	outcome   string
	attempts  int
}

type redemptionRecord struct {
	redemptionType string
	outcome        string
}

// recordingMetrics captures everything reported to it
type recordingMetrics struct {
	mu           sync.Mutex
	transactions []transactionRecord
	redemptions  []redemptionRecord
}

func (r *recordingMetrics) RecordTransaction(operation, outcome string, attempts int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactions = append(r.transactions, transactionRecord{operation, outcome, attempts})
}

func (r *recordingMetrics) RecordRedemption(redemptionType, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redemptions = append(r.redemptions, redemptionRecord{redemptionType, outcome})
}

// fastPolicy keeps retry waits short enough for unit tests
func fastPolicy(maxAttempts int) TransactionPolicy {
	return TransactionPolicy{
		MaxAttempts:    maxAttempts,
		AttemptTimeout: time.Second,
		RetryBudget:    5 * time.Second,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

// memoryLeaderboardCache is an in-process LeaderboardCache
type memoryLeaderboardCache struct {
	mu          sync.Mutex
	entries     map[int][]*entities.LeaderboardEntry
	getErr      error
	invalidated int
}

func newMemoryLeaderboardCache() *memoryLeaderboardCache {
	return &memoryLeaderboardCache{entries: make(map[int][]*entities.LeaderboardEntry)}
}

func (c *memoryLeaderboardCache) Get(_ context.Context, limit int) ([]*entities.LeaderboardEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	e, ok := c.entries[limit]
	return e, ok, nil
}

func (c *memoryLeaderboardCache) Set(_ context.Context, limit int, entries []*entities.LeaderboardEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[limit] = entries
	return nil
}

func (c *memoryLeaderboardCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[int][]*entities.LeaderboardEntry)
	c.invalidated++
	return nil
}
