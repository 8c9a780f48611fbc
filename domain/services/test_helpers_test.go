package services

import (
	"testing"
	"time"

	"fanhunt/domain/entities"
	"fanhunt/domain/testhelpers"

	"github.com/stretchr/testify/mock"
)

const (
	TestUserID       = "fan-123"
	TestCheckpointID = "gate-a"
	TestRewardID     = "club-scarf"
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	UserRepo          *testhelpers.MockUserRepository
	CheckpointRepo    *testhelpers.MockCheckpointRepository
	RewardRepo        *testhelpers.MockRewardRepository
	ScanReceiptRepo   *testhelpers.MockScanReceiptRepository
	RewardReceiptRepo *testhelpers.MockRewardReceiptRepository
	EventPublisher    *testhelpers.MockEventPublisher
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		UserRepo:          &testhelpers.MockUserRepository{},
		CheckpointRepo:    &testhelpers.MockCheckpointRepository{},
		RewardRepo:        &testhelpers.MockRewardRepository{},
		ScanReceiptRepo:   &testhelpers.MockScanReceiptRepository{},
		RewardReceiptRepo: &testhelpers.MockRewardReceiptRepository{},
		EventPublisher:    &testhelpers.MockEventPublisher{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.UserRepo.AssertExpectations(t)
	m.CheckpointRepo.AssertExpectations(t)
	m.RewardRepo.AssertExpectations(t)
	m.ScanReceiptRepo.AssertExpectations(t)
	m.RewardReceiptRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
}

func testUser(points int64) *entities.User {
	return &entities.User{
		ID:          TestUserID,
		DisplayName: "Test Fan",
		TotalPoints: points,
	}
}

func testCheckpoint(lat, lng float64) *entities.Checkpoint {
	return &entities.Checkpoint{
		ID:            TestCheckpointID,
		Location:      entities.NewCoordinate(lat, lng),
		RadiusMeters:  50,
		PointsAwarded: 20,
		Active:        true,
	}
}

func testReward(pointsRequired int64) *entities.Reward {
	return &entities.Reward{
		ID:             TestRewardID,
		Name:           "Club scarf",
		PointsRequired: pointsRequired,
		Active:         true,
	}
}

// stampRedeemedAt mimics the repository filling in the commit timestamp
func stampRedeemedAt(at time.Time) func(mock.Arguments) {
	return func(args mock.Arguments) {
		switch r := args.Get(1).(type) {
		case *entities.ScanReceipt:
			r.RedeemedAt = at
		case *entities.RewardReceipt:
			r.RedeemedAt = at
		}
	}
}

// metersNorth returns a coordinate the given distance due north of lat/lng
func metersNorth(lat, lng, meters float64) entities.Coordinate {
	const metersPerDegree = 6371008.8 * 3.141592653589793 / 180
	return entities.NewCoordinate(lat+meters/metersPerDegree, lng)
}
