package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fanhunt/domain/entities"
	"fanhunt/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newScanService(m *TestMocks) *scanRedemptionService {
	return NewScanRedemptionService(m.UserRepo, m.CheckpointRepo, m.ScanReceiptRepo, m.EventPublisher).(*scanRedemptionService)
}

func TestScanRedemptionService_RedeemCheckpoint_Success(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mocks := NewTestMocks()
	service := newScanService(mocks)
	redeemedAt := time.Date(2026, 3, 14, 15, 0, 0, 0, time.UTC)

	mocks.UserRepo.On("GetByID", ctx, TestUserID).Return(testUser(10), nil)
	mocks.CheckpointRepo.On("GetByID", ctx, TestCheckpointID).Return(testCheckpoint(0, 0), nil)
	mocks.ScanReceiptRepo.On("Get", ctx, TestUserID, TestCheckpointID).Return(nil, nil)
	mocks.UserRepo.On("AddPoints", ctx, TestUserID, int64(20)).Return(int64(30), nil)
	mocks.ScanReceiptRepo.On("Create", ctx, mock.MatchedBy(func(r *entities.ScanReceipt) bool {
		return r.UserID == TestUserID && r.CheckpointID == TestCheckpointID && r.PointsAwarded == 20
	})).Run(stampRedeemedAt(redeemedAt)).Return(nil)
	mocks.EventPublisher.On("Publish", events.CheckpointRedeemedEvent{
		UserID:        TestUserID,
		CheckpointID:  TestCheckpointID,
		PointsAwarded: 20,
		RedeemedAt:    redeemedAt,
	}).Return(nil)
	mocks.EventPublisher.On("Publish", events.PointsBalanceChangedEvent{
		UserID:          TestUserID,
		OldBalance:      10,
		NewBalance:      30,
		ChangeAmount:    20,
		TransactionType: entities.TransactionTypeCheckpointScan,
	}).Return(nil)

	result, err := service.RedeemCheckpoint(ctx, TestUserID, TestCheckpointID, entities.NewCoordinate(0, 0))
	require.NoError(t, err)

	assert.Equal(t, TestCheckpointID, result.CheckpointID)
	assert.Equal(t, int64(20), result.PointsAwarded)
	assert.Equal(t, int64(30), result.TotalPoints)
	assert.Equal(t, redeemedAt, result.RedeemedAt)
	mocks.AssertAllExpectations(t)
}

func TestScanRedemptionService_RedeemCheckpoint_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		userID       string
		checkpointID string
		location     entities.Coordinate
		setup        func(ctx context.Context, m *TestMocks)
		wantKind     entities.ErrorKind
	}{
		{
			name:         "empty user ID",
			userID:       "",
			checkpointID: TestCheckpointID,
			location:     entities.NewCoordinate(0, 0),
			setup:        func(ctx context.Context, m *TestMocks) {},
			wantKind:     entities.KindUnauthenticated,
		},
		{
			name:         "unknown user",
			userID:       TestUserID,
			checkpointID: TestCheckpointID,
			location:     entities.NewCoordinate(0, 0),
			setup: func(ctx context.Context, m *TestMocks) {
				m.UserRepo.On("GetByID", ctx, TestUserID).Return(nil, nil)
			},
			wantKind: entities.KindUnauthenticated,
		},
		{
			name:         "empty checkpoint ID",
			userID:       TestUserID,
			checkpointID: " ",
			location:     entities.NewCoordinate(0, 0),
			setup:        func(ctx context.Context, m *TestMocks) {},
			wantKind:     entities.KindCheckpointNotFound,
		},
		{
			name:         "invalid user coordinate",
			userID:       TestUserID,
			checkpointID: TestCheckpointID,
			location:     entities.NewCoordinate(95, 0),
			setup:        func(ctx context.Context, m *TestMocks) {},
			wantKind:     entities.KindInvalidCoordinate,
		},
		{
			name:         "checkpoint missing",
			userID:       TestUserID,
			checkpointID: TestCheckpointID,
			location:     entities.NewCoordinate(0, 0),
			setup: func(ctx context.Context, m *TestMocks) {
				m.UserRepo.On("GetByID", ctx, TestUserID).Return(testUser(0), nil)
				m.CheckpointRepo.On("GetByID", ctx, TestCheckpointID).Return(nil, nil)
			},
			wantKind: entities.KindCheckpointNotFound,
		},
		{
			name:         "checkpoint inactive",
			userID:       TestUserID,
			checkpointID: TestCheckpointID,
			location:     entities.NewCoordinate(0, 0),
			setup: func(ctx context.Context, m *TestMocks) {
				checkpoint := testCheckpoint(0, 0)
				checkpoint.Active = false
				m.UserRepo.On("GetByID", ctx, TestUserID).Return(testUser(0), nil)
				m.CheckpointRepo.On("GetByID", ctx, TestCheckpointID).Return(checkpoint, nil)
			},
			wantKind: entities.KindCheckpointInactive,
		},
		{
			name:         "already redeemed",
			userID:       TestUserID,
			checkpointID: TestCheckpointID,
			location:     entities.NewCoordinate(0, 0),
			setup: func(ctx context.Context, m *TestMocks) {
				m.UserRepo.On("GetByID", ctx, TestUserID).Return(testUser(20), nil)
				m.CheckpointRepo.On("GetByID", ctx, TestCheckpointID).Return(testCheckpoint(0, 0), nil)
				m.ScanReceiptRepo.On("Get", ctx, TestUserID, TestCheckpointID).Return(&entities.ScanReceipt{
					UserID:        TestUserID,
					CheckpointID:  TestCheckpointID,
					PointsAwarded: 20,
					RedeemedAt:    time.Now(),
				}, nil)
			},
			wantKind: entities.KindAlreadyRedeemed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mocks := NewTestMocks()
			tt.setup(ctx, mocks)
			service := newScanService(mocks)

			result, err := service.RedeemCheckpoint(ctx, tt.userID, tt.checkpointID, tt.location)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Equal(t, tt.wantKind, entities.KindOf(err))

			mocks.UserRepo.AssertNotCalled(t, "AddPoints", mock.Anything, mock.Anything, mock.Anything)
			mocks.ScanReceiptRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
			mocks.AssertAllExpectations(t)
		})
	}
}

func TestScanRedemptionService_RedeemCheckpoint_OutOfRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mocks := NewTestMocks()
	service := newScanService(mocks)

	mocks.UserRepo.On("GetByID", ctx, TestUserID).Return(testUser(0), nil)
	mocks.CheckpointRepo.On("GetByID", ctx, TestCheckpointID).Return(testCheckpoint(0, 0), nil)

	_, err := service.RedeemCheckpoint(ctx, TestUserID, TestCheckpointID, metersNorth(0, 0, 200))
	require.ErrorIs(t, err, entities.ErrOutOfRange)

	details := entities.DetailsOf(err)
	assert.InDelta(t, 200, details["distance_meters"], 0.01)
	assert.Equal(t, 50.0, details["radius_meters"])

	mocks.ScanReceiptRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
	mocks.UserRepo.AssertNotCalled(t, "AddPoints", mock.Anything, mock.Anything, mock.Anything)
	mocks.AssertAllExpectations(t)
}

func TestScanRedemptionService_RedeemCheckpoint_ZeroRadius(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mocks := NewTestMocks()
	service := newScanService(mocks)

	checkpoint := testCheckpoint(0, 0)
	checkpoint.RadiusMeters = 0

	mocks.UserRepo.On("GetByID", ctx, TestUserID).Return(testUser(0), nil)
	mocks.CheckpointRepo.On("GetByID", ctx, TestCheckpointID).Return(checkpoint, nil)

	_, err := service.RedeemCheckpoint(ctx, TestUserID, TestCheckpointID, metersNorth(0, 0, 30))
	require.ErrorIs(t, err, entities.ErrOutOfRange)
	assert.Equal(t, 0.0, entities.DetailsOf(err)["radius_meters"])
	mocks.UserRepo.AssertNotCalled(t, "AddPoints", mock.Anything, mock.Anything, mock.Anything)

	// Standing exactly on the checkpoint is still within a zero radius
	mocks.ScanReceiptRepo.On("Get", ctx, TestUserID, TestCheckpointID).Return(nil, nil)
	mocks.UserRepo.On("AddPoints", ctx, TestUserID, int64(20)).Return(int64(20), nil)
	mocks.ScanReceiptRepo.On("Create", ctx, mock.Anything).Return(nil)
	mocks.EventPublisher.On("Publish", mock.Anything).Return(nil)

	result, err := service.RedeemCheckpoint(ctx, TestUserID, TestCheckpointID, entities.NewCoordinate(0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(20), result.PointsAwarded)
}

func TestScanRedemptionService_RedeemCheckpoint_RepositoryErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dbErr := errors.New("connection reset")

	t.Run("receipt lookup fails", func(t *testing.T) {
		mocks := NewTestMocks()
		service := newScanService(mocks)
		mocks.UserRepo.On("GetByID", ctx, TestUserID).Return(testUser(0), nil)
		mocks.CheckpointRepo.On("GetByID", ctx, TestCheckpointID).Return(testCheckpoint(0, 0), nil)
		mocks.ScanReceiptRepo.On("Get", ctx, TestUserID, TestCheckpointID).Return(nil, dbErr)

		_, err := service.RedeemCheckpoint(ctx, TestUserID, TestCheckpointID, entities.NewCoordinate(0, 0))
		require.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to get scan receipt")
	})

	t.Run("receipt insert conflicts", func(t *testing.T) {
		mocks := NewTestMocks()
		service := newScanService(mocks)
		conflict := entities.WrapLedgerError(entities.KindAlreadyRedeemed, dbErr, nil)

		mocks.UserRepo.On("GetByID", ctx, TestUserID).Return(testUser(0), nil)
		mocks.CheckpointRepo.On("GetByID", ctx, TestCheckpointID).Return(testCheckpoint(0, 0), nil)
		mocks.ScanReceiptRepo.On("Get", ctx, TestUserID, TestCheckpointID).Return(nil, nil)
		mocks.UserRepo.On("AddPoints", ctx, TestUserID, int64(20)).Return(int64(20), nil)
		mocks.ScanReceiptRepo.On("Create", ctx, mock.Anything).Return(conflict)

		_, err := service.RedeemCheckpoint(ctx, TestUserID, TestCheckpointID, entities.NewCoordinate(0, 0))
		assert.ErrorIs(t, err, entities.ErrAlreadyRedeemed)
		mocks.EventPublisher.AssertNotCalled(t, "Publish", mock.Anything)
	})
}

func TestScanRedemptionService_PublishFailureDoesNotFailRedemption(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	mocks := NewTestMocks()
	service := newScanService(mocks)

	mocks.UserRepo.On("GetByID", ctx, TestUserID).Return(testUser(0), nil)
	mocks.CheckpointRepo.On("GetByID", ctx, TestCheckpointID).Return(testCheckpoint(0, 0), nil)
	mocks.ScanReceiptRepo.On("Get", ctx, TestUserID, TestCheckpointID).Return(nil, nil)
	mocks.UserRepo.On("AddPoints", ctx, TestUserID, int64(20)).Return(int64(20), nil)
	mocks.ScanReceiptRepo.On("Create", ctx, mock.Anything).Return(nil)
	mocks.EventPublisher.On("Publish", mock.Anything).Return(errors.New("queue full"))

	result, err := service.RedeemCheckpoint(ctx, TestUserID, TestCheckpointID, entities.NewCoordinate(0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(20), result.TotalPoints)
}
