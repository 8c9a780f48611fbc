package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"fanhunt/application"
	"fanhunt/domain/entities"
	"fanhunt/events"
	"fanhunt/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPublisher collects events released by committed units of work
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type())
	}
	return types
}

type ledgerStack struct {
	db          *testutil.TestDatabase
	publisher   *recordingPublisher
	redemptions *application.RedemptionHandler
	profiles    *application.ProfileHandler
}

func setupLedger(t *testing.T) *ledgerStack {
	testDB := testutil.SetupTestDatabase(t)
	publisher := &recordingPublisher{}

	policy := application.TransactionPolicy{
		MaxAttempts:    20,
		AttemptTimeout: 10 * time.Second,
		RetryBudget:    30 * time.Second,
		InitialBackoff: 5 * time.Millisecond,
		MaxBackoff:     100 * time.Millisecond,
	}
	runner := application.NewTransactionRunner(NewUnitOfWorkFactory(testDB.DB, publisher), policy, nil)

	return &ledgerStack{
		db:          testDB,
		publisher:   publisher,
		redemptions: application.NewRedemptionHandler(runner, nil),
		profiles:    application.NewProfileHandler(runner),
	}
}

// metersNorthOfEquator returns the latitude d meters north of (0,0)
func metersNorthOfEquator(d float64) float64 {
	const metersPerDegree = 6371008.8 * 3.141592653589793 / 180
	return d / metersPerDegree
}

func TestLedger_CheckpointScenarios(t *testing.T) {
	t.Parallel()
	stack := setupLedger(t)
	ctx := context.Background()

	testutil.SeedUser(t, stack.db.DB, "fan-1", 0)
	testutil.SeedCheckpoint(t, stack.db.DB, &entities.Checkpoint{
		ID:            "equator",
		Location:      entities.NewCoordinate(0, 0),
		RadiusMeters:  50,
		PointsAwarded: 20,
		Active:        true,
	})

	t.Run("scan at the checkpoint succeeds", func(t *testing.T) {
		result, err := stack.redemptions.RedeemCheckpoint(ctx, "fan-1", "equator", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(20), result.PointsAwarded)
		assert.Equal(t, int64(20), result.TotalPoints)
		assert.False(t, result.RedeemedAt.IsZero())

		assert.Equal(t, int64(20), testutil.TotalPoints(t, stack.db.DB, "fan-1"))
		assert.Equal(t, 1, testutil.CountRows(t, stack.db.DB, "scan_receipts", "fan-1"))
		assert.Equal(t, []events.EventType{
			events.EventTypeCheckpointRedeemed,
			events.EventTypePointsBalanceChanged,
		}, stack.publisher.Types())
	})

	t.Run("second scan is already redeemed", func(t *testing.T) {
		_, err := stack.redemptions.RedeemCheckpoint(ctx, "fan-1", "equator", 0, 0)
		require.ErrorIs(t, err, entities.ErrAlreadyRedeemed)
		assert.Equal(t, int64(20), testutil.TotalPoints(t, stack.db.DB, "fan-1"))
		assert.Len(t, stack.publisher.Types(), 2)
	})

	t.Run("scan from 200m away is out of range", func(t *testing.T) {
		testutil.SeedUser(t, stack.db.DB, "fan-2", 0)

		_, err := stack.redemptions.RedeemCheckpoint(ctx, "fan-2", "equator", metersNorthOfEquator(200), 0)
		require.ErrorIs(t, err, entities.ErrOutOfRange)
		assert.InDelta(t, 200.0, entities.DetailsOf(err)["distance_meters"], 0.5)
		assert.Equal(t, int64(0), testutil.TotalPoints(t, stack.db.DB, "fan-2"))
		assert.Equal(t, 0, testutil.CountRows(t, stack.db.DB, "scan_receipts", "fan-2"))
	})

	t.Run("unknown user is unauthenticated", func(t *testing.T) {
		_, err := stack.redemptions.RedeemCheckpoint(ctx, "ghost", "equator", 0, 0)
		assert.ErrorIs(t, err, entities.ErrUnauthenticated)
	})

	t.Run("unknown checkpoint", func(t *testing.T) {
		_, err := stack.redemptions.RedeemCheckpoint(ctx, "fan-1", "nowhere", 0, 0)
		assert.ErrorIs(t, err, entities.ErrCheckpointNotFound)
	})
}

func TestLedger_RewardScenarios(t *testing.T) {
	t.Parallel()
	stack := setupLedger(t)
	ctx := context.Background()

	testutil.SeedReward(t, stack.db.DB, testutil.CreateTestReward("scarf", 200))

	t.Run("insufficient points leaves state unchanged", func(t *testing.T) {
		testutil.SeedUser(t, stack.db.DB, "fan-150", 150)

		_, err := stack.redemptions.RedeemReward(ctx, "fan-150", "scarf")
		require.ErrorIs(t, err, entities.ErrInsufficientPoints)
		assert.Equal(t, int64(150), testutil.TotalPoints(t, stack.db.DB, "fan-150"))
		assert.Equal(t, 0, testutil.CountRows(t, stack.db.DB, "reward_receipts", "fan-150"))
	})

	t.Run("exact balance succeeds", func(t *testing.T) {
		testutil.SeedUser(t, stack.db.DB, "fan-200", 200)

		result, err := stack.redemptions.RedeemReward(ctx, "fan-200", "scarf")
		require.NoError(t, err)
		assert.Equal(t, int64(0), result.TotalPoints)
		assert.Equal(t, int64(0), testutil.TotalPoints(t, stack.db.DB, "fan-200"))
		assert.Equal(t, 1, testutil.CountRows(t, stack.db.DB, "reward_receipts", "fan-200"))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := stack.redemptions.RedeemReward(ctx, "ghost", "scarf")
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestLedger_ConcurrentScansCreditOnce(t *testing.T) {
	t.Parallel()
	stack := setupLedger(t)
	ctx := context.Background()

	testutil.SeedUser(t, stack.db.DB, "fan-1", 0)
	testutil.SeedCheckpoint(t, stack.db.DB, testutil.CreateTestCheckpoint("gate-a", 25))

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = stack.redemptions.RedeemCheckpoint(ctx, "fan-1", "gate-a",
				testutil.StadiumLatitude, testutil.StadiumLongitude)
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, entities.KindAlreadyRedeemed, entities.KindOf(err), "loser error: %v", err)
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, testutil.CountRows(t, stack.db.DB, "scan_receipts", "fan-1"))
	assert.Equal(t, int64(25), testutil.TotalPoints(t, stack.db.DB, "fan-1"))
}

func TestLedger_ConcurrentSpendsNeverOverdraw(t *testing.T) {
	t.Parallel()
	stack := setupLedger(t)
	ctx := context.Background()

	testutil.SeedUser(t, stack.db.DB, "fan-1", 500)
	testutil.SeedReward(t, stack.db.DB, testutil.CreateTestReward("scarf", 200))

	const callers = 10
	errs := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = stack.redemptions.RedeemReward(ctx, "fan-1", "scarf")
		}(i)
	}
	close(start)
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		assert.Equal(t, entities.KindInsufficientPoints, entities.KindOf(err), "loser error: %v", err)
	}

	// 500 points cover exactly two 200-point spends
	assert.Equal(t, 2, successes)
	assert.Equal(t, int64(100), testutil.TotalPoints(t, stack.db.DB, "fan-1"))
	assert.Equal(t, 2, testutil.CountRows(t, stack.db.DB, "reward_receipts", "fan-1"))
}

func TestLedger_StatementBalances(t *testing.T) {
	t.Parallel()
	stack := setupLedger(t)
	ctx := context.Background()

	_, err := stack.profiles.Register(ctx, registration("fan-1"))
	require.NoError(t, err)

	for _, cp := range []*entities.Checkpoint{
		testutil.CreateTestCheckpoint("gate-a", 120),
		testutil.CreateTestCheckpoint("gate-b", 80),
		testutil.CreateTestCheckpoint("gate-c", 0),
	} {
		testutil.SeedCheckpoint(t, stack.db.DB, cp)
		_, err := stack.redemptions.RedeemCheckpoint(ctx, "fan-1", cp.ID,
			testutil.StadiumLatitude, testutil.StadiumLongitude)
		require.NoError(t, err)
	}

	testutil.SeedReward(t, stack.db.DB, testutil.CreateTestReward("pin", 50))
	for i := 0; i < 3; i++ {
		_, err := stack.redemptions.RedeemReward(ctx, "fan-1", "pin")
		require.NoError(t, err)
	}

	statement, err := stack.profiles.GetStatement(ctx, "fan-1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), statement.Earned)
	assert.Equal(t, int64(150), statement.Spent)
	assert.Equal(t, int64(50), statement.User.TotalPoints)
	assert.True(t, statement.Balanced())
	assert.Len(t, statement.ScanReceipts, 3)
	assert.Len(t, statement.RewardReceipts, 3)
}
