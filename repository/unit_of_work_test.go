package repository

import (
	"context"
	"testing"

	"fanhunt/domain/entities"
	"fanhunt/domain/interfaces"
	"fanhunt/events"
	"fanhunt/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registration(userID string) interfaces.Registration {
	return interfaces.Registration{
		UserID:        userID,
		DisplayName:   "Fan " + userID,
		FavouriteTeam: "Wanderers",
	}
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	publisher := &recordingPublisher{}
	factory := NewUnitOfWorkFactory(testDB.DB, publisher)
	ctx := context.Background()

	testutil.SeedUser(t, testDB.DB, "fan-1", 10)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	_, err := uow.UserRepository().AddPoints(ctx, "fan-1", 90)
	require.NoError(t, err)
	require.NoError(t, uow.EventBus().Publish(events.PointsBalanceChangedEvent{UserID: "fan-1"}))

	require.NoError(t, uow.Rollback())

	assert.Equal(t, int64(10), testutil.TotalPoints(t, testDB.DB, "fan-1"))
	assert.Empty(t, publisher.Types())
}

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	publisher := &recordingPublisher{}
	factory := NewUnitOfWorkFactory(testDB.DB, publisher)
	ctx := context.Background()

	testutil.SeedUser(t, testDB.DB, "fan-1", 10)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	_, err := uow.UserRepository().AddPoints(ctx, "fan-1", 5)
	require.NoError(t, err)
	require.NoError(t, uow.EventBus().Publish(events.PointsBalanceChangedEvent{UserID: "fan-1"}))
	assert.Empty(t, publisher.Types(), "events must wait for the commit")

	require.NoError(t, uow.Commit())
	require.NoError(t, uow.Rollback(), "rollback after commit is a no-op")

	assert.Equal(t, int64(15), testutil.TotalPoints(t, testDB.DB, "fan-1"))
	assert.Equal(t, []events.EventType{events.EventTypePointsBalanceChanged}, publisher.Types())
}

func TestUnitOfWork_ReadOnlyRejectsWrites(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB, nil)
	ctx := context.Background()

	testutil.SeedUser(t, testDB.DB, "fan-1", 10)

	uow := factory.CreateReadOnly()
	require.NoError(t, uow.Begin(ctx))
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, "fan-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10), user.TotalPoints)

	_, err = uow.UserRepository().AddPoints(ctx, "fan-1", 1)
	assert.Error(t, err)
}

func TestUnitOfWork_SerializationConflictIsClassified(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB, nil)
	ctx := context.Background()

	testutil.SeedUser(t, testDB.DB, "fan-1", 100)

	first := factory.Create()
	second := factory.Create()
	require.NoError(t, first.Begin(ctx))
	require.NoError(t, second.Begin(ctx))
	defer first.Rollback()
	defer second.Rollback()

	// Both read the balance before either writes
	_, err := first.UserRepository().GetByID(ctx, "fan-1")
	require.NoError(t, err)
	_, err = second.UserRepository().GetByID(ctx, "fan-1")
	require.NoError(t, err)

	_, err = first.UserRepository().AddPoints(ctx, "fan-1", 10)
	require.NoError(t, err)
	require.NoError(t, first.Commit())

	_, err = second.UserRepository().AddPoints(ctx, "fan-1", 10)
	if err == nil {
		err = second.Commit()
	}
	require.Error(t, err)
	assert.Equal(t, entities.KindTransactionConflict, entities.KindOf(err))
}

func TestUnitOfWork_GettersPanicBeforeBegin(t *testing.T) {
	t.Parallel()

	uow := NewUnitOfWorkFactory(nil, nil).Create()
	assert.Panics(t, func() { uow.UserRepository() })
	assert.NotNil(t, uow.EventBus())
	assert.NoError(t, uow.Rollback())
}
