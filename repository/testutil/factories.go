package testutil

import (
	"context"
	"testing"

	"fanhunt/database"
	"fanhunt/domain/entities"

	"github.com/stretchr/testify/require"
)

// Wembley Stadium, used as the default checkpoint location
const (
	StadiumLatitude  = 51.5560
	StadiumLongitude = -0.2796
)

// CreateTestUser creates an unsaved user with default values
func CreateTestUser(userID, displayName string) *entities.User {
	return &entities.User{
		ID:            userID,
		DisplayName:   displayName,
		FavouriteTeam: "Wanderers",
	}
}

// CreateTestCheckpoint creates an unsaved active checkpoint at the stadium
func CreateTestCheckpoint(checkpointID string, points int64) *entities.Checkpoint {
	return &entities.Checkpoint{
		ID:            checkpointID,
		Location:      entities.NewCoordinate(StadiumLatitude, StadiumLongitude),
		RadiusMeters:  entities.DefaultCheckpointRadiusMeters,
		PointsAwarded: points,
		Active:        true,
	}
}

// CreateTestReward creates an unsaved active reward
func CreateTestReward(rewardID string, pointsRequired int64) *entities.Reward {
	return &entities.Reward{
		ID:             rewardID,
		Name:           "Reward " + rewardID,
		PointsRequired: pointsRequired,
		Active:         true,
	}
}

// SeedUser inserts a user and sets its balance directly
func SeedUser(t *testing.T, db *database.DB, userID string, points int64) {
	t.Helper()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		`INSERT INTO users (id, display_name, total_points) VALUES ($1, $2, $3)`,
		userID, "Fan "+userID, points)
	require.NoError(t, err)
}

// SeedCheckpoint inserts a checkpoint definition
func SeedCheckpoint(t *testing.T, db *database.DB, checkpoint *entities.Checkpoint) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO checkpoints (id, latitude, longitude, radius_meters, points_awarded, active)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		checkpoint.ID,
		checkpoint.Location.Latitude,
		checkpoint.Location.Longitude,
		checkpoint.RadiusMeters,
		checkpoint.PointsAwarded,
		checkpoint.Active,
	)
	require.NoError(t, err)
}

// SeedReward inserts a reward definition
func SeedReward(t *testing.T, db *database.DB, reward *entities.Reward) {
	t.Helper()

	_, err := db.Exec(context.Background(),
		`INSERT INTO rewards (id, name, points_required, active) VALUES ($1, $2, $3, $4)`,
		reward.ID, reward.Name, reward.PointsRequired, reward.Active)
	require.NoError(t, err)
}

// TotalPoints reads a user's balance outside any unit of work
func TotalPoints(t *testing.T, db *database.DB, userID string) int64 {
	t.Helper()

	var total int64
	err := db.QueryRow(context.Background(),
		`SELECT total_points FROM users WHERE id = $1`, userID).Scan(&total)
	require.NoError(t, err)
	return total
}

// CountRows returns the number of rows in table matching user_id
func CountRows(t *testing.T, db *database.DB, table, userID string) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM `+table+` WHERE user_id = $1`, userID).Scan(&count)
	require.NoError(t, err)
	return count
}
