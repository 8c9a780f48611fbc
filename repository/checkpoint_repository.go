package repository

import (
	"context"
	"errors"
	"fmt"

	"fanhunt/database"
	"fanhunt/domain/entities"

	"github.com/jackc/pgx/v5"
)

// CheckpointRepository implements the CheckpointRepository interface
type CheckpointRepository struct {
	q Queryable
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *database.DB) *CheckpointRepository {
	return &CheckpointRepository{q: db.Pool}
}

func newCheckpointRepository(tx Queryable) *CheckpointRepository {
	return &CheckpointRepository{q: tx}
}

// GetByID retrieves a checkpoint by its ID
func (r *CheckpointRepository) GetByID(ctx context.Context, checkpointID string) (*entities.Checkpoint, error) {
	query := `
		SELECT id, latitude, longitude, radius_meters, points_awarded, active, created_at, updated_at
		FROM checkpoints
		WHERE id = $1
	`

	var checkpoint entities.Checkpoint
	err := r.q.QueryRow(ctx, query, checkpointID).Scan(
		&checkpoint.ID,
		&checkpoint.Location.Latitude,
		&checkpoint.Location.Longitude,
		&checkpoint.RadiusMeters,
		&checkpoint.PointsAwarded,
		&checkpoint.Active,
		&checkpoint.CreatedAt,
		&checkpoint.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to get checkpoint %s: %w", checkpointID, err))
	}

	return &checkpoint, nil
}

// Upsert creates or replaces a checkpoint definition
func (r *CheckpointRepository) Upsert(ctx context.Context, checkpoint *entities.Checkpoint) error {
	query := `
		INSERT INTO checkpoints (id, latitude, longitude, radius_meters, points_awarded, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			radius_meters = EXCLUDED.radius_meters,
			points_awarded = EXCLUDED.points_awarded,
			active = EXCLUDED.active
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		checkpoint.ID,
		checkpoint.Location.Latitude,
		checkpoint.Location.Longitude,
		checkpoint.RadiusMeters,
		checkpoint.PointsAwarded,
		checkpoint.Active,
	).Scan(&checkpoint.CreatedAt, &checkpoint.UpdatedAt)
	if err != nil {
		return classifyError(fmt.Errorf("failed to upsert checkpoint %s: %w", checkpoint.ID, err))
	}

	return nil
}
