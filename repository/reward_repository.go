package repository

import (
	"context"
	"errors"
	"fmt"

	"fanhunt/database"
	"fanhunt/domain/entities"

	"github.com/jackc/pgx/v5"
)

const rewardColumns = `id, name, points_required, active, created_at, updated_at`

// RewardRepository implements the RewardRepository interface
type RewardRepository struct {
	q Queryable
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *database.DB) *RewardRepository {
	return &RewardRepository{q: db.Pool}
}

func newRewardRepository(tx Queryable) *RewardRepository {
	return &RewardRepository{q: tx}
}

func scanReward(row pgx.Row) (*entities.Reward, error) {
	var reward entities.Reward
	err := row.Scan(
		&reward.ID,
		&reward.Name,
		&reward.PointsRequired,
		&reward.Active,
		&reward.CreatedAt,
		&reward.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reward, nil
}

// GetByID retrieves a reward by its ID
func (r *RewardRepository) GetByID(ctx context.Context, rewardID string) (*entities.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards WHERE id = $1`

	reward, err := scanReward(r.q.QueryRow(ctx, query, rewardID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to get reward %s: %w", rewardID, err))
	}
	return reward, nil
}

// ListActive returns all active rewards, cheapest first
func (r *RewardRepository) ListActive(ctx context.Context) ([]*entities.Reward, error) {
	query := `
		SELECT ` + rewardColumns + `
		FROM rewards
		WHERE active
		ORDER BY points_required ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query active rewards: %w", err))
	}
	defer rows.Close()

	var rewards []*entities.Reward
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("failed to iterate rewards: %w", err))
	}

	return rewards, nil
}

// Upsert creates or replaces a reward definition
func (r *RewardRepository) Upsert(ctx context.Context, reward *entities.Reward) error {
	query := `
		INSERT INTO rewards (id, name, points_required, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			points_required = EXCLUDED.points_required,
			active = EXCLUDED.active
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		reward.ID,
		reward.Name,
		reward.PointsRequired,
		reward.Active,
	).Scan(&reward.CreatedAt, &reward.UpdatedAt)
	if err != nil {
		return classifyError(fmt.Errorf("failed to upsert reward %s: %w", reward.ID, err))
	}

	return nil
}
