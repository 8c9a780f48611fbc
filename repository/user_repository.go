package repository

import (
	"context"
	"errors"
	"fmt"

	"fanhunt/database"
	"fanhunt/domain/entities"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, display_name, email, favourite_team, total_points, created_at, updated_at`

// UserRepository implements the UserRepository interface
type UserRepository struct {
	q Queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepository creates a user repository bound to a transaction
func newUserRepository(tx Queryable) *UserRepository {
	return &UserRepository{q: tx}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.FavouriteTeam,
		&user.TotalPoints,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their identity
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.q.QueryRow(ctx, query, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to get user %s: %w", userID, err))
	}
	return user, nil
}

// CreateIfNotExists inserts the account with zero points or returns the
// existing row untouched
func (r *UserRepository) CreateIfNotExists(ctx context.Context, user *entities.User) (*entities.User, bool, error) {
	query := `
		INSERT INTO users (id, display_name, email, favourite_team, total_points)
		VALUES ($1, $2, $3, $4, 0)
		ON CONFLICT (id) DO NOTHING
		RETURNING ` + userColumns

	created, err := scanUser(r.q.QueryRow(ctx, query,
		user.ID,
		user.DisplayName,
		user.Email,
		user.FavouriteTeam,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, classifyError(fmt.Errorf("failed to create user %s: %w", user.ID, err))
	}

	// The row already existed
	existing, err := r.GetByID(ctx, user.ID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("user %s vanished after insert conflict", user.ID)
	}
	return existing, false, nil
}

// AddPoints credits points and returns the new total
func (r *UserRepository) AddPoints(ctx context.Context, userID string, points int64) (int64, error) {
	query := `
		UPDATE users
		SET total_points = total_points + $2
		WHERE id = $1
		RETURNING total_points
	`

	var total int64
	err := r.q.QueryRow(ctx, query, userID, points).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, entities.NewLedgerError(entities.KindUserNotFound, map[string]any{
			"user_id": userID,
		})
	}
	if err != nil {
		return 0, classifyError(fmt.Errorf("failed to add points for user %s: %w", userID, err))
	}
	return total, nil
}

// DeductPoints debits points only when the balance covers them
func (r *UserRepository) DeductPoints(ctx context.Context, userID string, points int64) (int64, bool, error) {
	query := `
		UPDATE users
		SET total_points = total_points - $2
		WHERE id = $1 AND total_points >= $2
		RETURNING total_points
	`

	var total int64
	err := r.q.QueryRow(ctx, query, userID, points).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, classifyError(fmt.Errorf("failed to deduct points for user %s: %w", userID, err))
	}
	return total, true, nil
}

// UpdateFavouriteTeam changes the user's favourite team
func (r *UserRepository) UpdateFavouriteTeam(ctx context.Context, userID string, team string) (bool, error) {
	query := `UPDATE users SET favourite_team = $2 WHERE id = $1`

	tag, err := r.q.Exec(ctx, query, userID, team)
	if err != nil {
		return false, classifyError(fmt.Errorf("failed to update favourite team for user %s: %w", userID, err))
	}
	return tag.RowsAffected() > 0, nil
}

// GetTopByPoints returns users ordered by total points descending, then ID ascending
func (r *UserRepository) GetTopByPoints(ctx context.Context, limit int) ([]*entities.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY total_points DESC, id ASC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query top users: %w", err))
	}
	defer rows.Close()

	users := make([]*entities.User, 0, limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("failed to iterate users: %w", err))
	}

	return users, nil
}
