package repository

import (
	"context"
	"fmt"

	"fanhunt/database"
	"fanhunt/domain/entities"
)

// RewardReceiptRepository implements the RewardReceiptRepository interface.
// Receipts are insert-only.
type RewardReceiptRepository struct {
	q Queryable
}

// NewRewardReceiptRepository creates a new reward receipt repository
func NewRewardReceiptRepository(db *database.DB) *RewardReceiptRepository {
	return &RewardReceiptRepository{q: db.Pool}
}

func newRewardReceiptRepository(tx Queryable) *RewardReceiptRepository {
	return &RewardReceiptRepository{q: tx}
}

// Create inserts a receipt stamped with the transaction time
func (r *RewardReceiptRepository) Create(ctx context.Context, receipt *entities.RewardReceipt) error {
	query := `
		INSERT INTO reward_receipts (id, user_id, reward_id, points_spent)
		VALUES ($1, $2, $3, $4)
		RETURNING redeemed_at
	`

	err := r.q.QueryRow(ctx, query,
		receipt.ID,
		receipt.UserID,
		receipt.RewardID,
		receipt.PointsSpent,
	).Scan(&receipt.RedeemedAt)
	if err != nil {
		return classifyError(fmt.Errorf("failed to create reward receipt %s: %w", receipt.ID, err))
	}

	return nil
}

// ListByUser returns all of a user's reward receipts, oldest first
func (r *RewardReceiptRepository) ListByUser(ctx context.Context, userID string) ([]*entities.RewardReceipt, error) {
	query := `
		SELECT id, user_id, reward_id, points_spent, redeemed_at
		FROM reward_receipts
		WHERE user_id = $1
		ORDER BY redeemed_at ASC, id ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query reward receipts for user %s: %w", userID, err))
	}
	defer rows.Close()

	var receipts []*entities.RewardReceipt
	for rows.Next() {
		var receipt entities.RewardReceipt
		if err := rows.Scan(
			&receipt.ID,
			&receipt.UserID,
			&receipt.RewardID,
			&receipt.PointsSpent,
			&receipt.RedeemedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, &receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("failed to iterate reward receipts: %w", err))
	}

	return receipts, nil
}
