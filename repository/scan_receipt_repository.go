package repository

import (
	"context"
	"errors"
	"fmt"

	"fanhunt/database"
	"fanhunt/domain/entities"

	"github.com/jackc/pgx/v5"
)

// ScanReceiptRepository implements the ScanReceiptRepository interface.
// Receipts are insert-only.
type ScanReceiptRepository struct {
	q Queryable
}

// NewScanReceiptRepository creates a new scan receipt repository
func NewScanReceiptRepository(db *database.DB) *ScanReceiptRepository {
	return &ScanReceiptRepository{q: db.Pool}
}

func newScanReceiptRepository(tx Queryable) *ScanReceiptRepository {
	return &ScanReceiptRepository{q: tx}
}

// Get retrieves the receipt for a user and checkpoint
func (r *ScanReceiptRepository) Get(ctx context.Context, userID, checkpointID string) (*entities.ScanReceipt, error) {
	query := `
		SELECT user_id, checkpoint_id, points_awarded, redeemed_at
		FROM scan_receipts
		WHERE user_id = $1 AND checkpoint_id = $2
	`

	var receipt entities.ScanReceipt
	err := r.q.QueryRow(ctx, query, userID, checkpointID).Scan(
		&receipt.UserID,
		&receipt.CheckpointID,
		&receipt.PointsAwarded,
		&receipt.RedeemedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to get scan receipt for user %s at %s: %w", userID, checkpointID, err))
	}

	return &receipt, nil
}

// Create inserts a receipt stamped with the transaction time
func (r *ScanReceiptRepository) Create(ctx context.Context, receipt *entities.ScanReceipt) error {
	query := `
		INSERT INTO scan_receipts (user_id, checkpoint_id, points_awarded)
		VALUES ($1, $2, $3)
		RETURNING redeemed_at
	`

	err := r.q.QueryRow(ctx, query,
		receipt.UserID,
		receipt.CheckpointID,
		receipt.PointsAwarded,
	).Scan(&receipt.RedeemedAt)
	if err != nil {
		return classifyError(fmt.Errorf("failed to create scan receipt for user %s at %s: %w", receipt.UserID, receipt.CheckpointID, err))
	}

	return nil
}

// ListByUser returns all of a user's scan receipts, oldest first
func (r *ScanReceiptRepository) ListByUser(ctx context.Context, userID string) ([]*entities.ScanReceipt, error) {
	query := `
		SELECT user_id, checkpoint_id, points_awarded, redeemed_at
		FROM scan_receipts
		WHERE user_id = $1
		ORDER BY redeemed_at ASC, checkpoint_id ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query scan receipts for user %s: %w", userID, err))
	}
	defer rows.Close()

	var receipts []*entities.ScanReceipt
	for rows.Next() {
		var receipt entities.ScanReceipt
		if err := rows.Scan(
			&receipt.UserID,
			&receipt.CheckpointID,
			&receipt.PointsAwarded,
			&receipt.RedeemedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan receipt: %w", err)
		}
		receipts = append(receipts, &receipt)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("failed to iterate scan receipts: %w", err))
	}

	return receipts, nil
}
