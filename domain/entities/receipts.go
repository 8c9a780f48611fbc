package entities

import (
	"time"

	"github.com/google/uuid"
)

// ScanReceipt proves a checkpoint was redeemed by a user. The
// (UserID, CheckpointID) pair is unique and the row is never modified.
type ScanReceipt struct {
	UserID        string    `db:"user_id" json:"user_id"`
	CheckpointID  string    `db:"checkpoint_id" json:"checkpoint_id"`
	PointsAwarded int64     `db:"points_awarded" json:"points_awarded"`
	RedeemedAt    time.Time `db:"redeemed_at" json:"redeemed_at"`
}

// RewardReceipt records a single reward purchase. Receipts are append-only.
type RewardReceipt struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	RewardID    string    `db:"reward_id" json:"reward_id"`
	PointsSpent int64     `db:"points_spent" json:"points_spent"`
	RedeemedAt  time.Time `db:"redeemed_at" json:"redeemed_at"`
}

// NewRewardReceipt creates an unsaved receipt with a fresh identifier
func NewRewardReceipt(userID, rewardID string, pointsSpent int64) *RewardReceipt {
	return &RewardReceipt{
		ID:          uuid.New(),
		UserID:      userID,
		RewardID:    rewardID,
		PointsSpent: pointsSpent,
	}
}

// ScanResult is returned by a successful checkpoint redemption
type ScanResult struct {
	CheckpointID  string    `json:"checkpoint_id"`
	PointsAwarded int64     `json:"points_awarded"`
	TotalPoints   int64     `json:"total_points"`
	RedeemedAt    time.Time `json:"redeemed_at"`
}

// Statement is a user's balance reconciled against their receipts
type Statement struct {
	User           *User            `json:"user"`
	ScanReceipts   []*ScanReceipt   `json:"scan_receipts"`
	RewardReceipts []*RewardReceipt `json:"reward_receipts"`
	Earned         int64            `json:"earned"`
	Spent          int64            `json:"spent"`
}

// NewStatement builds a statement and totals the receipts
func NewStatement(user *User, scans []*ScanReceipt, rewards []*RewardReceipt) *Statement {
	s := &Statement{
		User:           user,
		ScanReceipts:   scans,
		RewardReceipts: rewards,
	}
	for _, r := range scans {
		s.Earned += r.PointsAwarded
	}
	for _, r := range rewards {
		s.Spent += r.PointsSpent
	}
	return s
}

// Balanced reports whether the stored balance equals earned minus spent
func (s *Statement) Balanced() bool {
	if s.User == nil {
		return false
	}
	return s.User.TotalPoints == s.Earned-s.Spent
}

// RewardResult is returned by a successful reward redemption
type RewardResult struct {
	Receipt     *RewardReceipt `json:"receipt"`
	TotalPoints int64          `json:"total_points"`
}
