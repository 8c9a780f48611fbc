package entities

import (
	"errors"
	"strings"
	"time"
)

// Reward is a catalog item that can be bought with points
type Reward struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	PointsRequired int64     `db:"points_required" json:"points_required"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Validate ensures the reward definition is usable
func (r *Reward) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("reward ID cannot be empty")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("reward name cannot be empty")
	}
	if r.PointsRequired <= 0 {
		return errors.New("points required must be positive")
	}
	return nil
}
