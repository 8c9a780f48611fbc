package entities

import (
	"errors"
	"strings"
	"time"
)

// User represents a registered fan and their points balance
type User struct {
	ID            string    `db:"id" json:"id"`
	DisplayName   string    `db:"display_name" json:"display_name"`
	Email         string    `db:"email" json:"email"`
	FavouriteTeam string    `db:"favourite_team" json:"favourite_team"`
	TotalPoints   int64     `db:"total_points" json:"total_points"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Validate ensures the user is valid for creation
func (u *User) Validate() error {
	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user ID cannot be empty")
	}
	if u.TotalPoints < 0 {
		return errors.New("total points cannot be negative")
	}
	return nil
}

// CanAfford returns true if the user can spend the given number of points
func (u *User) CanAfford(points int64) bool {
	return points >= 0 && u.TotalPoints >= points
}
