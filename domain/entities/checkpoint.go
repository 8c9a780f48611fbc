package entities

import (
	"errors"
	"strings"
	"time"
)

// DefaultCheckpointRadiusMeters applies when a catalog entry omits radius_meters
const DefaultCheckpointRadiusMeters = 50

// Checkpoint is a scannable physical location guarded by a geofence
type Checkpoint struct {
	ID            string     `db:"id" json:"id"`
	Location      Coordinate `json:"location"`
	RadiusMeters  float64    `db:"radius_meters" json:"radius_meters"`
	PointsAwarded int64      `db:"points_awarded" json:"points_awarded"`
	Active        bool       `db:"active" json:"active"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Validate ensures the checkpoint definition is usable
func (c *Checkpoint) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("checkpoint ID cannot be empty")
	}
	if err := c.Location.Validate(); err != nil {
		return err
	}
	if c.RadiusMeters < 0 {
		return errors.New("radius cannot be negative")
	}
	if c.PointsAwarded < 0 {
		return errors.New("points awarded cannot be negative")
	}
	return nil
}
