// Package catalog loads checkpoint and reward definitions from YAML files.
package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"fanhunt/domain/entities"

	"gopkg.in/yaml.v3"
)

// Catalog is a validated set of checkpoints and rewards ready for import
type Catalog struct {
	Checkpoints []*entities.Checkpoint
	Rewards     []*entities.Reward
}

// catalogFile mirrors the YAML layout of a catalog file.
type catalogFile struct {
	Checkpoints []checkpointEntry `yaml:"checkpoints"`
	Rewards     []rewardEntry     `yaml:"rewards"`
}

type checkpointEntry struct {
	ID            string   `yaml:"id"`
	Latitude      *float64 `yaml:"latitude"`
	Longitude     *float64 `yaml:"longitude"`
	RadiusMeters  *float64 `yaml:"radius_meters"`
	PointsAwarded int64    `yaml:"points_awarded"`
	Active        *bool    `yaml:"active"`
}

type rewardEntry struct {
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	PointsRequired int64  `yaml:"points_required"`
	Active         *bool  `yaml:"active"`
}

// Load reads and validates the catalog at path
func Load(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse decodes and validates a catalog document
func Parse(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var doc catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	cat := &Catalog{
		Checkpoints: make([]*entities.Checkpoint, 0, len(doc.Checkpoints)),
		Rewards:     make([]*entities.Reward, 0, len(doc.Rewards)),
	}

	seen := make(map[string]struct{})
	for i, entry := range doc.Checkpoints {
		checkpoint, err := entry.toEntity()
		if err != nil {
			return nil, fmt.Errorf("checkpoint %d (%q): %w", i, entry.ID, err)
		}
		if _, exists := seen[checkpoint.ID]; exists {
			return nil, fmt.Errorf("duplicate checkpoint %s", checkpoint.ID)
		}
		seen[checkpoint.ID] = struct{}{}
		cat.Checkpoints = append(cat.Checkpoints, checkpoint)
	}

	seen = make(map[string]struct{})
	for i, entry := range doc.Rewards {
		reward, err := entry.toEntity()
		if err != nil {
			return nil, fmt.Errorf("reward %d (%q): %w", i, entry.ID, err)
		}
		if _, exists := seen[reward.ID]; exists {
			return nil, fmt.Errorf("duplicate reward %s", reward.ID)
		}
		seen[reward.ID] = struct{}{}
		cat.Rewards = append(cat.Rewards, reward)
	}

	return cat, nil
}

func (e checkpointEntry) toEntity() (*entities.Checkpoint, error) {
	if e.Latitude == nil || e.Longitude == nil {
		return nil, errors.New("latitude and longitude are required")
	}

	radius := float64(entities.DefaultCheckpointRadiusMeters)
	if e.RadiusMeters != nil {
		radius = *e.RadiusMeters
	}

	checkpoint := &entities.Checkpoint{
		ID:            strings.TrimSpace(e.ID),
		Location:      entities.NewCoordinate(*e.Latitude, *e.Longitude),
		RadiusMeters:  radius,
		PointsAwarded: e.PointsAwarded,
		Active:        e.Active == nil || *e.Active,
	}
	if err := checkpoint.Validate(); err != nil {
		return nil, err
	}
	return checkpoint, nil
}

func (e rewardEntry) toEntity() (*entities.Reward, error) {
	reward := &entities.Reward{
		ID:             strings.TrimSpace(e.ID),
		Name:           strings.TrimSpace(e.Name),
		PointsRequired: e.PointsRequired,
		Active:         e.Active == nil || *e.Active,
	}
	if err := reward.Validate(); err != nil {
		return nil, err
	}
	return reward, nil
}
