package services

import (
	"context"
	"fmt"

	"fanhunt/domain/entities"
	"fanhunt/domain/interfaces"
)

const (
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 500
)

// leaderboardService ranks users by total points
type leaderboardService struct {
	userRepo     interfaces.UserRepository
	defaultLimit int
	maxLimit     int
}

// NewLeaderboardService creates a new leaderboard service. Non-positive
// limits fall back to the package defaults.
func NewLeaderboardService(userRepo interfaces.UserRepository, defaultLimit, maxLimit int) interfaces.LeaderboardService {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLeaderboardLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLeaderboardLimit
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &leaderboardService{
		userRepo:     userRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// NormalizeLimit maps a requested limit onto [1, maxLimit], using
// defaultLimit when none was requested
func NormalizeLimit(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

// TopUsers returns the top users by points. Ties are broken by user ID so the
// order is deterministic, and ranks are sequential.
func (s *leaderboardService) TopUsers(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	limit = NormalizeLimit(limit, s.defaultLimit, s.maxLimit)

	users, err := s.userRepo.GetTopByPoints(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	entries := make([]*entities.LeaderboardEntry, 0, len(users))
	for i, user := range users {
		entries = append(entries, &entities.LeaderboardEntry{
			Rank:        i + 1,
			UserID:      user.ID,
			DisplayName: user.DisplayName,
			TotalPoints: user.TotalPoints,
		})
	}

	return entries, nil
}
