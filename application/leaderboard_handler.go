package application

import (
	"context"

	"fanhunt/domain/entities"
	"fanhunt/domain/services"
	"fanhunt/events"

	log "github.com/sirupsen/logrus"
)

// LeaderboardHandler serves the leaderboard, consulting the cache first
type LeaderboardHandler struct {
	runner       *TransactionRunner
	cache        LeaderboardCache
	defaultLimit int
	maxLimit     int
}

// NewLeaderboardHandler creates a new leaderboard handler. cache may be nil.
func NewLeaderboardHandler(runner *TransactionRunner, cache LeaderboardCache, defaultLimit, maxLimit int) *LeaderboardHandler {
	if defaultLimit <= 0 {
		defaultLimit = services.DefaultLeaderboardLimit
	}
	if maxLimit <= 0 {
		maxLimit = services.MaxLeaderboardLimit
	}
	return &LeaderboardHandler{
		runner:       runner,
		cache:        cache,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// TopUsers returns the ranked leaderboard. Cache failures fall through to the database.
func (h *LeaderboardHandler) TopUsers(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	limit = services.NormalizeLimit(limit, h.defaultLimit, h.maxLimit)

	if h.cache != nil {
		entries, ok, err := h.cache.Get(ctx, limit)
		if err != nil {
			log.WithFields(log.Fields{
				"limit": limit,
				"error": err,
			}).Warn("Leaderboard cache read failed")
		} else if ok {
			return entries, nil
		}
	}

	var entries []*entities.LeaderboardEntry
	err := h.runner.RunReadOnly(ctx, "top_users", func(ctx context.Context, uow UnitOfWork) error {
		service := services.NewLeaderboardService(uow.UserRepository(), h.defaultLimit, h.maxLimit)
		e, err := service.TopUsers(ctx, limit)
		if err != nil {
			return err
		}
		entries = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, limit, entries); err != nil {
			log.WithFields(log.Fields{
				"limit": limit,
				"error": err,
			}).Warn("Leaderboard cache write failed")
		}
	}

	return entries, nil
}

// HandleEvent drops cached snapshots whenever a ranking could have changed
func (h *LeaderboardHandler) HandleEvent(ctx context.Context, event events.Event) {
	if h.cache == nil {
		return
	}
	switch event.Type() {
	case events.EventTypePointsBalanceChanged, events.EventTypeUserRegistered:
	default:
		return
	}

	if err := h.cache.Invalidate(ctx); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Warn("Failed to invalidate leaderboard cache")
	}
}
