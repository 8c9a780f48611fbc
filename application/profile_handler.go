package application

import (
	"context"

	"fanhunt/domain/entities"
	"fanhunt/domain/interfaces"
	"fanhunt/domain/services"
)

// ProfileHandler exposes account operations outside the ledger core
type ProfileHandler struct {
	runner *TransactionRunner
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(runner *TransactionRunner) *ProfileHandler {
	return &ProfileHandler{runner: runner}
}

func newUserService(uow UnitOfWork) interfaces.UserService {
	return services.NewUserService(
		uow.UserRepository(),
		uow.ScanReceiptRepository(),
		uow.RewardReceiptRepository(),
		uow.EventBus(),
	)
}

// Register returns the existing account or creates one with zero points
func (h *ProfileHandler) Register(ctx context.Context, reg interfaces.Registration) (*entities.User, error) {
	var user *entities.User
	err := h.runner.Run(ctx, "register_user", func(ctx context.Context, uow UnitOfWork) error {
		u, err := newUserService(uow).Register(ctx, reg)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile returns the user's account
func (h *ProfileHandler) GetProfile(ctx context.Context, userID string) (*entities.User, error) {
	var user *entities.User
	err := h.runner.RunReadOnly(ctx, "get_profile", func(ctx context.Context, uow UnitOfWork) error {
		u, err := newUserService(uow).GetProfile(ctx, userID)
		if err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateFavouriteTeam changes the user's favourite team
func (h *ProfileHandler) UpdateFavouriteTeam(ctx context.Context, userID, team string) error {
	return h.runner.Run(ctx, "update_favourite_team", func(ctx context.Context, uow UnitOfWork) error {
		return newUserService(uow).UpdateFavouriteTeam(ctx, userID, team)
	})
}

// GetStatement returns the balance alongside every receipt, read from one snapshot
func (h *ProfileHandler) GetStatement(ctx context.Context, userID string) (*entities.Statement, error) {
	var statement *entities.Statement
	err := h.runner.RunReadOnly(ctx, "get_statement", func(ctx context.Context, uow UnitOfWork) error {
		s, err := newUserService(uow).GetStatement(ctx, userID)
		if err != nil {
			return err
		}
		statement = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return statement, nil
}
