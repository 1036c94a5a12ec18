package usecase

import (
	"context"
	"fmt"

	"GoldPredict/internal/domain/models"
	drepo "GoldPredict/internal/domain/repository"
	"GoldPredict/pkg/logger"
	"GoldPredict/pkg/util"
)

// ProfileService reads and edits a user's display profile.
type ProfileService struct {
	stats drepo.UserStatsStore
	inv   Invalidator
	log   *logger.Logger
}

// NewProfileService builds the service. inv may be nil; when set, leaderboard
// caches are dropped after a rename so boards show the new name.
func NewProfileService(stats drepo.UserStatsStore, inv Invalidator, log *logger.Logger) *ProfileService {
	return &ProfileService{
		stats: stats,
		inv:   inv,
		log:   log.With(logger.String("component", "profile")),
	}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (*models.UserProfile, error) {
	st, err := s.stats.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.NewUserProfile(*st), nil
}

// Update sets the username. The stats row is created on demand so a user can
// pick a name before their first prediction. A blank name leaves the profile as is.
func (s *ProfileService) Update(ctx context.Context, userID, wallet, username string) (*models.UserProfile, error) {
	name, err := models.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}
	st, err := s.stats.Ensure(ctx, userID, util.NormalizeWallet(wallet))
	if err != nil {
		return nil, fmt.Errorf("ensure user stats: %w", err)
	}
	if name == "" {
		return models.NewUserProfile(*st), nil
	}

	st, err = s.stats.SetUsername(ctx, userID, name)
	if err != nil {
		return nil, fmt.Errorf("set username: %w", err)
	}
	if s.inv != nil {
		if err := s.inv.Invalidate(ctx); err != nil {
			s.log.Warn("leaderboard invalidation failed", logger.Error(err))
		}
	}
	s.log.Info("profile updated", logger.String("user_id", userID))
	return models.NewUserProfile(*st), nil
}
