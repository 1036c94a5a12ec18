package memory

import (
	"context"
	"sort"

	"GoldPredict/internal/domain/models"
)

type StatsStore struct {
	st     *state
	locked bool
}

func (s *StatsStore) Ensure(_ context.Context, userID, wallet string) (*models.UserStats, error) {
	defer s.st.guard(s.locked)()
	st, ok := s.st.stats[userID]
	if !ok {
		now := s.st.now()
		st = &models.UserStats{UserID: userID, WalletAddress: wallet, CreatedAt: now, UpdatedAt: now}
		s.st.stats[userID] = st
	}
	return cloneStats(st), nil
}

func (s *StatsStore) Get(_ context.Context, userID string) (*models.UserStats, error) {
	defer s.st.guard(s.locked)()
	st, ok := s.st.stats[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return cloneStats(st), nil
}

func (s *StatsStore) ApplyOutcome(_ context.Context, userID string, o models.Outcome) error {
	defer s.st.guard(s.locked)()
	st, ok := s.st.stats[userID]
	if !ok {
		return models.ErrUserNotFound
	}
	st.Apply(o)
	st.UpdatedAt = s.st.now()
	return nil
}

func (s *StatsStore) SetUsername(_ context.Context, userID, username string) (*models.UserStats, error) {
	defer s.st.guard(s.locked)()
	st, ok := s.st.stats[userID]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	st.Username = &username
	st.UpdatedAt = s.st.now()
	return cloneStats(st), nil
}

func (s *StatsStore) Top(_ context.Context, kind models.LeaderboardKind, minPredictions int64, limit int) ([]models.UserStats, error) {
	defer s.st.guard(s.locked)()
	out := make([]models.UserStats, 0, len(s.st.stats))
	for _, st := range s.st.stats {
		if kind == models.LeaderboardAccuracy && st.TotalPredictions < minPredictions {
			continue
		}
		out = append(out, *cloneStats(st))
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch kind {
		case models.LeaderboardAccuracy:
			if a.Accuracy() != b.Accuracy() {
				return a.Accuracy() > b.Accuracy()
			}
			if a.TotalPredictions != b.TotalPredictions {
				return a.TotalPredictions > b.TotalPredictions
			}
		case models.LeaderboardStreak:
			if a.ConsecutiveWins != b.ConsecutiveWins {
				return a.ConsecutiveWins > b.ConsecutiveWins
			}
			if a.Points != b.Points {
				return a.Points > b.Points
			}
		default:
			if a.Points != b.Points {
				return a.Points > b.Points
			}
		}
		return a.UserID < b.UserID
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *StatsStore) CountAbove(_ context.Context, points int64) (int64, error) {
	defer s.st.guard(s.locked)()
	var n int64
	for _, st := range s.st.stats {
		if st.Points > points {
			n++
		}
	}
	return n, nil
}
