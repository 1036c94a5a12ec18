package usecase

import (
	"context"
	"fmt"
	"time"

	"GoldPredict/internal/domain/models"
	drepo "GoldPredict/internal/domain/repository"
	"GoldPredict/pkg/cache"
	"GoldPredict/pkg/logger"
	"GoldPredict/pkg/util"
)

const leaderboardKeyPrefix = "leaderboard"

type LeaderboardConfig struct {
	DefaultLimit           int
	MaxLimit               int
	AccuracyMinPredictions int64
	CacheTTL               time.Duration
}

// Leaderboard serves ranked statistics. Rank is always computed at read time.
type Leaderboard struct {
	stats drepo.UserStatsStore
	ranks drepo.RankQuery
	cache drepo.Cache
	cfg   LeaderboardConfig
	log   *logger.Logger
}

// NewLeaderboard builds the query layer. c may be nil.
func NewLeaderboard(stats drepo.UserStatsStore, ranks drepo.RankQuery, c drepo.Cache, cfg LeaderboardConfig, log *logger.Logger) *Leaderboard {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}
	return &Leaderboard{
		stats: stats,
		ranks: ranks,
		cache: c,
		cfg:   cfg,
		log:   log.With(logger.String("component", "leaderboard")),
	}
}

// Stats returns the user's counters with accuracy derived from them and
// rank = 1 + users with strictly more points. Equal points share a rank.
func (l *Leaderboard) Stats(ctx context.Context, userID string) (*models.RankedStats, error) {
	st, err := l.stats.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	above, err := l.ranks.CountAbove(ctx, st.Points)
	if err != nil {
		return nil, fmt.Errorf("count users above: %w", err)
	}
	return &models.RankedStats{
		UserStats: *st,
		Accuracy:  st.Accuracy(),
		Rank:      above + 1,
	}, nil
}

// Top returns the leaderboard for kind. limit is clamped to the configured range.
func (l *Leaderboard) Top(ctx context.Context, kind models.LeaderboardKind, limit int) ([]models.LeaderboardEntry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown leaderboard %q", kind)
	}
	if limit <= 0 {
		limit = l.cfg.DefaultLimit
	}
	limit = util.ClampInt(limit, 1, l.cfg.MaxLimit)

	key := cacheKey(kind, limit)
	if l.cache != nil {
		var cached []models.LeaderboardEntry
		if err := l.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		}
	}

	var minPredictions int64
	if kind == models.LeaderboardAccuracy {
		minPredictions = l.cfg.AccuracyMinPredictions
	}
	rows, err := l.stats.Top(ctx, kind, minPredictions, limit)
	if err != nil {
		return nil, fmt.Errorf("load %s leaderboard: %w", kind, err)
	}

	entries := make([]models.LeaderboardEntry, len(rows))
	for i, st := range rows {
		entries[i] = models.NewLeaderboardEntry(i+1, st)
	}

	if l.cache != nil && l.cfg.CacheTTL > 0 {
		if err := l.cache.Set(ctx, key, entries, l.cfg.CacheTTL); err != nil {
			l.log.Warn("cache leaderboard", logger.String("key", key), logger.Error(err))
		}
	}
	return entries, nil
}

// Invalidate drops every cached leaderboard.
func (l *Leaderboard) Invalidate(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.DeleteByPattern(ctx, cache.Pattern(leaderboardKeyPrefix))
}

func cacheKey(kind models.LeaderboardKind, limit int) string {
	return cache.Key(leaderboardKeyPrefix, kind, limit)
}
