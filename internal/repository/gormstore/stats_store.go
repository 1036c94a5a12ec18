package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"GoldPredict/internal/domain/models"
)

type StatsStore struct {
	db *gorm.DB
}

func NewStatsStore(db *gorm.DB) *StatsStore {
	return &StatsStore{db: db}
}

func (s *StatsStore) Ensure(ctx context.Context, userID, wallet string) (*models.UserStats, error) {
	row := statsRow{UserID: userID, WalletAddress: wallet}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *StatsStore) Get(ctx context.Context, userID string) (*models.UserStats, error) {
	var row statsRow
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	st := row.toModel()
	return &st, nil
}

// ApplyOutcome increments counters in a single UPDATE. The right-hand side of
// each assignment sees the pre-update row, so no read-modify-write is needed.
func (s *StatsStore) ApplyOutcome(ctx context.Context, userID string, o models.Outcome) error {
	inc := 0
	var streak interface{} = 0
	if o.OverallCorrect {
		inc = 1
		streak = gorm.Expr("consecutive_wins + 1")
	}
	res := s.db.WithContext(ctx).Model(&statsRow{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"total_predictions":    gorm.Expr("total_predictions + 1"),
			"correct_predictions":  gorm.Expr("correct_predictions + ?", inc),
			"points":               gorm.Expr("points + ?", o.PointsEarned),
			"consecutive_wins":     streak,
			"accuracy":             gorm.Expr("ROUND((correct_predictions + ?) * 100.0 / (total_predictions + 1), 2)", inc),
			"last_prediction_date": models.DayOf(o.Date),
			"updated_at":           time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrUserNotFound
	}
	return nil
}

func (s *StatsStore) SetUsername(ctx context.Context, userID, username string) (*models.UserStats, error) {
	res := s.db.WithContext(ctx).Model(&statsRow{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"username": username, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, models.ErrUserNotFound
	}
	return s.Get(ctx, userID)
}

func (s *StatsStore) Top(ctx context.Context, kind models.LeaderboardKind, minPredictions int64, limit int) ([]models.UserStats, error) {
	q := s.db.WithContext(ctx).Model(&statsRow{})
	switch kind {
	case models.LeaderboardAccuracy:
		q = q.Where("total_predictions >= ?", minPredictions).
			Order("accuracy DESC").Order("total_predictions DESC")
	case models.LeaderboardStreak:
		q = q.Order("consecutive_wins DESC").Order("points DESC")
	default:
		q = q.Order("points DESC")
	}

	var rows []statsRow
	if err := q.Order("user_id").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.UserStats, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// CountAbove implements RankQuery.
func (s *StatsStore) CountAbove(ctx context.Context, points int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&statsRow{}).Where("points > ?", points).Count(&n).Error
	return n, err
}
