package gormstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"GoldPredict/internal/domain/models"
)

type PredictionStore struct {
	db *gorm.DB
}

func NewPredictionStore(db *gorm.DB) *PredictionStore {
	return &PredictionStore{db: db}
}

func (s *PredictionStore) Create(ctx context.Context, p *models.Prediction) error {
	err := s.db.WithContext(ctx).Create(predictionRowFrom(p)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrDuplicatePrediction
	}
	return err
}

func (s *PredictionStore) GetByID(ctx context.Context, id string) (*models.Prediction, error) {
	var row predictionRow
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p := row.toModel()
	return &p, nil
}

func (s *PredictionStore) GetForUserDate(ctx context.Context, userID string, date time.Time) (*models.Prediction, error) {
	var row predictionRow
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, models.DayOf(date)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p := row.toModel()
	return &p, nil
}

func (s *PredictionStore) ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.Prediction, int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&predictionRow{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var rows []predictionRow
	err = s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return toPredictions(rows), total, nil
}

func (s *PredictionStore) GetPendingForDate(ctx context.Context, date time.Time) ([]models.Prediction, error) {
	var rows []predictionRow
	err := s.db.WithContext(ctx).
		Where("status = ? AND date = ?", string(models.StatusPending), models.DayOf(date)).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return toPredictions(rows), nil
}

func (s *PredictionStore) PendingDates(ctx context.Context, through time.Time) ([]time.Time, error) {
	var dates []time.Time
	err := s.db.WithContext(ctx).Model(&predictionRow{}).
		Where("status = ? AND date <= ?", string(models.StatusPending), models.DayOf(through)).
		Distinct("date").
		Order("date").
		Pluck("date", &dates).Error
	if err != nil {
		return nil, err
	}
	for i := range dates {
		dates[i] = models.DayOf(dates[i])
	}
	return dates, nil
}

// Settle flips pending to settled in one conditional UPDATE. Zero affected
// rows means the prediction is gone or already settled.
func (s *PredictionStore) Settle(ctx context.Context, id string, r models.SettlementResult) error {
	res := s.db.WithContext(ctx).Model(&predictionRow{}).
		Where("id = ? AND status = ?", id, string(models.StatusPending)).
		Updates(map[string]interface{}{
			"status":             string(models.StatusSettled),
			"result_price":       r.ResultPrice,
			"result_volatility":  r.ResultVolatility,
			"direction_correct":  r.DirectionCorrect,
			"volatility_correct": r.VolatilityCorrect,
			"points_earned":      r.PointsEarned,
			"settled_at":         r.SettledAt,
			"updated_at":         r.SettledAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&predictionRow{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return models.ErrNotFound
	}
	return models.ErrAlreadySettled
}

func toPredictions(rows []predictionRow) []models.Prediction {
	out := make([]models.Prediction, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out
}
