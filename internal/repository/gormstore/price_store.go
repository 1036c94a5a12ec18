package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"GoldPredict/internal/domain/models"
	"GoldPredict/pkg/util"
)

type PriceStore struct {
	db *gorm.DB
}

func NewPriceStore(db *gorm.DB) *PriceStore {
	return &PriceStore{db: db}
}

// UpsertToday merges q into the row for date under a row lock so concurrent
// ingestion runs do not lose high/low updates. Close is never written here.
func (s *PriceStore) UpsertToday(ctx context.Context, date time.Time, q models.Quote) (*models.PriceRecord, error) {
	day := models.DayOf(date)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row priceRow
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("date = ?", day).
			Take(&row).Error

		switch {
		case err == nil:
			rec := row.toModel()
			rec.MergeQuote(q)
			return tx.Model(&priceRow{}).Where("date = ?", day).Updates(map[string]interface{}{
				"current":        rec.Current,
				"high":           rec.High,
				"low":            rec.Low,
				"change":         rec.Change,
				"change_percent": rec.ChangePercent,
				"volatility":     rec.Volatility,
				"updated_at":     time.Now().UTC(),
			}).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			prevClose, err := latestCloseBefore(tx, day)
			if err != nil {
				return err
			}
			rec := models.NewPriceRecord(day, q, prevClose)
			// a concurrent first insert for the same day wins, we retry next tick
			return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(priceRowFrom(rec)).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("upsert price %s: %w", util.FormatDate(day), err)
	}

	return s.GetByDate(ctx, day)
}

func latestCloseBefore(tx *gorm.DB, day time.Time) (*decimal.Decimal, error) {
	var prev priceRow
	err := tx.Where("date < ?", day).Order("date DESC").Take(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if prev.Close.Valid {
		c := prev.Close.Decimal
		return &c, nil
	}
	return nil, nil
}

func (s *PriceStore) GetByDate(ctx context.Context, date time.Time) (*models.PriceRecord, error) {
	var row priceRow
	err := s.db.WithContext(ctx).Where("date = ?", models.DayOf(date)).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNoPriceRecord
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *PriceStore) GetLatest(ctx context.Context) (*models.PriceRecord, error) {
	var row priceRow
	err := s.db.WithContext(ctx).Order("date DESC").Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNoPriceRecord
	}
	if err != nil {
		return nil, err
	}
	return row.toModel(), nil
}

func (s *PriceStore) History(ctx context.Context, through time.Time, days int) ([]*models.PriceRecord, error) {
	var rows []priceRow
	err := s.db.WithContext(ctx).
		Where("date <= ?", models.DayOf(through)).
		Order("date DESC").
		Limit(days).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*models.PriceRecord, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toModel())
	}
	return out, nil
}

// SetCloseIfAbsent is a conditional write. It returns false when close was already set.
func (s *PriceStore) SetCloseIfAbsent(ctx context.Context, date time.Time, value decimal.Decimal) (bool, error) {
	day := models.DayOf(date)
	res := s.db.WithContext(ctx).Model(&priceRow{}).
		Where("date = ? AND close IS NULL", day).
		Updates(map[string]interface{}{
			"close":      value,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&priceRow{}).Where("date = ?", day).Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, models.ErrNoPriceRecord
	}
	return false, nil
}
