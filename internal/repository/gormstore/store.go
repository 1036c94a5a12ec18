// Package gormstore persists prices, predictions and user statistics in PostgreSQL via gorm.
package gormstore

import (
	"context"

	"gorm.io/gorm"

	"GoldPredict/internal/domain/repository"
)

// Store bundles the repositories over one gorm handle.
type Store struct {
	db          *gorm.DB
	Prices      *PriceStore
	Predictions *PredictionStore
	Stats       *StatsStore
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:          db,
		Prices:      NewPriceStore(db),
		Predictions: NewPredictionStore(db),
		Stats:       NewStatsStore(db),
	}
}

// WithinTx runs fn inside one database transaction with stores bound to it.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx repository.TxStores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, repository.TxStores{
			Predictions: NewPredictionStore(tx),
			Stats:       NewStatsStore(tx),
		})
	})
}

var (
	_ repository.PriceStore      = (*PriceStore)(nil)
	_ repository.PredictionStore = (*PredictionStore)(nil)
	_ repository.UserStatsStore  = (*StatsStore)(nil)
	_ repository.RankQuery       = (*StatsStore)(nil)
	_ repository.Transactor      = (*Store)(nil)
)
