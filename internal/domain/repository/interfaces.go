package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"GoldPredict/internal/domain/models"
)

// PriceSource returns the current gold quote. Implementations must be safe to call repeatedly.
type PriceSource interface {
	Name() string
	FetchCurrent(ctx context.Context) (models.Quote, error)
}

type PriceStore interface {
	// UpsertToday creates or updates the record for date. It never writes close.
	UpsertToday(ctx context.Context, date time.Time, q models.Quote) (*models.PriceRecord, error)
	GetByDate(ctx context.Context, date time.Time) (*models.PriceRecord, error)
	GetLatest(ctx context.Context) (*models.PriceRecord, error)
	// History returns up to days records ending at through, newest first.
	History(ctx context.Context, through time.Time, days int) ([]*models.PriceRecord, error)
	// SetCloseIfAbsent sets close only while it is null. Reports whether it wrote.
	SetCloseIfAbsent(ctx context.Context, date time.Time, value decimal.Decimal) (bool, error)
}

type PredictionStore interface {
	Create(ctx context.Context, p *models.Prediction) error
	GetByID(ctx context.Context, id string) (*models.Prediction, error)
	GetForUserDate(ctx context.Context, userID string, date time.Time) (*models.Prediction, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]models.Prediction, int64, error)
	GetPendingForDate(ctx context.Context, date time.Time) ([]models.Prediction, error)
	// PendingDates lists distinct dates at or before through that still have pending predictions, oldest first.
	PendingDates(ctx context.Context, through time.Time) ([]time.Time, error)
	// Settle writes the result and flips status, only if the prediction is still pending.
	// Returns models.ErrAlreadySettled otherwise.
	Settle(ctx context.Context, id string, result models.SettlementResult) error
}

type UserStatsStore interface {
	// Ensure creates the stats row for a user if missing.
	Ensure(ctx context.Context, userID, wallet string) (*models.UserStats, error)
	Get(ctx context.Context, userID string) (*models.UserStats, error)
	// ApplyOutcome folds one settled prediction into the counters with atomic increments.
	ApplyOutcome(ctx context.Context, userID string, o models.Outcome) error
	// SetUsername replaces the display name of an existing row.
	SetUsername(ctx context.Context, userID, username string) (*models.UserStats, error)
	// Top returns stats ordered for the given leaderboard kind.
	Top(ctx context.Context, kind models.LeaderboardKind, minPredictions int64, limit int) ([]models.UserStats, error)
}

type RankQuery interface {
	CountAbove(ctx context.Context, points int64) (int64, error)
}

// TxStores are the stores bound to one transaction.
type TxStores struct {
	Predictions PredictionStore
	Stats       UserStatsStore
}

// Transactor runs fn in one atomic unit. Any error from fn rolls everything back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx TxStores) error) error
}

// PriceArchive keeps every ingested snapshot for analysis.
type PriceArchive interface {
	Append(ctx context.Context, q models.Quote, rec *models.PriceRecord) error
}

type EventPublisher interface {
	PublishSettled(ctx context.Context, events []models.SettlementEvent) error
}

type Metrics interface {
	RecordSettlement(status string, points int)
	RecordSweep(seconds float64, dates int)
	RecordDateStatus(status string)
	RecordLastPrice(source string, price float64)
	RecordError(kind string)
	RecordJobSkip(job string)
	RecordLatency(op string, seconds float64)
}

// Locker is a best-effort distributed mutex.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}
